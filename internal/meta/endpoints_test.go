package meta

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestAPIEndpoints(t *testing.T) {
	page := `<script>
	fetch('/api/v1/decks?game=pocket').then(render);
	fetch("/api/v1/decks?game=pocket");
	axios.get('https://cdn.example.com/api/top-decks');
	fetch('/api/v1/players');
	var fallback = "/api/meta/decks/top";
	</script>`

	got := apiEndpoints(page, "https://play.example.com/")
	want := []string{
		"https://play.example.com/api/v1/decks?game=pocket",
		"https://cdn.example.com/api/top-decks",
		"https://play.example.com/api/meta/decks/top",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("endpoints = %v, want %v", got, want)
	}
}

func TestExtractEndpointsFirstParseableWins(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/broken/decks", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/api/v1/decks", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"game": "pocket", "set": "A3",
			"decks": [{"name": "Mewtwo EX", "win_pct": 54.32, "share": 8.1, "cards": []}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := &Pipeline{Client: testClient(), BaseURL: srv.URL}
	page := `<script>fetch('/api/broken/decks'); fetch('/api/v1/decks');</script>`

	decks, rawSet := p.extractEndpoints(context.Background(), page)
	if len(decks) != 1 {
		t.Fatalf("decks = %d, want 1", len(decks))
	}
	if decks[0].(map[string]any)["name"] != "Mewtwo EX" {
		t.Errorf("deck = %v", decks[0])
	}
	if rawSet != "A3" {
		t.Errorf("set = %v, want A3", rawSet)
	}
}

func TestExtractEndpointsNoCandidates(t *testing.T) {
	p := &Pipeline{Client: testClient(), BaseURL: "http://127.0.0.1:0"}
	decks, rawSet := p.extractEndpoints(context.Background(), "<html>static page</html>")
	if decks != nil || rawSet != nil {
		t.Errorf("got %v/%v, want none", decks, rawSet)
	}
}
