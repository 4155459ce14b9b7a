package tcgdex

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizeCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"A1-94", "A1-094", true},
		{"A1-129", "A1-129", true},
		{"P-A-14", "P-A-014", true},
		{"A2a-7", "A2a-007", true},
		{"A1-banana", "", false},
		{"nodash", "", false},
		{"a-b-c-d", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeCode(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("NormalizeCode(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestLogoURLPrefersLogo(t *testing.T) {
	s := SetInfo{Logo: "https://x/logo", Symbol: "https://x/sym"}
	if got := s.LogoURL(); got != "https://x/logo.png" {
		t.Errorf("LogoURL = %q", got)
	}
	s = SetInfo{Symbol: "https://x/sym"}
	if got := s.LogoURL(); got != "https://x/sym.png" {
		t.Errorf("LogoURL = %q", got)
	}
	if got := (SetInfo{}).LogoURL(); got != "" {
		t.Errorf("LogoURL = %q, want empty", got)
	}
}

func TestLatestSetUsesLastSet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/en/series/tcgp" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "tcgp", "name": "TCG Pocket",
			"lastSet": {"id": "A4", "name": "Wisdom of Sea and Sky", "logo": "https://x/A4/logo"},
			"sets": [{"id": "A1", "name": "Genetic Apex"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	got, err := c.LatestSet(context.Background())
	if err != nil {
		t.Fatalf("LatestSet: %v", err)
	}
	if got.ID != "A4" || got.Name != "Wisdom of Sea and Sky" || got.Logo != "https://x/A4/logo.png" {
		t.Errorf("LatestSet = %+v", got)
	}
}

func TestLatestSetFallsBackToLastOfSets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "tcgp", "sets": [
			{"id": "A1", "name": "Genetic Apex"},
			{"id": "A2", "name": "Space-Time Smackdown", "symbol": "https://x/A2/sym"}]}`))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL, "").LatestSet(context.Background())
	if err != nil {
		t.Fatalf("LatestSet: %v", err)
	}
	if got.ID != "A2" || got.Logo != "https://x/A2/sym.png" {
		t.Errorf("LatestSet = %+v", got)
	}
}

func TestLatestSetEmptySeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "tcgp", "sets": []}`))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, "").LatestSet(context.Background()); err == nil {
		t.Fatal("expected error for series with no sets")
	}
}

func TestCardImage(t *testing.T) {
	var pngBytes bytes.Buffer
	if err := png.Encode(&pngBytes, image.NewRGBA(image.Rect(0, 0, 2, 3))); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/en/cards/A1-094", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "A1-094", "name": "Pikachu ex", "image": "` + srv.URL + `/assets/A1/094"}`))
	})
	mux.HandleFunc("/assets/A1/094/high.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes.Bytes())
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	img, err := NewClient(srv.URL, "").CardImage(context.Background(), "A1-94")
	if err != nil {
		t.Fatalf("CardImage: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 3 {
		t.Errorf("bounds = %v", b)
	}
}

func TestCardImageBadCode(t *testing.T) {
	if _, err := NewClient("http://127.0.0.1:0", "").CardImage(context.Background(), "???"); err == nil {
		t.Fatal("expected error for unparseable code")
	}
}
