package meta

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/grafai/grafai/internal/fetch"
)

func testClient() *fetch.Client {
	return &fetch.Client{}
}

func testPipeline(srv *httptest.Server) *Pipeline {
	return &Pipeline{
		Client:  testClient(),
		BaseURL: srv.URL,
	}
}

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(html)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestExtractTableScalesFractions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><ul><li class="card">2 Gyarados ex (A1-226)</li></ul></body></html>`))
	}))
	defer srv.Close()

	doc := docFrom(t, `<table>
		<tr data-winrate="0.45" data-share="0.12"><td><a href="/decks/gyarados-ex">Gyarados ex</a></td></tr>
	</table>`)

	raw := testPipeline(srv).extractTable(context.Background(), doc)
	if len(raw) != 1 {
		t.Fatalf("decks = %d, want 1", len(raw))
	}
	m := raw[0].(map[string]any)
	if m["name"] != "Gyarados ex" {
		t.Errorf("name = %v", m["name"])
	}
	if m["win_pct"] != 45.0 || m["share"] != 12.0 {
		t.Errorf("win/share = %v/%v, want 45/12", m["win_pct"], m["share"])
	}
	cards := m["cards"].([]any)
	if len(cards) != 1 {
		t.Fatalf("cards = %d, want 1", len(cards))
	}
}

func TestExtractTableDetailFailureKeepsEmptyCards(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	doc := docFrom(t, `<table>
		<tr data-winrate="0.45" data-share="0.12"><td><a href="/decks/gyarados-ex">Gyarados ex</a></td></tr>
	</table>`)

	raw := testPipeline(srv).extractTable(context.Background(), doc)
	if len(raw) != 1 {
		t.Fatalf("decks = %d, want 1; a dead detail page must not drop the row", len(raw))
	}
	cards := raw[0].(map[string]any)["cards"].([]any)
	if len(cards) != 0 {
		t.Errorf("cards = %v, want empty", cards)
	}
}

func TestExtractTableStopsAtTen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	var rows bytes.Buffer
	rows.WriteString("<table>")
	for i := 0; i < 14; i++ {
		fmt.Fprintf(&rows, `<tr data-share="0.1"><td><a href="/decks/d%d">Deck %d</a></td></tr>`, i, i)
	}
	rows.WriteString("</table>")

	raw := testPipeline(srv).extractTable(context.Background(), docFrom(t, rows.String()))
	if len(raw) != maxDecks {
		t.Errorf("decks = %d, want %d", len(raw), maxDecks)
	}
}

func TestDetailCardsPreBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><pre>2 Mewtwo ex (A1-129)\n2 Gardevoir (A1-132)\nnot a card line</pre></body></html>"))
	}))
	defer srv.Close()

	p := testPipeline(srv)
	cards := p.detailCards(context.Background(), srv.URL+"/decks/mewtwo")
	if len(cards) != 2 {
		t.Fatalf("cards = %d, want 2", len(cards))
	}
	c := cards[0].(map[string]any)
	if c["name"] != "Mewtwo ex" || c["code"] != "A1-129" || c["qty"] != 2 {
		t.Errorf("card = %v", c)
	}
}

func TestDetailCardsFollowsTournamentDecklist(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/decks/mewtwo", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><a href="/tournament/42/player/1/decklist">decklist</a></body></html>`))
	})
	mux.HandleFunc("/tournament/42/player/1/decklist", func(w http.ResponseWriter, r *http.Request) {
		// value is an HTML-escaped JSON array
		_, _ = w.Write([]byte(`<form><input name="input" value="[{&quot;count&quot;:2,&quot;name&quot;:&quot;Mewtwo ex&quot;,&quot;set&quot;:&quot;A1&quot;,&quot;number&quot;:&quot;129&quot;}]"></form>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := testPipeline(srv)
	cards := p.detailCards(context.Background(), srv.URL+"/decks/mewtwo")
	if len(cards) != 1 {
		t.Fatalf("cards = %d, want 1", len(cards))
	}
	c := cards[0].(map[string]any)
	if c["name"] != "Mewtwo ex" || c["code"] != "A1-129" || c["qty"] != 2 {
		t.Errorf("card = %v", c)
	}
}

func TestDetailAndDecklistBudgetsAreIndependent(t *testing.T) {
	// Each page responds just inside the per-fetch timeout; only a shared
	// budget across both fetches would trip it.
	const delay = 300 * time.Millisecond
	mux := http.NewServeMux()
	mux.HandleFunc("/decks/mewtwo", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		_, _ = w.Write([]byte(`<html><body><a href="/tournament/42/player/1/decklist">decklist</a></body></html>`))
	})
	mux.HandleFunc("/tournament/42/player/1/decklist", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		_, _ = w.Write([]byte(`<form><input name="input" value="[{&quot;count&quot;:2,&quot;name&quot;:&quot;Mewtwo ex&quot;,&quot;set&quot;:&quot;A1&quot;,&quot;number&quot;:&quot;129&quot;}]"></form>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := testPipeline(srv)
	p.DetailTimeout = 500 * time.Millisecond

	cards := p.detailCards(context.Background(), srv.URL+"/decks/mewtwo")
	if len(cards) != 1 {
		t.Fatalf("cards = %d, want 1; the decklist fetch must get its own timeout", len(cards))
	}
}

func TestParseDecklistBlock(t *testing.T) {
	block := "2 Mewtwo ex A1 129\n\n1 Professor's Research A1 219\ngarbage line\n"
	cards := parseDecklistBlock(block)
	if len(cards) != 2 {
		t.Fatalf("cards = %d, want 2", len(cards))
	}
	c0 := cards[0].(map[string]any)
	if c0["name"] != "Mewtwo ex" || c0["code"] != "A1-129" || c0["qty"] != 2 {
		t.Errorf("card = %v", c0)
	}
	c1 := cards[1].(map[string]any)
	if c1["code"] != "A1-219" {
		t.Errorf("code = %v", c1["code"])
	}
}

func TestTournamentDecklistScriptBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<script>const decklist = `2 Pikachu ex A1 94\n2 Zapdos ex A1 104`;</script>"))
	}))
	defer srv.Close()

	p := testPipeline(srv)
	cards := p.tournamentDecklist(context.Background(), srv.URL+"/tournament/1/decklist")
	if len(cards) != 2 {
		t.Fatalf("cards = %d, want 2", len(cards))
	}
}
