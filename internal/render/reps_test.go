package render

import (
	"testing"

	"github.com/grafai/grafai/internal/meta"
)

func TestRepresentativeCardsScoresNameOverlap(t *testing.T) {
	cards := []meta.Card{
		{Name: "Professor's Research", Qty: 2},
		{Name: "Mewtwo ex", Qty: 2},
		{Name: "Gardevoir", Qty: 2},
	}
	got := representativeCards("Mewtwo Gardevoir", cards, 2)
	if len(got) != 2 {
		t.Fatalf("got %d cards, want 2", len(got))
	}
	names := map[string]bool{got[0].Name: true, got[1].Name: true}
	if !names["Mewtwo ex"] || !names["Gardevoir"] {
		t.Errorf("picked %v, want the name-matching cards", got)
	}
}

func TestRepresentativeCardsWholeNameContainmentWins(t *testing.T) {
	cards := []meta.Card{
		{Name: "Mewtwo", Qty: 1},
		{Name: "Mewtwo ex", Qty: 4},
	}
	// Both cards are contained in the deck name; the tie breaks on
	// token count and quantity.
	got := representativeCards("Mewtwo ex Control", cards, 1)
	if len(got) != 1 || got[0].Name != "Mewtwo ex" {
		t.Errorf("picked %v, want Mewtwo ex", got)
	}
}

func TestRepresentativeCardsPadsWithRemainder(t *testing.T) {
	cards := []meta.Card{
		{Name: "Potion", Qty: 2},
		{Name: "Poke Ball", Qty: 2},
		{Name: "Gyarados ex", Qty: 2},
	}
	got := representativeCards("Gyarados ex", cards, 2)
	if len(got) != 2 {
		t.Fatalf("got %d cards, want 2", len(got))
	}
	if got[0].Name != "Gyarados ex" {
		t.Errorf("first = %v, want the matching card first", got[0])
	}
}

func TestRepresentativeCardsEmpty(t *testing.T) {
	if got := representativeCards("Anything", nil, 2); got != nil {
		t.Errorf("got %v, want nil", got)
	}
	if got := representativeCards("Anything", []meta.Card{{Name: "X"}}, 0); got != nil {
		t.Errorf("got %v, want nil for zero limit", got)
	}
}
