package model

import (
	"slices"
	"testing"
)

func TestGroupedMap(t *testing.T) {
	t.Parallel()

	g := NewGroupedMap[string, int]()
	g.Add("b", 1)
	g.Add("a", 2)
	g.Add("b", 3)

	if got := g.Keys(); !slices.Equal(got, []string{"b", "a"}) {
		t.Errorf("Keys() = %v, want first-seen order", got)
	}
	if got := g.Values("b"); !slices.Equal(got, []int{1, 3}) {
		t.Errorf("Values(b) = %v", got)
	}
	if g.Len() != 2 {
		t.Errorf("Len() = %d", g.Len())
	}
	if g.Values("missing") != nil {
		t.Error("expected nil for missing key")
	}
}

func TestPayload(t *testing.T) {
	t.Parallel()

	if TextPayload("x").IsLabeled() {
		t.Error("text payload reported as labeled")
	}
	p := LabeledPayload("Piętro:", "3/4")
	if !p.IsLabeled() || p.Label != "Piętro:" || p.Text != "3/4" {
		t.Errorf("unexpected labeled payload %+v", p)
	}
}

func TestURLSet(t *testing.T) {
	t.Parallel()

	s := NewURLSet("/a", "/b", "/a")
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if added := s.AddAll([]string{"/b", "/c"}); added != 1 {
		t.Errorf("AddAll added %d, want 1", added)
	}
	if !s.Contains("/c") || s.Contains("/d") {
		t.Error("Contains mismatch")
	}
	if got := s.URLs(); !slices.Equal(got, []string{"/a", "/b", "/c"}) {
		t.Errorf("URLs() = %v", got)
	}

	var zero URLSet
	if !zero.Add("/x") {
		t.Error("zero value set must accept inserts")
	}
}

func TestFallbackSummary(t *testing.T) {
	t.Parallel()

	s := FallbackSummary()
	if s.Price.Rent != NotAvailable || s.Price.Media.Extra != NotAvailable {
		t.Errorf("unexpected price placeholders: %+v", s.Price)
	}
	if s.URL != "#" || s.Pros == nil || s.Cons == nil {
		t.Errorf("unexpected fallback summary %+v", s)
	}
}
