package vname

import (
	"testing"
	"time"
)

func TestGeneratorRenderResolvesCollisions(t *testing.T) {
	g := NewGenerator(DefaultEvaluator{}, time.Hour, 0)
	entity := Entity{"releasetitle": "Greatest Hits"}
	used := map[string]struct{}{}

	first, err := g.Render("/Releases", "id-1", "{releasetitle}", entity, PathContext{}, used)
	if err != nil {
		t.Fatal(err)
	}
	second, err := g.Render("/Releases", "id-2", "{releasetitle}", entity, PathContext{}, used)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatalf("expected distinct names for colliding renders, got %q twice", first)
	}
	if second != first+" [2]" {
		t.Fatalf("second render = %q, want %q", second, first+" [2]")
	}
}

func TestGeneratorResolveRoundtrip(t *testing.T) {
	g := NewGenerator(DefaultEvaluator{}, time.Hour, 0)
	used := map[string]struct{}{}
	name, err := g.Render("/Releases", "id-1", "{releasetitle}", Entity{"releasetitle": "Abbey Road"}, PathContext{}, used)
	if err != nil {
		t.Fatal(err)
	}
	id, ok := g.Resolve("/Releases", name)
	if !ok || id != "id-1" {
		t.Fatalf("Resolve(%q) = (%q, %v), want (id-1, true)", name, id, ok)
	}
}

func TestGeneratorResolveExpires(t *testing.T) {
	g := NewGenerator(DefaultEvaluator{}, -time.Second, 0)
	used := map[string]struct{}{}
	name, _ := g.Render("/Releases", "id-1", "{releasetitle}", Entity{"releasetitle": "Abbey Road"}, PathContext{}, used)
	if _, ok := g.Resolve("/Releases", name); ok {
		t.Fatal("Resolve should miss once the TTL has elapsed")
	}
}

func TestDefaultEvaluatorResolvesFacetContext(t *testing.T) {
	got, err := DefaultEvaluator{}.Evaluate("{artist}/{releasetitle}", Entity{"releasetitle": "Doolittle"}, PathContext{Artist: "Pixies"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Pixies/Doolittle" {
		t.Fatalf("Evaluate = %q, want Pixies/Doolittle", got)
	}
}
