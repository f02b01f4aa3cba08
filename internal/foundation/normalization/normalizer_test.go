package normalization

import "testing"

type mode string

func TestNormalizer(t *testing.T) {
	n := NewNormalizer(map[string]mode{"HTML": "html", "hugo": "hugo"}, "html")

	if got := n.Normalize("  Hugo "); got != "hugo" {
		t.Fatalf("expected hugo got %s", got)
	}
	if got := n.Normalize("pdf"); got != "html" {
		t.Fatalf("expected default html got %s", got)
	}
	if _, err := n.NormalizeWithError("pdf"); err == nil {
		t.Fatal("expected error for unknown value")
	}
	if v, err := n.NormalizeWithError("HTML"); err != nil || v != "html" {
		t.Fatalf("expected html, got %s (%v)", v, err)
	}
	keys := n.ValidKeys()
	if len(keys) != 2 || keys[0] != "html" || keys[1] != "hugo" {
		t.Fatalf("unexpected keys %v", keys)
	}
}
