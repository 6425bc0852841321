package banks

import "testing"

func TestCatalog(t *testing.T) {
	all := All()
	if len(all) != 17 {
		t.Fatalf("expected 17 entries, got %d", len(all))
	}
	seen := map[string]bool{}
	for _, b := range all {
		if seen[b.ID] {
			t.Fatalf("duplicate id %q", b.ID)
		}
		seen[b.ID] = true
	}
	all[0].Name = "mutated"
	if b, _ := ByID("bca"); b.Name != "Bank Central Asia" {
		t.Fatalf("All must return a copy, got %q", b.Name)
	}
}

func TestByID(t *testing.T) {
	if b, ok := ByID(Cash); !ok || b.Name != "Cash/Tunai" {
		t.Fatalf("got %+v, %v", b, ok)
	}
	if _, ok := ByID("nope"); ok {
		t.Fatal("expected miss")
	}
}

func TestKnown(t *testing.T) {
	if _, ok := Known(DefaultActive); !ok {
		t.Fatal("defaults must be in the catalog")
	}
	if id, ok := Known([]string{"bca", "xyz"}); ok || id != "xyz" {
		t.Fatalf("got %q, %v", id, ok)
	}
}
