package domain

import "testing"

func mkStores(ids ...string) []Store {
	out := make([]Store, 0, len(ids))
	for _, id := range ids {
		out = append(out, Store{ID: StoreID(id), Name: "Store " + id, Brand: "netto", Zip: "2200"})
	}
	return out
}

func TestFilterNewStores_AllKnownYieldsEmpty(t *testing.T) {
	known := mkStores("a", "b", "c")
	got := FilterNewStores(known, known)
	if len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}

func TestFilterNewStores_EmptyKnownYieldsAll(t *testing.T) {
	candidates := mkStores("a", "b", "c")
	got := FilterNewStores(candidates, nil)
	if len(got) != len(candidates) {
		t.Fatalf("expected %d stores, got %d", len(candidates), len(got))
	}
	for i := range candidates {
		if got[i].ID != candidates[i].ID {
			t.Fatalf("order not preserved at %d: %s != %s", i, got[i].ID, candidates[i].ID)
		}
	}
}

func TestFilterNewStores_SecondPassIsEmpty(t *testing.T) {
	known := mkStores("a")
	candidates := mkStores("a", "b", "c")

	first := FilterNewStores(candidates, known)
	if len(first) != 2 || first[0].ID != "b" || first[1].ID != "c" {
		t.Fatalf("first pass: %v", first)
	}

	known = append(known, first...)
	second := FilterNewStores(candidates, known)
	if len(second) != 0 {
		t.Fatalf("second pass should be empty, got %v", second)
	}
}

func TestFilterNewStores_ComparesByIDOnly(t *testing.T) {
	known := []Store{{ID: "a", Name: "Netto Old Name", Brand: "netto"}}
	candidates := []Store{{ID: "a", Name: "Netto Renamed", Brand: "netto"}}
	if got := FilterNewStores(candidates, known); len(got) != 0 {
		t.Fatalf("differing fields must not defeat dedup, got %v", got)
	}
}
