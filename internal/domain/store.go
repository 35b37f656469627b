package domain

// Store is a physical store as published by the external provider.
// Stores are created when first observed and never mutated afterwards.
type Store struct {
	ID     StoreID
	Name   string
	Brand  string
	Zip    string
	City   string
	Street string
}

// FilterNewStores returns the candidates whose ID is not present in known,
// preserving the input order of candidates. Comparison is by ID only; other
// fields are ignored even when they differ, so locally customized records are
// never overwritten by a re-observed store.
func FilterNewStores(candidates, known []Store) []Store {
	seen := make(map[StoreID]struct{}, len(known))
	for _, s := range known {
		seen[s.ID] = struct{}{}
	}
	out := make([]Store, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}
