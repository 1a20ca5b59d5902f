package catalog

import (
	"strings"

	"tarifario/internal"
)

// Index joins articles to their per-store tariff rows. It is built once per
// catalog load and never mutated afterwards.
type Index struct {
	byRef map[string][]internal.Tariff
	size  int
}

func BuildIndex(tariffs []internal.Tariff) *Index {
	idx := &Index{byRef: make(map[string][]internal.Tariff), size: len(tariffs)}
	for _, t := range tariffs {
		ref := strings.TrimSpace(t.ArticleRef)
		idx.byRef[ref] = append(idx.byRef[ref], t)
	}
	return idx
}

// Tariffs returns every row for ref in input order.
func (idx *Index) Tariffs(ref string) []internal.Tariff {
	if idx == nil {
		return nil
	}
	return idx.byRef[strings.TrimSpace(ref)]
}

// Lookup resolves the tariff for ref in zone. With internal.AllZones the
// first row for the article is returned. Duplicate (store, ref) rows
// resolve to the first one in input order.
func (idx *Index) Lookup(ref, zone string) (internal.Tariff, bool) {
	rows := idx.Tariffs(ref)
	if len(rows) == 0 {
		return internal.Tariff{}, false
	}
	if zone == internal.AllZones {
		return rows[0], true
	}
	for _, t := range rows {
		if t.Store == zone {
			return t, true
		}
	}
	return internal.Tariff{}, false
}

// HasAnyListPrice reports whether any store lists a price for ref.
func (idx *Index) HasAnyListPrice(ref string) bool {
	for _, t := range idx.Tariffs(ref) {
		if t.ListPrice != "" {
			return true
		}
	}
	return false
}

func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return idx.size
}

func (idx *Index) References() int {
	if idx == nil {
		return 0
	}
	return len(idx.byRef)
}
