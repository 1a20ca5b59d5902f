package query

import (
	"strings"

	"tarifario/internal"
	"tarifario/internal/catalog"
	"tarifario/internal/util"
)

// State is the full set of filter controls. Section and Family accept
// internal.AllZones ("Todas") or the empty string as "no restriction".
type State struct {
	Search      string
	Section     string
	Family      string
	Mode        Mode
	OffersOnly  bool
	NoPriceOnly bool
}

// DefaultState starts on the user's own zone, or every store when the
// user has none.
func DefaultState(zone string) State {
	return State{
		Section: internal.AllZones,
		Family:  internal.AllZones,
		Mode:    SingleZone{Zone: zone},
	}
}

var sectionNames = map[string]string{
	"1": "Carnicería",
	"2": "Charcutería",
}

// SectionName maps the ERP section code to its display name; unknown codes
// pass through unchanged.
func SectionName(code string) string {
	if name, ok := sectionNames[code]; ok {
		return name
	}
	return code
}

func unrestricted(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == internal.AllZones
}

// Filter returns the articles matching st, in input order. It never
// mutates its inputs.
func Filter(articles []internal.Article, idx *catalog.Index, st State) []internal.Article {
	out := make([]internal.Article, 0, len(articles))
	for _, a := range articles {
		if st.Match(a, idx) {
			out = append(out, a)
		}
	}
	return out
}

// Match evaluates every clause of st against one article.
func (st State) Match(a internal.Article, idx *catalog.Index) bool {
	if !util.ContainsFold(a.Description, st.Search) && !util.ContainsFold(a.Reference, st.Search) {
		return false
	}

	if !unrestricted(st.Section) && SectionName(a.Section) != st.Section {
		return false
	}

	if !unrestricted(st.Family) {
		want, ok1 := util.ParseLeadingInt(st.Family)
		got, ok2 := util.ParseLeadingInt(a.Family)
		if !ok1 || !ok2 || want != got {
			return false
		}
	}

	mode := modeOrDefault(st.Mode)
	if single, ok := mode.(SingleZone); ok && single.Concrete() {
		t, found := idx.Lookup(a.Reference, single.Zone)
		if !found {
			return false
		}
		if price, ok := util.ParseDecimal(t.ListPrice); !ok || price <= 0 {
			return false
		}
	}

	if st.OffersOnly && !hasOfferIn(idx.Tariffs(a.Reference), mode) {
		return false
	}

	if st.NoPriceOnly && idx.HasAnyListPrice(a.Reference) {
		return false
	}
	return true
}

func hasOfferIn(tariffs []internal.Tariff, mode Mode) bool {
	for _, t := range tariffs {
		if t.OfferPrice != "" && mode.Covers(t.Store) {
			return true
		}
	}
	return false
}
