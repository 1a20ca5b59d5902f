package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarifario/internal"
	"tarifario/internal/catalog"
)

func fixtureCatalog() ([]internal.Article, *catalog.Index) {
	articles := []internal.Article{
		{Reference: "001", Section: "1", Description: "Lomo de cerdo", Family: "05", LastCost: "6,05"},
		{Reference: "002", Section: "2", Description: "Chorizo ibérico", Family: "5", LastCost: "3,85"},
		{Reference: "003", Section: "2", Description: "Salchichón", Family: "07", LastCost: "4,00"},
		{Reference: "004", Section: "1", Description: "Pollo entero", Family: "X1", LastCost: "2,10"},
		{Reference: "005", Section: "3", Description: "Bandeja", Family: "19", LastCost: "0,20"},
	}
	tariffs := []internal.Tariff{
		{Store: "CH2", ArticleRef: "001", ListPrice: "5,00", OfferPrice: "3,50"},
		{Store: "AL1", ArticleRef: "001", ListPrice: "5,20"},
		{Store: "CH2", ArticleRef: " 002 ", ListPrice: "0"},
		{Store: "AL1", ArticleRef: "002", ListPrice: "4,10", OfferPrice: "3,90"},
		{Store: "CH2", ArticleRef: "003", ListPrice: "6,80"},
		{Store: "CH2", ArticleRef: "004", ListPrice: ""},
	}
	return articles, catalog.BuildIndex(tariffs)
}

func refs(articles []internal.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.Reference)
	}
	return out
}

func TestFilterDefaultStateKeepsEverythingInOrder(t *testing.T) {
	articles, idx := fixtureCatalog()

	got := Filter(articles, idx, DefaultState(internal.AllZones))
	assert.Equal(t, []string{"001", "002", "003", "004", "005"}, refs(got))
}

func TestFilterIsIdempotent(t *testing.T) {
	articles, idx := fixtureCatalog()
	st := State{Search: "o", Mode: SingleZone{Zone: "CH2"}, Section: internal.AllZones}

	first := Filter(articles, idx, st)
	second := Filter(articles, idx, st)
	assert.Equal(t, first, second)
	assert.Equal(t, "Lomo de cerdo", articles[0].Description)
}

func TestFilterSearchMatchesDescriptionOrReference(t *testing.T) {
	articles, idx := fixtureCatalog()

	assert.Equal(t, []string{"002"}, refs(Filter(articles, idx, State{Search: "CHORIZO"})))
	assert.Equal(t, []string{"003"}, refs(Filter(articles, idx, State{Search: "003"})))
}

func TestFilterSectionUsesDisplayNames(t *testing.T) {
	articles, idx := fixtureCatalog()

	assert.Equal(t, []string{"002", "003"}, refs(Filter(articles, idx, State{Section: "Charcutería"})))
	assert.Equal(t, []string{"005"}, refs(Filter(articles, idx, State{Section: "3"})))
	assert.Equal(t, "Carnicería", SectionName("1"))
	assert.Equal(t, "9", SectionName("9"))
}

func TestFilterFamilyComparesNumerically(t *testing.T) {
	articles, idx := fixtureCatalog()

	got := Filter(articles, idx, State{Family: "05"})
	assert.Equal(t, []string{"001", "002"}, refs(got))

	// A non-numeric family code never matches a concrete family.
	assert.NotContains(t, refs(Filter(articles, idx, State{Family: "1"})), "004")
}

func TestFilterSingleZoneNeedsPositivePrice(t *testing.T) {
	articles, idx := fixtureCatalog()

	got := Filter(articles, idx, State{Mode: SingleZone{Zone: "CH2"}})
	assert.Equal(t, []string{"001", "003"}, refs(got))
}

func TestFilterCompareModeSkipsZonePresence(t *testing.T) {
	articles, idx := fixtureCatalog()

	got := Filter(articles, idx, State{Mode: CompareZones{Zones: []string{"CH2"}}})
	assert.Len(t, got, len(articles))
}

func TestFilterOffersOnlyUsesRelevantZones(t *testing.T) {
	articles, idx := fixtureCatalog()

	assert.Equal(t, []string{"001", "002"}, refs(Filter(articles, idx, State{OffersOnly: true})))
	assert.Equal(t, []string{"001"}, refs(Filter(articles, idx, State{OffersOnly: true, Mode: SingleZone{Zone: "CH2"}})))
	assert.Equal(t, []string{"002"}, refs(Filter(articles, idx, State{OffersOnly: true, Mode: CompareZones{Zones: []string{"AL1"}}})))
	assert.Empty(t, Filter(articles, idx, State{OffersOnly: true, Mode: CompareZones{}}))
}

func TestFilterNoPriceIsExclusive(t *testing.T) {
	articles, idx := fixtureCatalog()

	got := Filter(articles, idx, State{NoPriceOnly: true})
	require.Equal(t, []string{"004", "005"}, refs(got))
	for _, a := range got {
		for _, tr := range idx.Tariffs(a.Reference) {
			assert.Empty(t, tr.ListPrice)
		}
	}
}

func TestFilterEmptyInputs(t *testing.T) {
	assert.Empty(t, Filter(nil, nil, State{OffersOnly: true, NoPriceOnly: true}))

	articles, _ := fixtureCatalog()
	assert.Len(t, Filter(articles, nil, State{NoPriceOnly: true}), len(articles))
}

func TestModeToggle(t *testing.T) {
	m := CompareZones{}.Toggle("CH2").Toggle("AL1")
	assert.Equal(t, []string{"CH2", "AL1"}, m.Zones)
	assert.Equal(t, "CH2, AL1", ZoneDescriptor(m))

	m = m.Toggle("CH2")
	assert.Equal(t, []string{"AL1"}, m.Zones)

	all := []string{"CH2", "AL1", "MA3"}
	assert.Equal(t, all, m.ToggleAll(all).Zones)
	assert.Empty(t, CompareZones{Zones: all}.ToggleAll(all).Zones)

	assert.Equal(t, internal.AllZones, ZoneDescriptor(nil))
	assert.Equal(t, internal.AllZones, ZoneDescriptor(SingleZone{}))
}
