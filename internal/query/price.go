package query

import (
	"tarifario/internal/catalog"
)

// PriceCell is the resolved price of one article in one zone.
type PriceCell struct {
	List  string
	Offer string
	Found bool
}

func (c PriceCell) OnOffer() bool { return c.Offer != "" }

// Effective is the price a customer pays: the offer when one is set,
// otherwise the list price.
func (c PriceCell) Effective() string {
	if c.OnOffer() {
		return c.Offer
	}
	return c.List
}

// Struck is the list price shown crossed out next to an active offer, or
// "" when there is no offer.
func (c PriceCell) Struck() string {
	if c.OnOffer() {
		return c.List
	}
	return ""
}

// Display renders the effective price, or the placeholder on a miss.
func (c PriceCell) Display() string { return FormatCurrency(c.Effective()) }

// ResolvePrice is the one price rule shared by single-zone and comparison
// rendering.
func ResolvePrice(idx *catalog.Index, ref, zone string) PriceCell {
	t, ok := idx.Lookup(ref, zone)
	if !ok {
		return PriceCell{}
	}
	return PriceCell{List: t.ListPrice, Offer: t.OfferPrice, Found: true}
}

type ZonePrice struct {
	Zone  string
	Price PriceCell
}

// Project resolves ref across every column of mode.
func Project(idx *catalog.Index, ref string, mode Mode) []ZonePrice {
	cols := modeOrDefault(mode).Columns()
	out := make([]ZonePrice, 0, len(cols))
	for _, z := range cols {
		out = append(out, ZonePrice{Zone: z, Price: ResolvePrice(idx, ref, z)})
	}
	return out
}
