// Package documents selects and orders the rows of the printable store
// documents: the monthly stock-count sheet and the counter price list.
package documents

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"tarifario/internal"
	"tarifario/internal/catalog"
	"tarifario/internal/util"
)

var ErrNoPricedArticles = errors.New("no hay artículos con precio asignado para esta tienda")

// Families counted on the separate spices / packaging / cleaning sheet.
var AppendixFamilies = []string{"13", "14", "19"}

const (
	DefaultCompanyName = "Paraíso de la Carne Selección"
	unknownOrder       = 99
)

var monthNames = [...]string{
	"ENERO", "FEBRERO", "MARZO", "ABRIL", "MAYO", "JUNIO",
	"JULIO", "AGOSTO", "SEPTIEMBRE", "OCTUBRE", "NOVIEMBRE", "DICIEMBRE",
}

// MonthName is the upper-case Spanish month name.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

type InventoryRow struct {
	Reference   string
	Section     string
	Description string
}

type Inventory struct {
	Store    internal.PointOfSale
	Month    string
	Year     int
	Main     []InventoryRow
	Appendix []InventoryRow
}

func (inv Inventory) MainTitle() string {
	return inv.header(fmt.Sprintf("INVENTARIO CARNICERÍA/CHARCUTERÍA - %s %d", inv.Month, inv.Year))
}

func (inv Inventory) AppendixTitle() string {
	return inv.header(fmt.Sprintf("INVENTARIO ESPECIAS / ENVASES / LIMPIEZA - %s %d", inv.Month, inv.Year))
}

func (inv Inventory) header(title string) string {
	return fmt.Sprintf("%s   -   TIENDA: %s (%s) - %s", title, inv.Store.Zone, inv.Store.Code, inv.Store.City)
}

func (inv Inventory) FileName() string {
	return fmt.Sprintf("Inventario_%s_%s_%d.xlsx", inv.Store.Zone, inv.Month, inv.Year)
}

func isAppendix(family string) bool {
	for _, f := range AppendixFamilies {
		if f == family {
			return true
		}
	}
	return false
}

// BuildInventory lists the articles priced in the store's zone, split into
// the main sheet and the appendix families.
func BuildInventory(articles []internal.Article, idx *catalog.Index, store internal.PointOfSale, month string, year int) Inventory {
	col := collate.New(language.Spanish)

	var main, appendix []internal.Article
	for _, a := range articles {
		if isAppendix(a.Family) {
			appendix = append(appendix, a)
			continue
		}
		if t, ok := idx.Lookup(a.Reference, store.Zone); ok && t.ListPrice != "" {
			main = append(main, a)
		}
	}

	sort.SliceStable(main, func(i, j int) bool {
		si, sj := orderKey(main[i].Section), orderKey(main[j].Section)
		if si != sj {
			return si < sj
		}
		return col.CompareString(main[i].Description, main[j].Description) < 0
	})
	sort.SliceStable(appendix, func(i, j int) bool {
		return col.CompareString(appendix[i].Description, appendix[j].Description) < 0
	})

	return Inventory{
		Store:    store,
		Month:    strings.ToUpper(month),
		Year:     year,
		Main:     inventoryRows(main),
		Appendix: inventoryRows(appendix),
	}
}

func inventoryRows(articles []internal.Article) []InventoryRow {
	out := make([]InventoryRow, 0, len(articles))
	for _, a := range articles {
		out = append(out, InventoryRow{Reference: a.Reference, Section: a.Section, Description: a.Description})
	}
	return out
}

type PriceRow struct {
	Section     string
	Family      string
	Reference   string
	Unit        string
	Description string
	Price       string
}

type PriceList struct {
	Store    internal.PointOfSale
	Company  string
	Revision time.Time
	ShowPVP  bool
	Rows     []PriceRow
}

func (pl PriceList) Title() string {
	return strings.ToUpper(pl.Company)
}

func (pl PriceList) RevisionLabel() string {
	return "Fecha Revisión: " + pl.Revision.Format("2/1/2006")
}

func (pl PriceList) FileName() string {
	return fmt.Sprintf("Tarifa_%s_%s.xlsx", pl.Store.Zone, pl.Revision.Format("2006-01-02"))
}

// BuildPriceList lists every article with a list price in the store's
// zone, ordered by section, family and description. Prices are left blank
// when showPVP is false.
func BuildPriceList(articles []internal.Article, idx *catalog.Index, store internal.PointOfSale, company string, revision time.Time, showPVP bool) (PriceList, error) {
	if strings.TrimSpace(company) == "" {
		company = DefaultCompanyName
	}

	rows := []PriceRow{}
	for _, a := range articles {
		t, ok := idx.Lookup(a.Reference, store.Zone)
		if !ok || t.ListPrice == "" {
			continue
		}
		price := ""
		if showPVP {
			price = "-"
			if v, ok := util.ParseDecimal(t.ListPrice); ok {
				price = util.FormatSpanish(v) + " €"
			}
		}
		rows = append(rows, PriceRow{
			Section:     a.Section,
			Family:      a.Family,
			Reference:   a.Reference,
			Unit:        a.UnitOfMeasure,
			Description: a.Description,
			Price:       price,
		})
	}
	if len(rows) == 0 {
		return PriceList{}, fmt.Errorf("%w: %s", ErrNoPricedArticles, store.Zone)
	}

	col := collate.New(language.Spanish)
	sort.SliceStable(rows, func(i, j int) bool {
		if si, sj := orderKey(rows[i].Section), orderKey(rows[j].Section); si != sj {
			return si < sj
		}
		if fi, fj := orderKey(rows[i].Family), orderKey(rows[j].Family); fi != fj {
			return fi < fj
		}
		return col.CompareString(rows[i].Description, rows[j].Description) < 0
	})

	return PriceList{Store: store, Company: company, Revision: revision, ShowPVP: showPVP, Rows: rows}, nil
}

// orderKey reads a numeric section or family code; missing, zero and
// non-numeric codes sort after the rest.
func orderKey(code string) int {
	n, ok := util.ParseLeadingInt(code)
	if !ok || n == 0 {
		return unknownOrder
	}
	return n
}
