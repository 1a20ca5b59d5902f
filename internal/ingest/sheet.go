package ingest

import (
	"strings"

	"tarifario/internal"
	"tarifario/internal/util"
)

// Layout describes a fixed-position price-list spreadsheet: how many
// leading rows to drop, which column must be filled for a row to count and
// which cells identify a repeated header row.
type Layout struct {
	SkipRows    int
	KeyCol      int
	HeaderCells map[int]string
}

// Zero-based columns of the articles workbook (B,D,E,F,J,L,M,N).
const (
	artColReference = 1
	artColSection   = 3
	artColDesc      = 4
	artColFamily    = 5
	artColProvider  = 9
	artColCost      = 11
	artColVAT       = 12
	artColUnit      = 13
)

// Zero-based columns of the tariffs workbook (C,D,E,F,J,M,O,R).
const (
	tarColCode       = 2
	tarColStore      = 3
	tarColArticle    = 4
	tarColDesc       = 5
	tarColListPrice  = 9
	tarColOfferPrice = 12
	tarColOfferStart = 14
	tarColOfferEnd   = 17
)

var (
	ArticleLayout = Layout{
		SkipRows:    2,
		KeyCol:      artColReference,
		HeaderCells: map[int]string{artColReference: "Referencia", artColCost: "Ult. Costo"},
	}
	TariffLayout = Layout{
		SkipRows:    4,
		KeyCol:      tarColCode,
		HeaderCells: map[int]string{tarColCode: "Cod."},
	}
)

// dataRows applies the layout's skip count, empty-key filter and the
// repeated-header heuristic. An article legitimately named like a header
// label is dropped too; the heuristic only absorbs layout drift.
func (l Layout) dataRows(rows [][]string) [][]string {
	if len(rows) <= l.SkipRows {
		return nil
	}
	out := make([][]string, 0, len(rows)-l.SkipRows)
	for _, row := range rows[l.SkipRows:] {
		if cell(row, l.KeyCol) == "" {
			continue
		}
		if l.looksLikeHeader(row) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func (l Layout) looksLikeHeader(row []string) bool {
	for col, label := range l.HeaderCells {
		if cell(row, col) == label {
			return true
		}
	}
	return false
}

// CostWithTax applies cost + cost*tax/100 and renders it with a decimal
// comma and two fraction digits. Unreadable inputs count as zero.
func CostWithTax(rawCost, rawTax string) string {
	cost, _ := util.ParseDecimal(rawCost)
	tax, _ := util.ParseLeadingInt(rawTax)
	return util.FormatComma2(cost + cost*float64(tax)/100)
}

func ConvertArticleRows(rows [][]string) []internal.Article {
	data := ArticleLayout.dataRows(rows)
	out := make([]internal.Article, 0, len(data))
	for _, row := range data {
		out = append(out, internal.Article{
			Reference:     cell(row, artColReference),
			Section:       cell(row, artColSection),
			Description:   cell(row, artColDesc),
			Family:        cell(row, artColFamily),
			LastProvider:  cell(row, artColProvider),
			LastCost:      CostWithTax(cell(row, artColCost), cell(row, artColVAT)),
			UnitOfMeasure: cell(row, artColUnit),
		})
	}
	return out
}

func ConvertTariffRows(rows [][]string) []internal.Tariff {
	data := TariffLayout.dataRows(rows)
	out := make([]internal.Tariff, 0, len(data))
	for _, row := range data {
		list, _ := util.ParseDecimal(cell(row, tarColListPrice))
		t := internal.Tariff{
			Code:        cell(row, tarColCode),
			Store:       cell(row, tarColStore),
			ArticleRef:  cell(row, tarColArticle),
			Description: cell(row, tarColDesc),
			ListPrice:   util.FormatComma2(list),
			OfferStart:  cell(row, tarColOfferStart),
			OfferEnd:    cell(row, tarColOfferEnd),
		}
		if offer, _ := util.ParseDecimal(cell(row, tarColOfferPrice)); offer > 0 {
			t.OfferPrice = util.FormatComma2(offer)
		}
		out = append(out, t)
	}
	return out
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
