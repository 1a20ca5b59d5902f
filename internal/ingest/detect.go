package ingest

import (
	"path/filepath"
	"strings"
)

type DetectResult struct {
	Kind   Kind
	Score  float64
	Reason string
}

var (
	articleKeywords = []string{"articulo", "artículo", "articles", "referencia", "ult. costo", "uni.med", "familia"}
	tariffKeywords  = []string{"tarifa", "tariff", "tienda", "p.v.p", "pvp oferta", "cód. art", "fec.ini.ofe"}
)

// IsImportable reports whether filename has an extension the importer reads.
func IsImportable(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xls", ".xlsx":
		return true
	default:
		return false
	}
}

// DetectKind guesses whether an attachment holds articles or tariffs from
// its file name and, when available, its header line. Kind is empty when
// neither side scores.
func DetectKind(filename, headerLine string) DetectResult {
	name := strings.ToLower(filename)
	header := strings.ToLower(headerLine)

	artScore, tarScore := 0.0, 0.0
	for _, kw := range articleKeywords {
		if strings.Contains(name, kw) {
			artScore += 0.5
		}
		if strings.Contains(header, kw) {
			artScore += 0.2
		}
	}
	for _, kw := range tariffKeywords {
		if strings.Contains(name, kw) {
			tarScore += 0.5
		}
		if strings.Contains(header, kw) {
			tarScore += 0.2
		}
	}

	switch {
	case tarScore > artScore:
		return DetectResult{Kind: KindTariffs, Score: clamp(tarScore), Reason: "rules_tariffs"}
	case artScore > tarScore:
		return DetectResult{Kind: KindArticles, Score: clamp(artScore), Reason: "rules_articles"}
	default:
		return DetectResult{Score: 0, Reason: "rules_negative"}
	}
}

// HeaderLine returns the first non-blank line of a delimited export.
func HeaderLine(text string) string {
	lines := splitLines(text)
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
