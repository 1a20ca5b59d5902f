package ingest

import (
	"errors"
	"fmt"
	"strings"

	"tarifario/internal"
	"tarifario/internal/util"
)

var (
	ErrInvalidFormat   = errors.New("invalid format")
	ErrUnsupportedFile = errors.New("unsupported file")
)

type Kind string

const (
	KindArticles Kind = "articulos"
	KindTariffs  Kind = "tarifas"
)

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "articulos", "artículos", "articles":
		return KindArticles, nil
	case "tarifas", "tariffs":
		return KindTariffs, nil
	default:
		return "", fmt.Errorf("unknown import kind: %s", s)
	}
}

// Record is one delimited row keyed by its (renamed) header.
type Record map[string]string

// Headers whose source spelling differs from the stored key.
var headerRenames = map[string]string{
	"Uni.Med": "UniMed",
}

// ParseDelimited reads ';'-separated text: a header row followed by data
// rows. Blank lines are dropped and rows with fewer fields than headers are
// skipped as truncated.
func ParseDelimited(text string) ([]Record, error) {
	lines := splitLines(text)
	if len(lines) < 2 {
		return nil, fmt.Errorf("%w: expected a header and at least one row", ErrInvalidFormat)
	}

	headers := strings.Split(lines[0], ";")
	for i, h := range headers {
		h = util.Unquote(h)
		if renamed, ok := headerRenames[h]; ok {
			h = renamed
		}
		headers[i] = h
	}

	out := make([]Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := strings.Split(line, ";")
		if len(fields) < len(headers) {
			continue
		}
		rec := make(Record, len(headers))
		for i, h := range headers {
			rec[h] = util.Unquote(fields[i])
		}
		out = append(out, rec)
	}
	return out, nil
}

// ParseArticles parses an articles export. The first record must carry a
// reference or the whole file is rejected.
func ParseArticles(text string) ([]internal.Article, error) {
	records, err := ParseDelimited(text)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || records[0]["Referencia"] == "" {
		return nil, fmt.Errorf("%w: articles file has no Referencia", ErrInvalidFormat)
	}

	out := make([]internal.Article, 0, len(records))
	for _, r := range records {
		out = append(out, internal.Article{
			Reference:     strings.TrimSpace(r["Referencia"]),
			Section:       r["Sección"],
			Description:   r["Descripción"],
			Family:        r["Familia"],
			LastProvider:  r["Ult.Pro"],
			LastCost:      util.FirstNonEmpty(r["Ult. Costo"], r["Ult. Costo IVA"]),
			VAT:           r["IVA"],
			UnitOfMeasure: util.FirstNonEmpty(r["UniMed"], r["UN"]),
		})
	}
	return out, nil
}

// ParseTariffs parses a tariffs export. The first record must name a store.
func ParseTariffs(text string) ([]internal.Tariff, error) {
	records, err := ParseDelimited(text)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || records[0]["Tienda"] == "" {
		return nil, fmt.Errorf("%w: tariffs file has no Tienda", ErrInvalidFormat)
	}

	out := make([]internal.Tariff, 0, len(records))
	for _, r := range records {
		out = append(out, internal.Tariff{
			Code:        r["Cod."],
			Store:       r["Tienda"],
			ArticleRef:  r["Cód. Art."],
			Description: r["Descripción"],
			ListPrice:   r["P.V.P."],
			OfferPrice:  r["PVP Oferta"],
			OfferStart:  r["Fec.Ini.Ofe."],
			OfferEnd:    r["Fec.Fin.Ofe."],
		})
	}
	return out, nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
