package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"tarifario/internal"
)

var (
	convertedArticleHeader = []string{"Referencia", "Sección", "Descripción", "Familia", "Ult.Pro", "Ult. Costo IVA", "UN"}
	convertedTariffHeader  = []string{"Cod.", "Tienda", "Cód. Art.", "Descripción", "P.V.P.", "PVP Oferta", "Fec.Ini.Ofe.", "Fec.Fin.Ofe."}
)

// ConvertedFileName is the download name of a converted workbook.
func ConvertedFileName(kind Kind, now time.Time) string {
	prefix := "Artículos"
	if kind == KindTariffs {
		prefix = "Tarifas"
	}
	return fmt.Sprintf("%s_%s.csv", prefix, now.Format("2006-01-02"))
}

// WriteArticlesCSV writes converted articles as BOM-prefixed ';' CSV that
// spreadsheet software opens with the right encoding.
func WriteArticlesCSV(w io.Writer, articles []internal.Article) error {
	rows := make([][]string, 0, len(articles))
	for _, a := range articles {
		rows = append(rows, []string{a.Reference, a.Section, a.Description, a.Family, a.LastProvider, a.LastCost, a.UnitOfMeasure})
	}
	return writeSemicolonCSV(w, convertedArticleHeader, rows)
}

func WriteTariffsCSV(w io.Writer, tariffs []internal.Tariff) error {
	rows := make([][]string, 0, len(tariffs))
	for _, t := range tariffs {
		rows = append(rows, []string{t.Code, t.Store, t.ArticleRef, t.Description, t.ListPrice, t.OfferPrice, t.OfferStart, t.OfferEnd})
	}
	return writeSemicolonCSV(w, convertedTariffHeader, rows)
}

func writeSemicolonCSV(w io.Writer, header []string, rows [][]string) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
