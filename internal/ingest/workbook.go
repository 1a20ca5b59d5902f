package ingest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"tarifario/internal/util"
)

// ReadWorkbook returns the cell grid of the first sheet. Legacy ".xls"
// price lists are often HTML tables saved with an Excel extension; those
// are read with goquery, real workbooks with excelize.
func ReadWorkbook(filename string, content []byte) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		return readXLSX(content)
	case ".xls":
		if looksLikeHTML(content) {
			return readHTMLTable(content)
		}
		rows, err := readXLSX(content)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is a binary .xls, save it as .xlsx", ErrUnsupportedFile, filename)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: %s is not an .xls or .xlsx file", ErrUnsupportedFile, filename)
	}
}

func readXLSX(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidFormat)
	}
	return f.GetRows(sheets[0])
}

func looksLikeHTML(content []byte) bool {
	head := bytes.TrimPrefix(content, utf8BOM)
	if len(head) > 512 {
		head = head[:512]
	}
	lower := bytes.ToLower(bytes.TrimSpace(head))
	return bytes.HasPrefix(lower, []byte("<")) && (bytes.Contains(lower, []byte("<table")) || bytes.Contains(lower, []byte("<html")))
}

// readHTMLTable flattens the first <table> into rows; colspan cells are
// repeated so fixed column positions still line up.
func readHTMLTable(content []byte) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(DecodeText(content))))
	if err != nil {
		return nil, err
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: no table found", ErrInvalidFormat)
	}

	rows := [][]string{}
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := []string{}
		tr.Find("th,td").Each(func(_ int, td *goquery.Selection) {
			text := util.NormalizeSpaces(td.Text())
			span := 1
			if v, ok := td.Attr("colspan"); ok {
				if n, ok := util.ParseLeadingInt(v); ok && n > 1 {
					span = n
				}
			}
			for i := 0; i < span; i++ {
				cells = append(cells, text)
			}
		})
		rows = append(rows, cells)
	})
	return rows, nil
}
