package query

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"tarifario/internal"
	"tarifario/internal/catalog"
)

// ReportDateLayout is how report timestamps are written.
const ReportDateLayout = "02/01/2006, 15:04:05"

const defaultSupervisor = "Supervisor"

// ParseExportMode accepts the stored report type names.
func ParseExportMode(s string) (internal.ReportType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "completo", "full":
		return internal.ReportFull, nil
	case "solo notas", "solo_notas", "notes":
		return internal.ReportNotesOnly, nil
	default:
		return "", fmt.Errorf("unknown export mode: %s", s)
	}
}

// Serialize renders articles as ';'-separated text. The price columns
// follow mode and carry each zone's list price, or Placeholder when the
// zone has none. Field values are written as is: they must not contain
// ';' or newlines.
func Serialize(articles []internal.Article, exportMode internal.ReportType, notes *Notes, idx *catalog.Index, mode Mode) string {
	mode = modeOrDefault(mode)
	cols := mode.Columns()

	header := []string{"Referencia", "Descripción", "Coste"}
	header = append(header, mode.Labels()...)
	header = append(header, "Nota")

	lines := []string{strings.Join(header, ";")}
	for _, a := range articles {
		note := notes.Get(a.Reference)
		if exportMode == internal.ReportNotesOnly && note == "" {
			continue
		}

		fields := make([]string, 0, len(cols)+4)
		fields = append(fields, a.Reference, a.Description, a.LastCost)
		for _, z := range cols {
			price := Placeholder
			if cell := ResolvePrice(idx, a.Reference, z); cell.List != "" {
				price = cell.List
			}
			fields = append(fields, price)
		}
		fields = append(fields, note)
		lines = append(lines, strings.Join(fields, ";"))
	}
	return strings.Join(lines, "\n")
}

// NewReport wraps a serialized payload for the admin inbox. Reports start
// unread.
func NewReport(supervisor string, mode Mode, exportMode internal.ReportType, payload string, now time.Time) internal.Report {
	if strings.TrimSpace(supervisor) == "" {
		supervisor = defaultSupervisor
	}
	return internal.Report{
		ID:             uuid.NewString(),
		Date:           now.Format(ReportDateLayout),
		SupervisorName: supervisor,
		ZoneFilter:     ZoneDescriptor(mode),
		Type:           exportMode,
		CSVContent:     payload,
		Read:           false,
	}
}

// ExportFileName is the download name of a serialized listing.
func ExportFileName(exportMode internal.ReportType) string {
	return fmt.Sprintf("listado_%s.csv", strings.Replace(string(exportMode), " ", "_", 1))
}

// WithBOM prefixes payload with a UTF-8 byte order mark so spreadsheet
// software picks the right encoding.
func WithBOM(payload string) []byte {
	out := make([]byte, 0, len(payload)+3)
	out = append(out, 0xEF, 0xBB, 0xBF)
	return append(out, payload...)
}

// WriteXLSX lays a serialized payload out on the first sheet of a new
// workbook at outputPath.
func WriteXLSX(payload, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for r, line := range strings.Split(payload, "\n") {
		for c, value := range strings.Split(line, ";") {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
