package documents

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

var (
	inventoryHeaders = []string{"C.Art", "Secc.", "Descripción", "EXISTENCIAS", "NOTA"}
	priceListHeaders = []string{"Mostrador", "Familia", "Código", "Tipo", "Artículo"}
)

// WriteInventoryXLSX renders the main sheet and, when there is one, the
// appendix sheet of inv.
func WriteInventoryXLSX(inv Inventory, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	main := f.GetSheetName(0)
	if err := f.SetSheetName(main, "Inventario"); err != nil {
		return err
	}
	if err := writeInventorySheet(f, "Inventario", inv.MainTitle(), inv.Main, bold); err != nil {
		return err
	}

	if len(inv.Appendix) > 0 {
		if _, err := f.NewSheet("Anexo"); err != nil {
			return err
		}
		if err := writeInventorySheet(f, "Anexo", inv.AppendixTitle(), inv.Appendix, bold); err != nil {
			return err
		}
	}

	return save(f, outputPath)
}

func writeInventorySheet(f *excelize.File, sheet, title string, rows []InventoryRow, bold int) error {
	if err := f.SetCellStr(sheet, "A1", title); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", bold); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, 2, inventoryHeaders, bold); err != nil {
		return err
	}
	for i, row := range rows {
		r := i + 3
		set := func(col int, value string) error {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			return f.SetCellStr(sheet, cell, value)
		}
		if err := set(1, row.Reference); err != nil {
			return err
		}
		if err := set(2, row.Section); err != nil {
			return err
		}
		if err := set(3, row.Description); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "C", "C", 48)
}

// WritePriceListXLSX renders pl on a single sheet.
func WritePriceListXLSX(pl PriceList, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := f.SetCellStr(sheet, "A1", pl.Title()); err != nil {
		return err
	}
	if err := f.SetCellStr(sheet, "E1", pl.RevisionLabel()); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", bold); err != nil {
		return err
	}

	headers := append([]string(nil), priceListHeaders...)
	if pl.ShowPVP {
		headers = append(headers, "PVP")
	} else {
		headers = append(headers, "")
	}
	if err := writeHeader(f, sheet, 2, headers, bold); err != nil {
		return err
	}

	for i, row := range pl.Rows {
		values := []string{row.Section, row.Family, row.Reference, row.Unit, row.Description, row.Price}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, i+3)
			if err := f.SetCellStr(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	if err := f.SetColWidth(sheet, "E", "E", 48); err != nil {
		return err
	}

	return save(f, outputPath)
}

func writeHeader(f *excelize.File, sheet string, row int, headers []string, style int) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		if err := f.SetCellStr(sheet, cell, h); err != nil {
			return err
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(headers), row)
	return f.SetCellStyle(sheet, first, last, style)
}

func save(f *excelize.File, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
