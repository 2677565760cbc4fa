package receipt

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
)

// Sheet names in the exported workbook
const (
	ScansSheet = "Scans"
	ItemsSheet = "Items"
)

var (
	scanHeaders = []string{"ID", "Created", "File", "Variant", "Merchant", "Date", "Subtotal", "Tax", "Total", "Items"}
	itemHeaders = []string{"Scan ID", "Description", "Amount"}
)

// ExportScans renders the scan history as an XLSX workbook, one row per scan
// on the Scans sheet and one row per extracted item on the Items sheet
func (s *Service) ExportScans() ([]byte, error) {
	start := time.Now()

	scans, err := s.db.ListScans()
	if err != nil {
		return nil, fmt.Errorf("listing scans: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	// The default workbook starts with Sheet1
	if err := f.SetSheetName(f.GetSheetName(0), ScansSheet); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}
	if _, err := f.NewSheet(ItemsSheet); err != nil {
		return nil, fmt.Errorf("adding sheet: %w", err)
	}

	writeRow(f, ScansSheet, 1, toAny(scanHeaders)...)
	writeRow(f, ItemsSheet, 1, toAny(itemHeaders)...)

	scanRow, itemRow := 2, 2
	for _, scan := range scans {
		r := scan.Result
		if r == nil {
			writeRow(f, ScansSheet, scanRow, scan.ID, scan.CreatedAt.Format(time.RFC3339), scan.Filename)
			scanRow++
			continue
		}

		writeRow(f, ScansSheet, scanRow,
			scan.ID,
			scan.CreatedAt.Format(time.RFC3339),
			scan.Filename,
			r.Meta.PreprocessVariant,
			deref(r.Merchant),
			deref(r.Date),
			deref(r.Totals.Subtotal),
			deref(r.Totals.Tax),
			deref(r.Totals.Total),
			len(r.Items),
		)
		scanRow++

		for _, item := range r.Items {
			writeRow(f, ItemsSheet, itemRow, scan.ID, item.Description, deref(item.Amount))
			itemRow++
		}
	}

	_ = f.SetColWidth(ScansSheet, "A", "A", 38) // id
	_ = f.SetColWidth(ScansSheet, "B", "B", 22) // created
	_ = f.SetColWidth(ScansSheet, "C", "C", 30) // file
	_ = f.SetColWidth(ScansSheet, "E", "E", 28) // merchant
	_ = f.SetColWidth(ScansSheet, "G", "I", 12) // amounts
	_ = f.SetColWidth(ItemsSheet, "A", "A", 38)
	_ = f.SetColWidth(ItemsSheet, "B", "B", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	slog.Info("Exported scans",
		"scans", len(scans),
		"items", itemRow-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
