package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Agrid-Dev/envelope/internal/envelope"
)

const (
	summarySheet = "Summary"
	lossesSheet  = "Losses"
)

// WriteXLSX writes a workbook with a summary sheet and a per-surface sheet.
func WriteXLSX(w io.Writer, room envelope.Room, p envelope.Params, res envelope.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := setRow(f, summarySheet, 1, "Section", "Quantity", "Value", "Unit"); err != nil {
		return err
	}
	for i, r := range rows(room, p, res) {
		if err := setRow(f, summarySheet, i+2, r.Section, r.Name, r.Value, r.Unit); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "B", 26); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}

	if _, err := f.NewSheet(lossesSheet); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := setRow(f, lossesSheet, 1, "Surface", "Area (m2)", "Loss (W)", "Share (%)"); err != nil {
		return err
	}
	for i, l := range res.Losses() {
		if err := setRow(f, lossesSheet, i+2, l.Surface.String(), l.Area, l.Loss, l.Share); err != nil {
			return err
		}
	}
	total := len(res.Losses()) + 2
	if err := setRow(f, lossesSheet, total, "total", res.WallArea+res.RoofArea+res.FloorArea, res.TotalHeatLoss, 100.0); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
	}
	return nil
}
