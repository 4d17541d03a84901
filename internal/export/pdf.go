package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/phpdave11/gofpdf"

	"github.com/Agrid-Dev/envelope/internal/envelope"
)

// WritePDF renders an A4 page with a summary table followed by the text report.
func WritePDF(w io.Writer, room envelope.Room, p envelope.Params, res envelope.Result) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Room Envelope Heat Loss Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(40, 7, "Section", "1", 0, "L", false, 0, "")
	pdf.CellFormat(70, 7, "Quantity", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, "Value", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Unit", "1", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, r := range rows(room, p, res) {
		pdf.CellFormat(40, 6, r.Section, "1", 0, "L", false, 0, "")
		pdf.CellFormat(70, 6, strings.ReplaceAll(r.Name, "_", " "), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, strconv.FormatFloat(r.Value, 'f', r.Prec, 64), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, r.Unit, "1", 1, "L", false, 0, "")
	}

	pdf.AddPage()
	pdf.SetFont("Courier", "", 9)
	pdf.MultiCell(0, 4.5, tr(res.Report), "", "L", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
