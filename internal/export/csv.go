package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Agrid-Dev/envelope/internal/envelope"
)

// WriteCSV writes one "section,quantity,value,unit" row per figure.
func WriteCSV(w io.Writer, room envelope.Room, p envelope.Params, res envelope.Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"section", "quantity", "value", "unit"}); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for _, r := range rows(room, p, res) {
		rec := []string{r.Section, r.Name, strconv.FormatFloat(r.Value, 'f', r.Prec, 64), r.Unit}
		if err := writer.Write(rec); err != nil {
			return fmt.Errorf("write CSV record: %w", err)
		}
	}
	if err := writer.Write([]string{"optimization", "outcome", res.Outcome.String(), ""}); err != nil {
		return fmt.Errorf("write CSV record: %w", err)
	}
	writer.Flush()
	return writer.Error()
}
