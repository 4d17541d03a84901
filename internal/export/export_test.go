package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/Agrid-Dev/envelope/internal/envelope"
)

func calculate(t *testing.T, opts ...func(*envelope.Params)) (envelope.Room, envelope.Params, envelope.Result) {
	t.Helper()
	room := envelope.NewRoom(envelope.Point{}, 5, 4, 2.5)
	p := envelope.DefaultParams()
	for _, opt := range opts {
		opt(&p)
	}
	res, err := envelope.Calculate(room, p)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	return room, p, res
}

func TestParseFormat_Table(t *testing.T) {
	cases := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"", FormatText, false},
		{"JSON", FormatJSON, false},
		{"csv", FormatCSV, false},
		{" pdf ", FormatPDF, false},
		{"xlsx", FormatXLSX, false},
		{"docx", FormatUnknown, true},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseFormat(tc.in)
			if tc.wantErr != (err != nil) {
				t.Fatalf("ParseFormat(%q) err=%v wantErr=%v", tc.in, err, tc.wantErr)
			}
			if tc.wantErr && !errors.Is(err, ErrInvalidFormat) {
				t.Fatalf("expected ErrInvalidFormat, got %v", err)
			}
			if got != tc.want {
				t.Fatalf("ParseFormat(%q)=%v want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestFormatMetadata(t *testing.T) {
	if FormatText.Extension() != ".txt" || FormatXLSX.Extension() != ".xlsx" {
		t.Fatalf("unexpected extensions")
	}
	if FormatPDF.ContentType() != "application/pdf" {
		t.Fatalf("unexpected pdf content type %q", FormatPDF.ContentType())
	}
	if Format(99).Valid() {
		t.Fatal("expected out of range format to be invalid")
	}
}

func TestWriteText(t *testing.T) {
	room, p, res := calculate(t)
	var buf bytes.Buffer
	if err := Write(&buf, FormatText, "id-1", room, p, res); err != nil {
		t.Fatal(err)
	}
	if buf.String() != res.Report {
		t.Fatalf("expected report text")
	}
}

func TestWriteJSON(t *testing.T) {
	room, p, res := calculate(t, func(p *envelope.Params) {
		p.TargetHeatLoss = 300
		p.Optimize = true
	})
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, "id-1", room, p, res); err != nil {
		t.Fatal(err)
	}

	var got Document
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	want := NewDocument("id-1", room, p, res)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
	if got.Result.Outcome != "unachievable" || len(got.Result.Warnings) != 1 {
		t.Fatalf("unexpected optimization fields: %+v", got.Result)
	}
}

func TestNewResultDTOEmptyWarningsIsArray(t *testing.T) {
	_, _, res := calculate(t)
	b, err := json.Marshal(NewResultDTO(res))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"warnings":[]`) {
		t.Fatalf("expected empty warnings array, got %s", b)
	}
}

func TestRoomDTORoundTrip(t *testing.T) {
	room := envelope.NewRoom(envelope.Point{X: 2, Y: 3, Z: 1}, 6, 5, 3)
	got := NewRoomDTO(room).Room()
	if diff := cmp.Diff(room, got); diff != "" {
		t.Fatalf("room mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSV(t *testing.T) {
	room, p, res := calculate(t)
	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, "", room, p, res); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	if got := strings.Join(records[0], ","); got != "section,quantity,value,unit" {
		t.Fatalf("unexpected header %q", got)
	}
	values := map[string]string{}
	for _, r := range records[1:] {
		values[r[1]] = r[2]
	}
	for k, want := range map[string]string{
		"total_heat_loss":         "486",
		"window_loss":             "189",
		"wall_share":              "33.3",
		"surface_to_volume_ratio": "1.700",
		"net_heating":             "286",
		"outcome":                 "not_requested",
	} {
		if values[k] != want {
			t.Fatalf("%s: got %q, want %q", k, values[k], want)
		}
	}
}

func TestWritePDF(t *testing.T) {
	room, p, res := calculate(t)
	var buf bytes.Buffer
	if err := Write(&buf, FormatPDF, "", room, p, res); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("expected PDF header, got %q", buf.Bytes()[:8])
	}
}

func TestWriteXLSX(t *testing.T) {
	room, p, res := calculate(t)
	var buf bytes.Buffer
	if err := Write(&buf, FormatXLSX, "", room, p, res); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 2 || got[0] != summarySheet || got[1] != lossesSheet {
		t.Fatalf("unexpected sheets %v", got)
	}
	surface, err := f.GetCellValue(lossesSheet, "A3")
	if err != nil {
		t.Fatal(err)
	}
	if surface != "window" {
		t.Fatalf("expected window on row 3, got %q", surface)
	}
	total, err := f.GetCellValue(lossesSheet, "A6")
	if err != nil {
		t.Fatal(err)
	}
	if total != "total" {
		t.Fatalf("expected total row, got %q", total)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	room, p, res := calculate(t)
	err := Write(&bytes.Buffer{}, FormatUnknown, "", room, p, res)
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}
