package export

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidFormat = errors.New("invalid export format")

// Format is an integer enum of report encodings.
type Format int

const (
	FormatUnknown Format = iota
	FormatText
	FormatJSON
	FormatCSV
	FormatPDF
	FormatXLSX
)

func (f Format) Valid() bool {
	return f >= FormatText && f <= FormatXLSX
}

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	case FormatPDF:
		return "pdf"
	case FormatXLSX:
		return "xlsx"
	default:
		return "unknown"
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatText:
		return "text/plain; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// Extension is the file suffix, including the dot.
func (f Format) Extension() string {
	if f == FormatText {
		return ".txt"
	}
	return "." + f.String()
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "pdf":
		return FormatPDF, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
}
