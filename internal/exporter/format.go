package exporter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsupportedFormat is returned for export formats other than csv and xlsx
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format is an export file format
type Format string

// Supported formats
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a format name or file extension onto a Format
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "csv", "":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Extension returns the file extension including the dot
func (f Format) Extension() string {
	return "." + string(f)
}

// formatFloat renders supports and rule measures with six decimals
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}

// formatCell renders one table cell as CSV text
func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return formatFloat(x)
	default:
		return fmt.Sprint(x)
	}
}
