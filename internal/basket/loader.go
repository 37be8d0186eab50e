package basket

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
)

// Column names of the groceries dataset
const (
	DefaultCustomerColumn = "Member_number"
	DefaultDateColumn     = "Date"
	DefaultItemColumn     = "itemDescription"
)

// isoLayouts are always tried before the configured layouts
var isoLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// LoadOptions controls how a source table is mapped onto records
type LoadOptions struct {
	CustomerColumn string
	DateColumn     string
	ItemColumn     string
	// DateLayouts are extra time layouts tried after ISO-8601
	DateLayouts []string
	// Sheet selects the XLSX worksheet; empty means the first sheet
	Sheet string
}

// DefaultLoadOptions returns options matching the groceries CSV export (dates as dd-mm-yyyy)
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		CustomerColumn: DefaultCustomerColumn,
		DateColumn:     DefaultDateColumn,
		ItemColumn:     DefaultItemColumn,
		DateLayouts:    []string{"02-01-2006", "02/01/2006"},
	}
}

func (o LoadOptions) withDefaults() LoadOptions {
	d := DefaultLoadOptions()
	if o.CustomerColumn == "" {
		o.CustomerColumn = d.CustomerColumn
	}
	if o.DateColumn == "" {
		o.DateColumn = d.DateColumn
	}
	if o.ItemColumn == "" {
		o.ItemColumn = d.ItemColumn
	}
	if o.DateLayouts == nil {
		o.DateLayouts = d.DateLayouts
	}
	return o
}

// ParseDate parses an ISO-8601 date or one of the extra layouts and truncates it to the day
func ParseDate(value string, layouts []string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}

	for _, layout := range append(append([]string{}, isoLayouts...), layouts...) {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date format %q", value)
}

// LoadFile loads records from a .csv or .xlsx file
func LoadFile(ctx context.Context, path string, opts LoadOptions) ([]Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open dataset: %w", err)
		}
		defer file.Close()
		return LoadCSV(ctx, file, opts)
	case ".xlsx":
		return LoadXLSX(ctx, path, opts)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", filepath.Ext(path))
	}
}

// LoadCSV reads records from CSV data with a header row
func LoadCSV(ctx context.Context, r io.Reader, opts LoadOptions) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV records: %w", err)
	}
	return parseRows(ctx, rows, opts)
}

// LoadXLSX reads records from an Excel workbook
func LoadXLSX(ctx context.Context, path string, opts LoadOptions) ([]Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return parseRows(ctx, rows, opts)
}

// parseRows validates a header plus data rows. Row numbers in errors are 1-based file lines.
func parseRows(ctx context.Context, rows [][]string, opts LoadOptions) ([]Record, error) {
	opts = opts.withDefaults()

	if len(rows) == 0 {
		return nil, &DataError{Field: "header", Message: "dataset is empty"}
	}

	header := rows[0]
	customerIdx, err := columnIndex(header, opts.CustomerColumn)
	if err != nil {
		return nil, err
	}
	dateIdx, err := columnIndex(header, opts.DateColumn)
	if err != nil {
		return nil, err
	}
	itemIdx, err := columnIndex(header, opts.ItemColumn)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("load cancelled: %w", err)
			}
		}

		line := i + 2
		if isBlankRow(row) {
			continue
		}

		customer := cell(row, customerIdx)
		if customer == "" {
			return nil, &DataError{Row: line, Field: opts.CustomerColumn, Message: "customer id is missing"}
		}
		rawDate := cell(row, dateIdx)
		if rawDate == "" {
			return nil, &DataError{Row: line, Field: opts.DateColumn, Message: "date is missing"}
		}
		date, err := ParseDate(rawDate, opts.DateLayouts)
		if err != nil {
			return nil, &DataError{Row: line, Field: opts.DateColumn, Value: rawDate, Message: err.Error()}
		}
		item := cell(row, itemIdx)
		if item == "" {
			return nil, &DataError{Row: line, Field: opts.ItemColumn, Message: "item name is missing"}
		}
		if strings.IndexFunc(item, unicode.IsControl) >= 0 {
			return nil, &DataError{Row: line, Field: opts.ItemColumn, Value: item, Message: "item name contains control characters"}
		}

		records = append(records, Record{CustomerID: customer, Date: date, Item: item})
	}

	return records, nil
}

func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i, nil
		}
	}
	return -1, &DataError{Row: 1, Field: name, Value: header, Message: "required column not found in header"}
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
