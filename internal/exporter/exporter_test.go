package exporter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"basketlens/internal/basket"
)

func sampleItemsets() []basket.Itemset {
	return []basket.Itemset{
		{Items: []string{"whole milk"}, Count: 5, Support: 5.0 / 6.0},
		{Items: []string{"rolls/buns", "whole milk"}, Count: 2, Support: 2.0 / 6.0},
	}
}

func sampleRules() []basket.Rule {
	return []basket.Rule{{
		Antecedent:        []string{"yogurt"},
		Consequent:        []string{"whole milk"},
		AntecedentSupport: 1.0 / 3.0,
		ConsequentSupport: 5.0 / 6.0,
		Support:           1.0 / 3.0,
		Confidence:        1,
		Lift:              1.2,
		Leverage:          1.0/3.0 - (1.0/3.0)*(5.0/6.0),
	}}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{".XLSX", FormatXLSX, false},
		{"excel", FormatXLSX, false},
		{"", FormatCSV, false},
		{"json", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, ".xlsx", FormatXLSX.Extension())
	assert.Contains(t, FormatCSV.ContentType(), "text/csv")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, ItemsetTable(sampleItemsets())))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, utf8BOM))

	rows, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"rank", "itemset", "size", "count", "support"},
		{"1", "whole milk", "1", "5", "0.833333"},
		{"2", "rolls/buns, whole milk", "2", "2", "0.333333"},
	}, rows)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, ItemsetTable(sampleItemsets()), RuleTable(sampleRules())))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"itemsets", "rules"}, f.GetSheetList())

	rows, err := f.GetRows("rules")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "antecedent", rows[0][1])
	assert.Equal(t, "yogurt", rows[1][1])
	assert.Equal(t, "1.2", rows[1][7])
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "out", "summary.xlsx")
	require.NoError(t, WriteFile(path, OverviewTable(basket.Overview{
		Records:   10,
		FirstDate: time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
		LastDate:  time.Date(2015, 12, 31, 0, 0, 0, 0, time.UTC),
	})))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	value, err := f.GetCellValue("overview", "B2")
	require.NoError(t, err)
	assert.Equal(t, "10", value)

	assert.Error(t, WriteFile(filepath.Join(dir, "report.json"), ItemsetTable(nil)))
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "", formatCell(nil))
	assert.Equal(t, "7", formatCell(7))
	assert.Equal(t, "0.100000", formatCell(0.1))
	assert.Equal(t, "true", formatCell(true))
}
