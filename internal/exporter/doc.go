// Package exporter writes mining results as CSV or XLSX.
//
// Results are first flattened into a Table (a named sheet with headers and typed
// cells) and then rendered by a format specific writer:
//
//	table := exporter.RuleTable(rules)
//	err := exporter.Write(w, exporter.FormatXLSX, table)
//
// CSV output starts with a UTF-8 BOM so spreadsheet tools detect the encoding.
// XLSX output keeps numbers as numeric cells, and WriteFile can place several
// tables in one workbook.
package exporter
