package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Write renders tables in the given format. CSV holds a single table, so only
// the first one is written; XLSX gets one sheet per table.
func Write(w io.Writer, format Format, tables ...Table) error {
	switch format {
	case FormatCSV:
		if len(tables) == 0 {
			return WriteCSV(w, Table{})
		}
		return WriteCSV(w, tables[0])
	case FormatXLSX:
		return WriteXLSX(w, tables...)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// WriteFile writes tables to path, creating parent directories. The format is
// taken from the file extension.
func WriteFile(path string, tables ...Table) error {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Write(file, format, tables...); err != nil {
		file.Close()
		return err
	}

	slog.Info("export written",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.Int("tables", len(tables)),
	)
	return file.Close()
}
