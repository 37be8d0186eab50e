package validation

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator() *FileValidator {
	return NewFileValidator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileValidator_ValidateDataset(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       bool
		errorContains string
	}{
		{
			name: "csv",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "groceries.csv", "Member_number,Date,itemDescription\n")
			},
		},
		{
			name: "xlsx with upper case extension",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "GROCERIES.XLSX", "PK")
			},
		},
		{
			name:          "blank path",
			setupFunc:     func(t *testing.T) string { return " " },
			wantErr:       true,
			errorContains: "no dataset path",
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.csv")
			},
			wantErr:       true,
			errorContains: "does not exist",
		},
		{
			name:          "directory",
			setupFunc:     func(t *testing.T) string { return t.TempDir() },
			wantErr:       true,
			errorContains: "is a directory",
		},
		{
			name: "unsupported extension",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "groceries.json", "[]")
			},
			wantErr:       true,
			errorContains: "unsupported extension",
		},
		{
			name: "excel lock file",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "~$groceries.xlsx", "lock")
			},
			wantErr:       true,
			errorContains: "lock file",
		},
		{
			name: "empty file",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "groceries.csv", "")
			},
			wantErr:       true,
			errorContains: "is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newValidator().ValidateDataset(tt.setupFunc(t))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	t.Run("creates nested directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "reports", "2026")
		require.NoError(t, newValidator().ValidateOutputDirectory(dir))

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "write probe must be removed")
	})

	t.Run("path is a file", func(t *testing.T) {
		file := writeFile(t, t.TempDir(), "out", "x")
		assert.Error(t, newValidator().ValidateOutputDirectory(file))
	})
}
