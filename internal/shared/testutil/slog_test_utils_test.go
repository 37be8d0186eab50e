package testutil

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures records with derived attributes", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With(slog.String("component", "miner")).Info("frequent itemsets mined", slog.Int("itemsets", 42))
		logger.Error("load failed", slog.Int("row", 7))

		require.Equal(t, 2, handler.Count())
		rec, ok := handler.Find("itemsets mined")
		require.True(t, ok)
		assert.Equal(t, "miner", rec.Attrs["component"])
		assert.True(t, handler.ContainsAttr("itemsets", int64(42)))
		assert.True(t, handler.ContainsMessage("load failed"))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")

		assert.Len(t, handler.RecordsAt(slog.LevelDebug), 1)
		assert.Len(t, handler.RecordsAt(slog.LevelInfo), 1)
		assert.Empty(t, handler.RecordsAt(slog.LevelError))
		AssertLogContains(t, handler, slog.LevelWarn, "warn")
		AssertNoErrors(t, handler)
	})
}

func TestWriteGroceriesCSV(t *testing.T) {
	path := WriteGroceriesCSV(t)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, GroceriesCSV, string(data))
}
