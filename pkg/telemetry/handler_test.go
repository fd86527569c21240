package telemetry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParquetHandlerRecordsErrors(t *testing.T) {
	dir := t.TempDir()
	var text bytes.Buffer
	h, err := NewParquetHandler(slog.NewTextHandler(&text, nil), dir)
	require.NoError(t, err)

	log := slog.New(h).With("component", "ingest")
	ctx := WithSourceFile(WithRun(context.Background(), "run-1"), "reviews.csv")

	log.InfoContext(ctx, "not recorded")
	log.ErrorContext(ctx, "Failed to ingest file", "error", errors.New("boom"))

	require.NoError(t, h.Flush())
	assert.Contains(t, text.String(), "not recorded", "records still reach the next handler")

	files, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	rows, err := parquet.ReadFile[LogRecord](files[0])
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Failed to ingest file", rows[0].Message)
	assert.Equal(t, "run-1", rows[0].RunID)
	assert.Equal(t, "reviews.csv", rows[0].InputFile)
	assert.Contains(t, rows[0].Attributes, `"component":"ingest"`)
	assert.Contains(t, rows[0].Attributes, `"error":"boom"`)
	assert.NotEmpty(t, rows[0].ID)
}

func TestFlushWithoutRecordsWritesNothing(t *testing.T) {
	dir := t.TempDir()
	h, err := NewParquetHandler(slog.NewTextHandler(os.Stderr, nil), dir)
	require.NoError(t, err)
	require.NoError(t, h.Flush())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
