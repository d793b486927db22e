package telemetry

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*ParquetHandler, *bytes.Buffer, string) {
	t.Helper()
	dir := t.TempDir()
	var out bytes.Buffer
	next := slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug})
	h, err := NewParquetHandler(next, dir)
	require.NoError(t, err)
	return h, &out, dir
}

func parquetFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var files []string
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".parquet" {
			files = append(files, e.Name())
		}
	}
	return files
}

func TestParquetHandlerForwards(t *testing.T) {
	h, out, _ := newTestHandler(t)
	logger := slog.New(h)

	logger.Info("import finished", "movies", 2)
	assert.Contains(t, out.String(), "import finished")
}

func TestParquetHandlerBuffersErrors(t *testing.T) {
	h, _, dir := newTestHandler(t)
	logger := slog.New(h)

	logger.Info("not buffered")
	logger.Error("import failed", "batch", 3)

	// Below the batch size nothing is written until Flush.
	assert.Empty(t, parquetFiles(t, dir))

	require.NoError(t, h.Flush())
	assert.Len(t, parquetFiles(t, dir), 1)

	// Flushing an empty buffer writes nothing new.
	require.NoError(t, h.Flush())
	assert.Len(t, parquetFiles(t, dir), 1)
}
