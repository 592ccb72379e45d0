package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/decred/slog"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestConsoleLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)

	l.Info("loaded %d keys", 3)
	l.Success("saved")
	l.Warn("careful")
	l.Error("failed: %v", "boom")
	l.Debug("hidden")

	assert.Equal(t, "[INFO] loaded 3 keys\n[OK] saved\n[WARN] careful\n[ERROR] failed: boom\n", buf.String())
}

func TestVerboseShowsDebug(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, true).Debug("batch %d/%d", 1, 2)
	assert.Equal(t, "[DEBUG] batch 1/2\n", buf.String())
}

func TestFileReceivesDebugAndSubsystems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	var buf bytes.Buffer
	l := New(&buf, false)

	assert.Equal(t, slog.Disabled, l.Subsystem("TRNS"))
	require.NoError(t, l.OpenFile(path))
	assert.Equal(t, path, l.FilePath())

	l.Info("starting")
	l.Debug("detail only in file")
	l.Subsystem("TRNS").Warnf("429 from %s", "groq")
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "[INF] STRK: starting")
	assert.Contains(t, out, "[DBG] STRK: detail only in file")
	assert.Contains(t, out, "[WRN] TRNS: 429 from groq")
	assert.NotContains(t, buf.String(), "detail only in file")
	assert.Empty(t, l.FilePath())
}

func TestTimestampedPath(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, filepath.Join("/tmp", "localization_20240309_140507.log"), TimestampedPath("/tmp", now))
}
