package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONToWriter(t *testing.T) {
	var buf bytes.Buffer
	l, closer, err := New(Options{Level: "debug", Format: "json", Stderr: &buf})
	require.NoError(t, err)
	defer closer.Close()

	NewComponentLogger(l, "match").Debug("候选被拒绝", String("site", "waybig"), Int("page", 2))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "match", rec[FieldComponent])
	assert.Equal(t, "waybig", rec["site"])
	assert.EqualValues(t, 2, rec["page"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l, _, err := New(Options{Level: "warn", Stderr: &buf})
	require.NoError(t, err)

	l.Info("hidden")
	assert.Zero(t, buf.Len())
	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_FileSink(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "logs", "filmmatch.log")

	var buf bytes.Buffer
	l, closer, err := New(Options{File: file, Stderr: &buf})
	require.NoError(t, err)
	l.Info("hello", RequestID("abc"))
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), "request_id=abc")
	assert.Contains(t, buf.String(), "hello")
}

func TestNew_RejectsUnknownSettings(t *testing.T) {
	_, _, err := New(Options{Level: "loud"})
	assert.Error(t, err)
	_, _, err = New(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestOr(t *testing.T) {
	assert.NotNil(t, Or(nil))
	NewNop().Info("nothing")
}
