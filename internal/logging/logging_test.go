package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "debug", "json")

	l.Info("stage created", "stage_id", 42, "error", errors.New("boom"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "stage created", line["message"])
	assert.Equal(t, float64(42), line["stage_id"])
	assert.Equal(t, "boom", line["error"])
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn", "json")

	l.Debug("hidden")
	l.Info("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_OddArgs(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", "json")

	l.Error("dangling", "only-key")
	assert.Contains(t, buf.String(), "!BADKEY")
}
