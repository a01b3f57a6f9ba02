package qhttpd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerDisabledSuppressesDebugAndInfo(t *testing.T) {
	buf := &bytes.Buffer{}
	l := newLogger(false)
	l.Output = buf

	l.Debug("hidden")
	l.Info("also hidden")

	assert.Zero(t, buf.Len())
}

func TestLoggerDisabledStillEmitsWarnAndError(t *testing.T) {
	buf := &bytes.Buffer{}
	l := newLogger(false)
	l.Output = buf

	l.Warn("careful")
	l.Error("broken")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
}

func TestLoggerEnabledEmitsDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	l := newLogger(true)
	l.Output = buf

	l.Debugf("id=%d", 7)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "id=7", entry["message"])
}

func TestLoggerEntryIsValidJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	l := newLogger(true)
	l.Output = buf

	l.Info("starting on", ":8080")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Contains(t, entry, "time")
}
