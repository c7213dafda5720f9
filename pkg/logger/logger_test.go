package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFilteringAndPrefix(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("WARN")
	defer Init("INFO", false)

	Info("hidden")
	Warn("shown %d", 1)
	WithPrefix("store").Error("boom")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown 1")
	assert.Contains(t, out, "[store] [ERROR] boom")
}

func TestPrefixedLoggerFollowsReinit(t *testing.T) {
	l := WithPrefix("gateway")

	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("DEBUG")
	defer Init("INFO", false)

	l.Debug("after init")
	assert.Contains(t, buf.String(), "[gateway] [DEBUG] after init")
}

func TestInitWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	InitWithFile("INFO", true, path)
	defer Init("INFO", false)

	Info("to file")
	Init("INFO", false)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] to file")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, parseLevel("debug"))
	assert.Equal(t, WARN, parseLevel("warning"))
	assert.Equal(t, INFO, parseLevel("nonsense"))
}
