package logbowl

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureExit(t *testing.T) *int {
	t.Helper()
	code := -1
	orig := exit
	exit = func(c int) { code = c }
	t.Cleanup(func() { exit = orig })
	return &code
}

func TestFatalLogsThenExits(t *testing.T) {
	t.Setenv(LogFormatEnvVar, FormatText)
	code := captureExit(t)

	var buf bytes.Buffer
	log := New("test", &buf)
	log.Fatal("process", "exec", "error", "Failed to execve", "command", "/usr/bin/javac -d .")

	assert.Equal(t, FatalExitCode, *code)
	assert.Contains(t, buf.String(), "[PROCESS] Failed to execve")
	assert.Contains(t, buf.String(), "/usr/bin/javac -d .")
}

func TestJSONFormatCarriesSemanticFields(t *testing.T) {
	t.Setenv(LogFormatEnvVar, FormatJSON)

	var buf bytes.Buffer
	New("test", &buf).Info("launcher", "execute", "progress", "Running front-end compiler")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "launcher", entry["domain"])
	assert.Equal(t, "execute", entry["action"])
	assert.Equal(t, "progress", entry["status"])
	assert.Equal(t, "Running front-end compiler", entry["@message"])
}

func TestLevelFromEnvironment(t *testing.T) {
	t.Setenv(LogFormatEnvVar, FormatText)
	t.Setenv(LogLevelEnvVar, "")

	var quiet bytes.Buffer
	New("test", &quiet).Debug("launcher", "execute", "debug", "hidden")
	assert.Empty(t, quiet.String(), "debug output should be hidden at the default level")

	t.Setenv(LogLevelEnvVar, "debug")
	var verbose bytes.Buffer
	New("test", &verbose).Debug("launcher", "execute", "debug", "shown")
	assert.Contains(t, verbose.String(), "shown")
}

func TestEmojiFallsBackToDefault(t *testing.T) {
	assert.Equal(t, "🚀", getEmoji(domains, "launcher"))
	assert.Equal(t, domains["default"], getEmoji(domains, "no-such-domain"))
}
