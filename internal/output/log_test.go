package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(cfg LogConfig) *bytes.Buffer {
	var buf bytes.Buffer
	SetupLoggingTo(&buf, cfg)
	return &buf
}

func TestSetupLogging_TimestampDefaultOn(t *testing.T) {
	buf := captureLog(LogConfig{})
	Info("test")
	assert.Regexp(t, `^\d{2}:\d{2}:\d{2}`, strings.TrimSpace(buf.String()))
}

func TestSetupLogging_TimestampExplicitlyDisabled(t *testing.T) {
	buf := captureLog(LogConfig{Timestamps: BoolPtr(false)})
	Info("hello")
	out := strings.TrimSpace(buf.String())
	assert.NotRegexp(t, `^\d{1,2}:\d{2}:\d{2}`, out, "output should not start with a timestamp")
	assert.Contains(t, out, "hello")
}

func TestSetupLogging_VerboseEnablesDebugLevel(t *testing.T) {
	buf := captureLog(LogConfig{Verbose: true, Timestamps: BoolPtr(false)})
	Debug("verbose-msg")
	assert.Contains(t, buf.String(), "verbose-msg")
}

func TestSetupLogging_DebugHiddenByDefault(t *testing.T) {
	buf := captureLog(LogConfig{})
	Debug("hidden")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestWithPrefix(t *testing.T) {
	buf := captureLog(LogConfig{Timestamps: BoolPtr(false)})
	WithPrefix("app:license").Info("writing")
	assert.Contains(t, buf.String(), "app:license")
	assert.Contains(t, buf.String(), "writing")
}
