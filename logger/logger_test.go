package logger

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLoggerFormatsLevelAndName(t *testing.T) {
	var buf bytes.Buffer
	l := NewDefaultLogger("decorator").WithOutput(log.New(&buf, "", 0))

	l.Debug("built %s with %d options", "repeat", 2)
	l.Error("boom")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"[DEBUG] decorator | built repeat with 2 options",
		"[ERROR] decorator | boom",
	}, lines)
}

func TestNamedChildLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewDefaultLogger("decorator").WithOutput(log.New(&buf, "", 0)).Named("repeat")

	l.Info("ready")

	assert.Equal(t, "[INFO] decorator.repeat | ready\n", buf.String())
}

func TestLoggerDisabled(t *testing.T) {
	var buf bytes.Buffer
	l := NewDefaultLogger("x").WithOutput(log.New(&buf, "", 0))

	LoggerEnabled = false
	defer func() { LoggerEnabled = true }()

	l.Info("hidden")
	assert.Empty(t, buf.String())
}

func TestOr(t *testing.T) {
	assert.IsType(t, Nop{}, Or(Nop{}, "x"))
	assert.IsType(t, &DefaultLogger{}, Or(nil, "x"))
}
