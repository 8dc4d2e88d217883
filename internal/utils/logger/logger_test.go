package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "gateway", WARN)

	l.Debugf("request %d", 1)
	l.Infof("request %d", 2)
	l.Warnf("slow response")
	l.Errorf("no response")

	out := buf.String()
	assert.NotContains(t, out, "request 1")
	assert.NotContains(t, out, "request 2")
	assert.Contains(t, out, "WARN [gateway] slow response")
	assert.Contains(t, out, "ERROR [gateway] no response")
}

func TestLogger_CriticalAlwaysWritten(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "", CRITICAL)
	l.enabled = false

	l.Errorf("dropped")
	l.Criticalf("captured but not recorded")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "CRITICAL captured but not recorded")
}

func TestLogger_WithNestsPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "sumit", DEBUG).With("recurring")

	l.Infof("tick")
	assert.Contains(t, buf.String(), "[sumit.recurring] tick")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel("Warning"))
	assert.Equal(t, CRITICAL, ParseLevel("critical"))
	assert.Equal(t, DEBUG, ParseLevel("unknown"))
}
