package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WarnLevel)

	l.Info("should be dropped")
	l.Warn("should appear")

	out := buf.String()
	require.NotContains(t, out, "should be dropped")
	require.Contains(t, out, "should appear")
	require.Contains(t, out, "[WARN]")
}

func TestWithTagsLines(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, DebugLevel)
	tagged := l.With("req-123")

	tagged.Infof("hello %s", "world")

	line := buf.String()
	require.True(t, strings.Contains(line, "(req-123)"))
	require.True(t, strings.Contains(line, "hello world"))
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	require.Equal(t, WarnLevel, ParseLevel("WARN"))
	require.Equal(t, ErrorLevel, ParseLevel("ERROR"))
	require.Equal(t, InfoLevel, ParseLevel("garbage"))
}
