package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"error": LevelError,
		"WARN":  LevelWarn,
		"Info":  LevelInfo,
		"debug": LevelDebug,
		"trace": LevelDebug,
		"":      LevelWarn,
		"loud":  LevelWarn,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q)=%v want %v", in, got, want)
		}
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)
	l.Debugf("hidden %d", 1)
	l.Infof("hidden too")
	l.Warnf("shown %s", "warn")
	l.Errorf("shown error")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("unexpected low-level output: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown warn") || !strings.Contains(out, "[ERROR] shown error") {
		t.Fatalf("missing expected lines: %q", out)
	}

	buf.Reset()
	l.SetLevel(LevelDebug)
	l.Debugf("now visible")
	if !strings.Contains(buf.String(), "[DEBUG] now visible") {
		t.Fatalf("debug not emitted after SetLevel: %q", buf.String())
	}
}
