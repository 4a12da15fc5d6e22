package debug

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func withLogger(t *testing.T, on bool) *bytes.Buffer {
	t.Helper()
	prevEnabled, prevLogger := enabled, logger
	t.Cleanup(func() { enabled, logger = prevEnabled, prevLogger })

	var buf bytes.Buffer
	logger = nil
	SetOutput(&buf)
	enabled = on
	return &buf
}

func TestLogDisabled(t *testing.T) {
	buf := withLogger(t, false)
	Log("hidden %d", 1)
	LogTiming("hidden", time.Millisecond)
	if buf.Len() != 0 {
		t.Errorf("expected no output when disabled, got %q", buf.String())
	}
}

func TestLogEnabled(t *testing.T) {
	buf := withLogger(t, true)
	Log("committed card %s to %s", "w-1", "CSPM")
	out := buf.String()
	if !strings.Contains(out, "[WB_DEBUG]") {
		t.Errorf("missing prefix in %q", out)
	}
	if !strings.Contains(out, "committed card w-1 to CSPM") {
		t.Errorf("missing message in %q", out)
	}
}

func TestLogTiming(t *testing.T) {
	buf := withLogger(t, true)
	LogTiming("export", 1500*time.Millisecond)
	if !strings.Contains(buf.String(), "export took 1.5s") {
		t.Errorf("unexpected timing line %q", buf.String())
	}
}

func TestSetEnabled(t *testing.T) {
	prevEnabled, prevLogger := enabled, logger
	t.Cleanup(func() { enabled, logger = prevEnabled, prevLogger })

	logger = nil
	SetEnabled(true)
	if !Enabled() {
		t.Fatal("expected debug to be enabled")
	}
	if logger == nil {
		t.Fatal("SetEnabled(true) should create a logger")
	}
	SetEnabled(false)
	if Enabled() {
		t.Error("expected debug to be disabled")
	}
}
