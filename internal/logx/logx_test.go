package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf))

	logger.Info("wrote", "path", "RayleighInteract.hh")

	output := buf.String()
	if !strings.Contains(output, "level=INFO") {
		t.Errorf("expected level=INFO, got: %s", output)
	}
	if !strings.Contains(output, `msg="wrote"`) {
		t.Errorf("expected msg in output, got: %s", output)
	}
	if !strings.Contains(output, `path="RayleighInteract.hh"`) {
		t.Errorf("expected path in output, got: %s", output)
	}
	if strings.Contains(output, "time=") {
		t.Errorf("expected no timestamp by default, got: %s", output)
	}
}

func TestFieldSorting(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf))

	logger.Info("test", "zebra", "z", "alpha", "a", "beta", "b")

	output := buf.String()
	alphaPos := strings.Index(output, `alpha="a"`)
	betaPos := strings.Index(output, `beta="b"`)
	zebraPos := strings.Index(output, `zebra="z"`)

	if alphaPos == -1 || betaPos == -1 || zebraPos == -1 {
		t.Fatalf("missing fields in output: %s", output)
	}
	if alphaPos > betaPos || betaPos > zebraPos {
		t.Errorf("fields not sorted correctly: %s", output)
	}
}

func TestHelpersAndWith(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf)).With("flavor", "interactor")

	logger.Info("rendered", Str("kind", "cu"), Int("bytes", 1024))

	output := buf.String()
	for _, want := range []string{`flavor="interactor"`, `kind="cu"`, `bytes=1024`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

func TestColorization(t *testing.T) {
	var buf bytes.Buffer
	New(WithWriter(&buf), WithColor(true)).Warn("careful")

	if !strings.Contains(buf.String(), "\033[33mWARN\033[0m") {
		t.Errorf("expected colored level, got: %q", buf.String())
	}
}

func TestErrorLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf))

	logger.Error(errors.New("disk full"), "write failed", "path", "x.cu")

	output := buf.String()
	if !strings.Contains(output, "level=ERROR") {
		t.Errorf("expected level=ERROR in output: %s", output)
	}
	if !strings.Contains(output, `error="disk full"`) {
		t.Errorf("expected error field in output: %s", output)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf), WithFormat(FormatJSON))

	logger.Error(errors.New("boom"), "failed", Int("bytes", 3))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if record["level"] != "ERROR" || record["msg"] != "failed" || record["error"] != "boom" {
		t.Errorf("unexpected record: %v", record)
	}
	if record["bytes"] != float64(3) {
		t.Errorf("expected bytes=3, got %v", record["bytes"])
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		name     string
		level    slog.Level
		logFunc  func(l Logger)
		expected string
	}{
		{"debug disabled at info level", slog.LevelInfo, func(l Logger) { l.Debug("debug msg") }, ""},
		{"debug enabled at debug level", slog.LevelDebug, func(l Logger) { l.Debug("debug msg") }, "level=DEBUG"},
		{"info disabled at warn level", slog.LevelWarn, func(l Logger) { l.Info("info msg") }, ""},
		{"warn enabled at warn level", slog.LevelWarn, func(l Logger) { l.Warn("warn msg") }, "level=WARN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(New(WithWriter(&buf), WithLevel(tt.level)))

			output := buf.String()
			if tt.expected == "" && output != "" {
				t.Errorf("expected no output, got: %s", output)
			}
			if tt.expected != "" && !strings.Contains(output, tt.expected) {
				t.Errorf("expected %s in output, got: %s", tt.expected, output)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if f, ok := ParseFormat("JSON"); !ok || f != FormatJSON {
		t.Errorf("expected json, got %q %v", f, ok)
	}
	if f, ok := ParseFormat(""); !ok || f != FormatLogfmt {
		t.Errorf("expected logfmt default, got %q %v", f, ok)
	}
	if _, ok := ParseFormat("xml"); ok {
		t.Error("expected xml to be rejected")
	}
}

func TestNop(t *testing.T) {
	Nop().Error(errors.New("ignored"), "nothing")
}
