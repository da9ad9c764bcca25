package ui

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

func capture(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	SetOutput(&out, &errOut)
	t.Cleanup(func() {
		SetOutput(nil, nil)
		SetVerbose(false)
		SetJSONOutput(false)
		SetNonInteractive(false)
	})
	return &out, &errOut
}

func TestOutputStreams(t *testing.T) {
	out, errOut := capture(t)

	Info("generating %s", "Rayleigh")
	Success("done")
	Error("failed: %v", "boom")

	if !strings.Contains(out.String(), "INFO: generating Rayleigh") {
		t.Errorf("Expected info on stdout, got %q", out.String())
	}
	if !strings.Contains(out.String(), "SUCCESS: done") {
		t.Errorf("Expected success on stdout, got %q", out.String())
	}
	if strings.Contains(out.String(), "boom") {
		t.Error("Error message leaked to stdout")
	}
	if !strings.Contains(errOut.String(), "ERROR: failed: boom") {
		t.Errorf("Expected error on stderr, got %q", errOut.String())
	}
}

func TestDebugRequiresVerbose(t *testing.T) {
	out, _ := capture(t)

	Debug("hidden")
	if out.Len() != 0 {
		t.Errorf("Expected no output, got %q", out.String())
	}

	SetVerbose(true)
	Debug("shown")
	if !strings.Contains(out.String(), "DEBUG: shown") {
		t.Errorf("Expected debug output, got %q", out.String())
	}
}

func TestJSONOutput(t *testing.T) {
	out, _ := capture(t)
	SetJSONOutput(true)

	Warning("stale %d", 2)

	var msg Message
	if err := json.Unmarshal(out.Bytes(), &msg); err != nil {
		t.Fatalf("Expected JSON, got %q: %v", out.String(), err)
	}
	if msg.Level != LevelWarning || msg.Text != "stale 2" {
		t.Errorf("Unexpected message %+v", msg)
	}
}

func TestStep(t *testing.T) {
	out, _ := capture(t)

	Step(1, 3, "%s", "Rayleigh")
	if out.String() != "  [1/3] Rayleigh\n" {
		t.Errorf("Unexpected step output %q", out.String())
	}
}

func TestInput(t *testing.T) {
	capture(t)
	original := Asker
	t.Cleanup(func() { Asker = original })

	Asker = func(p survey.Prompt, response any, opts ...survey.AskOpt) error {
		*(response.(*string)) = "  Compton  "
		return nil
	}
	got, err := Input("Class name", "", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "Compton" {
		t.Errorf("Expected trimmed answer, got %q", got)
	}

	Asker = func(p survey.Prompt, response any, opts ...survey.AskOpt) error {
		return terminal.InterruptErr
	}
	if _, err := Input("Class name", "", ""); !errors.Is(err, ErrAborted) {
		t.Errorf("Expected ErrAborted, got %v", err)
	}

	SetNonInteractive(true)
	if _, err := Input("Class name", "", ""); !errors.Is(err, ErrNonInteractive) {
		t.Errorf("Expected ErrNonInteractive, got %v", err)
	}
}
