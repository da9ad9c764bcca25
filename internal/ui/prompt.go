package ui

import (
	"errors"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("prompt aborted")

// ErrNonInteractive is returned when a prompt is requested in non-interactive mode.
var ErrNonInteractive = errors.New("prompt requested in non-interactive mode")

// Asker runs a single survey prompt. Tests replace it.
var Asker = func(p survey.Prompt, response any, opts ...survey.AskOpt) error {
	return survey.AskOne(p, response, opts...)
}

// Input prompts for a single line of text.
//
// Parameters:
//   - message: Prompt text
//   - help: Help text shown on '?'
//   - def: Default value
//
// Returns:
//   - string: Trimmed answer (never empty)
//   - error: ErrNonInteractive, ErrAborted or a terminal error
//
// Concurrency:
//   - Single-threaded (blocks on user input)
func Input(message, help, def string) (string, error) {
	if IsNonInteractive() {
		return "", ErrNonInteractive
	}

	var answer string
	prompt := &survey.Input{
		Message: message,
		Help:    help,
		Default: def,
	}
	if err := Asker(prompt, &answer, survey.WithValidator(survey.Required)); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", ErrAborted
		}
		return "", err
	}
	return strings.TrimSpace(answer), nil
}
