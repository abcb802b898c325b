// Package prompt wraps promptui for the interactive parts of centroctl.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user presses Ctrl+C.
var ErrAborted = errors.New("aborted")

// IsAborted reports whether err means the user gave up on a prompt.
func IsAborted(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) || errors.Is(err, ErrAborted)
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if IsAborted(err) {
		return ErrAborted
	}
	return err
}

// Input prompts for text, offering defaultValue.
func Input(label, defaultValue string) (string, error) {
	p := promptui.Prompt{Label: label, Default: defaultValue}
	result, err := p.Run()
	return strings.TrimSpace(result), wrapError(err)
}

// InputRequired prompts until a non-blank value is entered.
func InputRequired(label string) (string, error) {
	p := promptui.Prompt{Label: label, Validate: required}
	result, err := p.Run()
	return strings.TrimSpace(result), wrapError(err)
}

// Password prompts for a masked, non-empty secret.
func Password(label string) (string, error) {
	p := promptui.Prompt{Label: label, Mask: '*', Validate: required}
	result, err := p.Run()
	return result, wrapError(err)
}

// Select shows items and returns the chosen index.
func Select(label string, items []string) (int, error) {
	if len(items) == 0 {
		return -1, fmt.Errorf("%s: nothing to choose from", label)
	}
	p := promptui.Select{Label: label, Items: items, Size: min(len(items), 10)}
	idx, _, err := p.Run()
	return idx, wrapError(err)
}

func required(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("value is required")
	}
	return nil
}
