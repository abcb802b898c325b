package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// Confirm asks a yes/no question. An empty answer takes defaultYes.
func Confirm(label string, defaultYes bool) (bool, error) {
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}
	p := promptui.Prompt{Label: fmt.Sprintf("%s [%s]", label, hint), IsConfirm: true}

	result, err := p.Run()
	switch {
	case errors.Is(err, promptui.ErrInterrupt):
		return false, ErrAborted
	case errors.Is(err, promptui.ErrAbort):
		// promptui reports "n" as ErrAbort; an empty answer too.
		if strings.TrimSpace(result) == "" {
			return defaultYes, nil
		}
		return false, nil
	case err != nil:
		return false, err
	}
	return answer(result, defaultYes), nil
}

// ConfirmWithForce skips the question when force is set.
func ConfirmWithForce(label string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	return Confirm(label, false)
}

func answer(s string, defaultYes bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return defaultYes
	case "y", "yes", "s", "si", "sí":
		return true
	default:
		return false
	}
}
