// Package prompt provides interactive terminal prompts for the CLI's
// one-shot commands, built on promptui the same way the rest of the CLI
// surface is.
package prompt

import (
	"errors"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user aborts a prompt (Ctrl+C).
var ErrAborted = errors.New("aborted")

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) {
		return ErrAborted
	}
	return err
}

// SelectString prompts the user to pick one of items, returning the chosen
// string. Used by the CLI to pick among all visible MIDI ports when the
// configuration names neither a port nor a prefix.
func SelectString(label string, items []string) (string, error) {
	p := promptui.Select{
		Label: label,
		Items: items,
		Size:  10,
	}
	_, result, err := p.Run()
	return result, wrapError(err)
}
