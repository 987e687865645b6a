package input

import (
	"os"

	"golang.org/x/term"
)

// IsInteractive tells whether f is attached to a terminal. Input prompts are
// only worth printing when it is.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
