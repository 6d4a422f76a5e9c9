package output

import (
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether stdout and stdin are both terminals.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
}
