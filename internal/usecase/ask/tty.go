package ask

import (
	"os"

	"golang.org/x/term"
)

// IsTTY checks if the given file descriptor is a terminal.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// IsInteractive reports whether stderr is attached to a user's terminal.
// Progress indicators are only shown interactively; in CI or when output
// is piped the request runs silently.
func IsInteractive() bool {
	return IsTTY(os.Stderr.Fd())
}
