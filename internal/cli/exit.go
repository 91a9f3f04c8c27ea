package cli

import (
	"fmt"
	"io"

	perr "curator/internal/platform/errors"
)

// Exit codes of the curator binary
const (
	ExitOK      = 0
	ExitFailure = 1
)

// ExitCode prints err to w and returns the process exit code for it.
// Fatal configuration and failed entities both exit with ExitFailure.
func ExitCode(w io.Writer, err error) int {
	if err == nil {
		return ExitOK
	}
	switch {
	case perr.IsFatalConfig(err):
		fmt.Fprintf(w, "curator: configuration error: %v\n", err)
	default:
		fmt.Fprintf(w, "curator: %v\n", err)
	}
	return ExitFailure
}
