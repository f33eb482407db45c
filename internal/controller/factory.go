package controller

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewUI picks the interactive TUI when stdout is a terminal and plain text
// otherwise, so piped and CI invocations stay machine-readable.
func NewUI(cmd *cobra.Command, showDiffs bool) UI {
	if out, ok := cmd.OutOrStdout().(*os.File); ok && term.IsTerminal(int(out.Fd())) {
		return NewTUI(out)
	}

	return NewSimpleUI(cmd, showDiffs)
}
