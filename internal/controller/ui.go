// Package controller provides output adapters for displaying amalgamation results.
package controller

import (
	"context"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	m "amalgam.dev/pkg/amalgam/internal/model"
)

// UI defines how pass reports and freshness checks are shown to the user.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	DisplayBuild(ctx context.Context, reports []m.PassReport) error
	DisplayList(ctx context.Context, reports []m.PassReport) error
	DisplayCheck(ctx context.Context, results []m.CheckResult) error
}

// NewUI returns the TUI when stdout is a terminal and the SimpleUI otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(os.Stdout)
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(f.Fd())
}
