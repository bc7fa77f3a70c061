package controller

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	m "amalgam.dev/pkg/amalgam/internal/model"
)

// SimpleUI implements UI using the cobra command's output stream.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayBuild prints one line per written artifact.
func (s *SimpleUI) DisplayBuild(ctx context.Context, reports []m.PassReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, report := range reports {
		s.printf("%s\n", buildSummary(report))
	}

	return nil
}

// DisplayList prints a per-file table for each pass.
func (s *SimpleUI) DisplayList(ctx context.Context, reports []m.PassReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, report := range reports {
		s.printf("\n%s\n\n%s", passTitle(report), renderFileTable(report))
	}

	return nil
}

// DisplayCheck prints the status of each artifact and its diff when present.
func (s *SimpleUI) DisplayCheck(ctx context.Context, results []m.CheckResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, result := range results {
		s.printf("%s\n", checkSummary(result))

		if result.Diff != "" {
			s.printf("%s\n", result.Diff)
		}
	}

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
