package controller

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "amalgam.dev/pkg/amalgam/internal/model"
)

func sampleReports() []m.PassReport {
	return []m.PassReport{
		{
			Kind:          m.PassInterface,
			Output:        "out/lib.h",
			BannerEmitted: true,
			GuardEmitted:  true,
			Bytes:         42,
			Files: []m.FileStats{
				{Path: "a.h", LinesRead: 3, BannerLines: 1, GuardsKept: 1, LinesWritten: 2},
				{Path: "b.h", LinesRead: 4, BannerLines: 1, LocalIncludes: 1, GuardsDropped: 1, LinesWritten: 1},
			},
		},
		{
			Kind:   m.PassImplementation,
			Output: "out/lib.cpp",
			Bytes:  7,
			Files: []m.FileStats{
				{Path: "a.cpp", LinesRead: 2, GuardsReplaced: 1, LinesWritten: 2},
			},
		},
	}
}

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)

	return cmd, out
}

func TestSimpleUI_DisplayBuild(t *testing.T) {
	cmd, out := newTestCmd()
	ui := NewSimpleUI(cmd)

	err := ui.DisplayBuild(context.Background(), sampleReports())
	require.NoError(t, err)

	assert.Contains(t, out.String(), "wrote out/lib.h (interface pass, 2 files, 42 bytes)")
	assert.Contains(t, out.String(), "wrote out/lib.cpp (implementation pass, 1 files, 7 bytes)")
}

func TestSimpleUI_DisplayList(t *testing.T) {
	cmd, out := newTestCmd()
	ui := NewSimpleUI(cmd)

	err := ui.DisplayList(context.Background(), sampleReports())
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "interface -> out/lib.h")
	assert.Contains(t, output, "implementation -> out/lib.cpp")
	assert.Contains(t, output, "a.h")
	assert.Contains(t, output, "b.h")
	assert.Contains(t, output, "kept")
	assert.Contains(t, output, "dropped")
	assert.Contains(t, output, "replaced")
}

func TestSimpleUI_DisplayCheck(t *testing.T) {
	cmd, out := newTestCmd()
	ui := NewSimpleUI(cmd)

	results := []m.CheckResult{
		{Kind: m.PassInterface, Output: "lib.h", Status: m.UpToDate},
		{Kind: m.PassImplementation, Output: "lib.cpp", Status: m.Stale, Diff: "@@ -1 +1 @@\n-old\n+new\n"},
	}

	err := ui.DisplayCheck(context.Background(), results)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "lib.h: up to date")
	assert.Contains(t, out.String(), "lib.cpp: stale")
	assert.Contains(t, out.String(), "+new")
}

func TestSimpleUI_CancelledContext(t *testing.T) {
	cmd, out := newTestCmd()
	ui := NewSimpleUI(cmd)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, ui.DisplayBuild(ctx, sampleReports()), context.Canceled)
	require.ErrorIs(t, ui.DisplayList(ctx, sampleReports()), context.Canceled)
	require.ErrorIs(t, ui.DisplayCheck(ctx, nil), context.Canceled)
	assert.Empty(t, out.String())
}

func TestGuardSummary(t *testing.T) {
	tests := []struct {
		name  string
		stats m.FileStats
		want  string
	}{
		{"no guard", m.FileStats{}, "-"},
		{"kept", m.FileStats{GuardsKept: 1}, "kept"},
		{"replaced", m.FileStats{GuardsReplaced: 1}, "replaced"},
		{"dropped", m.FileStats{GuardsDropped: 2}, "dropped"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, guardSummary(tt.stats))
		})
	}
}

func TestNewUI_NonTTYIsSimple(t *testing.T) {
	cmd, _ := newTestCmd()

	ui := NewUI(cmd, false)

	_, ok := ui.(*SimpleUI)
	assert.True(t, ok, "expected SimpleUI, got %T", ui)
}
