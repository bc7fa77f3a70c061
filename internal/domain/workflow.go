package domain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"

	"amalgam.dev/pkg/amalgam/internal/adapter"
	"amalgam.dev/pkg/amalgam/internal/controller"
	m "amalgam.dev/pkg/amalgam/internal/model"
)

// ErrStaleArtifact is returned by Check when an artifact on disk does not
// match what a build would produce.
var ErrStaleArtifact = errors.New("generated artifacts are out of date")

const diffContextLines = 3

// BuildArgs contains the arguments for generating both artifacts.
type BuildArgs struct {
	Plan     m.Plan
	Parallel int
	// Manifest is written next to the artifacts when non-empty.
	Manifest m.Path
}

// CheckArgs contains the arguments for comparing artifacts with a fresh render.
type CheckArgs struct {
	Plan     m.Plan
	Parallel int
	ShowDiff bool
}

// ListArgs contains the arguments for a dry run.
type ListArgs struct {
	Plan     m.Plan
	Parallel int
}

// Workflow runs the interface and implementation passes for a plan.
type Workflow interface {
	Build(ctx context.Context, args BuildArgs) error
	Check(ctx context.Context, args CheckArgs) error
	List(ctx context.Context, args ListArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.ManifestStore
	controller.UI
	Amalgamator
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	manifestStore adapter.ManifestStore,
	ui controller.UI,
	amalgamator Amalgamator,
) Workflow {
	return &workflow{
		SourceFSAdapter: fsAdapter,
		ManifestStore:   manifestStore,
		UI:              ui,
		Amalgamator:     amalgamator,
	}
}

// Build renders both passes into temporary artifacts and replaces the
// destinations, manifest included, only once every pass succeeded. Either all
// destinations are replaced or none is.
func (w *workflow) Build(ctx context.Context, args BuildArgs) error {
	targets := args.Plan.Targets()
	artifacts := make([]adapter.Artifact, len(targets))

	defer func() {
		for _, artifact := range artifacts {
			if artifact != nil {
				_ = artifact.Abort()
			}
		}
	}()

	reports, err := w.runPasses(ctx, args.Plan, args.Parallel, func(ctx context.Context, i int, target m.Target) (io.Writer, error) {
		artifact, err := w.CreateArtifact(ctx, target.Output)
		if err != nil {
			return nil, err
		}

		artifacts[i] = artifact

		return artifact, nil
	})
	if err != nil {
		slog.Error("build failed", "error", err)
		return err
	}

	if args.Manifest != "" {
		manifest, err := w.StageManifest(ctx, args.Manifest, m.NewManifest(reports))
		if err != nil {
			slog.Error("failed to stage manifest", "path", args.Manifest, "error", err)
			return fmt.Errorf("save manifest: %w", err)
		}

		artifacts = append(artifacts, manifest)
	}

	if err := adapter.CommitAll(artifacts); err != nil {
		slog.Error("build failed", "error", err)
		return err
	}

	for _, artifact := range artifacts {
		slog.Info("wrote artifact", "path", artifact.Path())
	}

	return w.DisplayBuild(ctx, reports)
}

// Check renders both passes in memory and compares them with the artifacts on
// disk. It returns ErrStaleArtifact when any artifact is stale or missing.
func (w *workflow) Check(ctx context.Context, args CheckArgs) error {
	targets := args.Plan.Targets()
	rendered := make([]*bytes.Buffer, len(targets))

	_, err := w.runPasses(ctx, args.Plan, args.Parallel, func(_ context.Context, i int, _ m.Target) (io.Writer, error) {
		rendered[i] = &bytes.Buffer{}
		return rendered[i], nil
	})
	if err != nil {
		slog.Error("check failed", "error", err)
		return err
	}

	results := make([]m.CheckResult, 0, len(targets))
	upToDate := true

	for i, target := range targets {
		result, err := w.compare(ctx, target, rendered[i].Bytes(), args.ShowDiff)
		if err != nil {
			return err
		}

		if result.Status != m.UpToDate {
			upToDate = false
		}

		results = append(results, result)
	}

	if err := w.DisplayCheck(ctx, results); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	if !upToDate {
		return ErrStaleArtifact
	}

	return nil
}

// List runs both passes without writing anything and displays per-file statistics.
func (w *workflow) List(ctx context.Context, args ListArgs) error {
	reports, err := w.runPasses(ctx, args.Plan, args.Parallel, func(context.Context, int, m.Target) (io.Writer, error) {
		return io.Discard, nil
	})
	if err != nil {
		slog.Error("list failed", "error", err)
		return err
	}

	return w.DisplayList(ctx, reports)
}

type sinkFactory func(ctx context.Context, i int, target m.Target) (io.Writer, error)

// runPasses runs one pass per target, at most parallel at a time. The passes
// share nothing; the first failure cancels the others.
func (w *workflow) runPasses(ctx context.Context, plan m.Plan, parallel int, newSink sinkFactory) ([]m.PassReport, error) {
	targets := plan.Targets()
	reports := make([]m.PassReport, len(targets))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(max(parallel, 1))

	for i, target := range targets {
		i, target := i, target
		group.Go(func() error {
			sink, err := newSink(groupCtx, i, target)
			if err != nil {
				return fmt.Errorf("%s pass: %w", target.Kind, err)
			}

			report, err := w.Amalgamate(groupCtx, plan, target, sink)
			if err != nil {
				return fmt.Errorf("%s pass: %w", target.Kind, err)
			}

			reports[i] = report

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return reports, nil
}

func (w *workflow) compare(ctx context.Context, target m.Target, rendered []byte, showDiff bool) (m.CheckResult, error) {
	result := m.CheckResult{Kind: target.Kind, Output: target.Output}

	existing, err := w.ReadFile(ctx, target.Output)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		result.Status = m.Missing
	case err != nil:
		slog.Error("failed to read artifact", "path", target.Output, "error", err)
		return result, err
	case bytes.Equal(existing, rendered):
		result.Status = m.UpToDate
		return result, nil
	default:
		result.Status = m.Stale
	}

	slog.Info("artifact differs", "path", target.Output, "status", result.Status)

	if !showDiff {
		return result, nil
	}

	diff, err := unifiedDiff(target.Output, existing, rendered)
	if err != nil {
		return result, fmt.Errorf("diff %s: %w", target.Output, err)
	}

	result.Diff = diff

	return result, nil
}

func unifiedDiff(path m.Path, existing, rendered []byte) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(existing)),
		B:        difflib.SplitLines(string(rendered)),
		FromFile: string(path),
		ToFile:   string(path) + " (generated)",
		Context:  diffContextLines,
	})
}
