package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"

	"amalgam.dev/pkg/amalgam/internal/adapter"
	m "amalgam.dev/pkg/amalgam/internal/model"
)

// fileSeparator is written after every input file.
const fileSeparator = "\n\n"

// Amalgamator runs a single pass: it merges the files of a target, in order,
// into one output.
type Amalgamator interface {
	Amalgamate(ctx context.Context, plan m.Plan, target m.Target, out io.Writer) (m.PassReport, error)
}

type amalgamator struct {
	fsAdapter adapter.SourceFSAdapter
}

// NewAmalgamator constructs an Amalgamator reading sources through fsAdapter.
func NewAmalgamator(fsAdapter adapter.SourceFSAdapter) Amalgamator {
	return &amalgamator{fsAdapter: fsAdapter}
}

// Amalgamate streams every file of target through the banner filter and the
// directive normalizer into out. The first error aborts the pass.
func (a *amalgamator) Amalgamate(ctx context.Context, plan m.Plan, target m.Target, out io.Writer) (m.PassReport, error) {
	report := m.PassReport{
		Kind:   target.Kind,
		Output: target.Output,
		Files:  make([]m.FileStats, 0, len(target.Files)),
	}

	digest := sha256.New()
	sink := &countingWriter{w: io.MultiWriter(out, digest)}

	injector := NewInjector(target.Kind, plan.Banner, target.Include)
	banner := NewBannerFilter(plan.Markers.BannerPrefix)
	normalizer := NewDirectiveNormalizer(plan.Markers.LocalInclude, plan.Markers.Guard)

	slog.Info("starting pass", "pass", target.Kind, "output", target.Output, "files", len(target.Files))

	for _, path := range target.Files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		banner.Reset()

		stats, err := a.mergeFile(ctx, path, banner, normalizer, injector, sink)
		if err != nil {
			slog.Error("pass aborted", "pass", target.Kind, "path", path, "error", err)
			return report, err
		}

		if _, err := io.WriteString(sink, fileSeparator); err != nil {
			return report, fmt.Errorf("write separator after %s: %w", path, err)
		}

		report.Files = append(report.Files, stats)
	}

	report.BannerEmitted = injector.BannerEmitted()
	report.GuardEmitted = injector.GuardEmitted()
	report.Bytes = sink.n
	report.SHA256 = hex.EncodeToString(digest.Sum(nil))

	slog.Info("finished pass", "pass", target.Kind, "output", target.Output, "bytes", report.Bytes)

	return report, nil
}

func (a *amalgamator) mergeFile(
	ctx context.Context,
	path m.Path,
	banner *BannerFilter,
	normalizer *DirectiveNormalizer,
	injector *Injector,
	out io.Writer,
) (m.FileStats, error) {
	stats := m.FileStats{Path: path}

	reader, err := a.fsAdapter.OpenLines(ctx, path)
	if err != nil {
		return stats, err
	}

	defer func() {
		if err := reader.Close(); err != nil {
			slog.Warn("failed to close source", "path", path, "error", err)
		}
	}()

	digest := sha256.New()

	for {
		line, err := reader.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return stats, err
		}

		stats.LinesRead++

		if err := a.mergeLine(line, banner, normalizer, injector, out, digest, &stats); err != nil {
			return stats, err
		}
	}

	stats.SHA256 = hex.EncodeToString(digest.Sum(nil))
	slog.Debug("merged source", "path", path, "lines", stats.LinesRead, "written", stats.LinesWritten)

	return stats, nil
}

func (a *amalgamator) mergeLine(
	line string,
	banner *BannerFilter,
	normalizer *DirectiveNormalizer,
	injector *Injector,
	out io.Writer,
	digest hash.Hash,
	stats *m.FileStats,
) error {
	_, _ = io.WriteString(digest, line)

	prefix, forward := banner.Filter(line, injector)
	if prefix != "" {
		if _, err := io.WriteString(out, prefix); err != nil {
			return fmt.Errorf("write banner: %w", err)
		}
	}

	if !forward {
		stats.BannerLines++
		return nil
	}

	text, action := normalizer.Normalize(line, injector)

	switch action {
	case ActionDropInclude:
		stats.LocalIncludes++
		return nil
	case ActionDropGuard:
		stats.GuardsDropped++
		return nil
	case ActionKeepGuard:
		stats.GuardsKept++
	case ActionReplaceGuard:
		stats.GuardsReplaced++
	case ActionPassthrough:
	}

	if _, err := io.WriteString(out, text); err != nil {
		return fmt.Errorf("write line %d of %s: %w", stats.LinesRead, stats.Path, err)
	}

	stats.LinesWritten++

	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)

	return n, err
}
