// Package adapter contains the filesystem and UI-facing adapters of the amalgam CLI.
package adapter

import (
	"context"
	"log/slog"
	"os"

	m "amalgam.dev/pkg/amalgam/internal/model"
)

// SourceFSAdapter abstracts filesystem-specific operations that the domain layer
// relies on when merging sources. It hides direct `os` access so the
// amalgamation logic can be tested without touching the disk.
type SourceFSAdapter interface {
	// OpenLines opens path and streams its lines. Each call starts from the
	// beginning of the file.
	OpenLines(ctx context.Context, path m.Path) (LineReader, error)

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(ctx context.Context, path m.Path) ([]byte, error)

	// CreateArtifact starts a new output that replaces path on commit.
	CreateArtifact(ctx context.Context, path m.Path) (Artifact, error)
}

// LocalSourceFSAdapter is the SourceFSAdapter backed by the local disk.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// OpenLines opens path for line-by-line reading.
func (a *LocalSourceFSAdapter) OpenLines(ctx context.Context, path m.Path) (LineReader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// #nosec G304 - input paths come from the project configuration
	f, err := os.Open(string(path))
	if err != nil {
		slog.Error("failed to open source", "path", path, "error", err)
		return nil, &m.FileAccessError{Op: "open", Path: path, Err: err}
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, &m.FileAccessError{Op: "stat", Path: path, Err: err}
	}

	if info.IsDir() {
		_ = f.Close()
		return nil, &m.FileAccessError{Op: "open", Path: path, Err: errIsDirectory}
	}

	return NewLineReader(path, f), nil
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// #nosec G304 - paths come from the project configuration
	content, err := os.ReadFile(string(path))
	if err != nil {
		return nil, &m.FileAccessError{Op: "read", Path: path, Err: err}
	}

	return content, nil
}

// CreateArtifact creates a temporary file next to path that is renamed over
// path on commit.
func (a *LocalSourceFSAdapter) CreateArtifact(ctx context.Context, path m.Path) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	artifact, err := newAtomicArtifact(path)
	if err != nil {
		slog.Error("failed to create artifact", "path", path, "error", err)
		return nil, err
	}

	return artifact, nil
}
