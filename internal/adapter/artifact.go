package adapter

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	m "amalgam.dev/pkg/amalgam/internal/model"
)

const artifactPerm os.FileMode = 0o644

var errArtifactState = errors.New("artifact is not in a state that allows this operation")

// Artifact is an append-only output that replaces its destination only when
// committed. Until then the previous content of the destination is untouched.
//
// The lifecycle is Write* -> Prepare -> Commit -> Release|Rollback. Abort
// discards an artifact that was not committed.
type Artifact interface {
	Write(p []byte) (int, error)
	Path() m.Path
	// Prepare flushes and closes the content and checks that the destination
	// can be replaced. The destination is not touched.
	Prepare() error
	// Commit renames the prepared content over the destination. The previous
	// destination is kept aside until Release or Rollback.
	Commit() error
	// Rollback puts the previous destination back after Commit.
	Rollback() error
	// Release drops the previous destination kept by Commit.
	Release() error
	// Abort discards the content. It is a no-op after Commit.
	Abort() error
}

type artifactState int

const (
	artifactOpen artifactState = iota
	artifactPrepared
	artifactCommitted
	artifactClosed
)

type atomicArtifact struct {
	dest    m.Path
	tmp     *os.File
	tmpPath string
	writer  *bufio.Writer
	// backup holds the previous destination after Commit; empty when there was none.
	backup string
	state  artifactState
}

func newAtomicArtifact(dest m.Path) (*atomicArtifact, error) {
	dir := filepath.Dir(string(dest))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, &m.FileAccessError{Op: "create", Path: dest, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+dest.Base()+".tmp-*")
	if err != nil {
		return nil, &m.FileAccessError{Op: "create", Path: dest, Err: err}
	}

	if err := tmp.Chmod(artifactPerm); err != nil {
		slog.Warn("failed to set artifact permissions", "path", tmp.Name(), "error", err)
	}

	return &atomicArtifact{
		dest:    dest,
		tmp:     tmp,
		tmpPath: tmp.Name(),
		writer:  bufio.NewWriterSize(tmp, lineBufferSize),
	}, nil
}

func (a *atomicArtifact) Path() m.Path {
	return a.dest
}

func (a *atomicArtifact) Write(p []byte) (int, error) {
	if a.state != artifactOpen {
		return 0, &m.FileAccessError{Op: "write", Path: a.dest, Err: errArtifactState}
	}

	n, err := a.writer.Write(p)
	if err != nil {
		return n, &m.FileAccessError{Op: "write", Path: a.dest, Err: err}
	}

	return n, nil
}

func (a *atomicArtifact) Prepare() error {
	if a.state != artifactOpen {
		return &m.FileAccessError{Op: "prepare", Path: a.dest, Err: errArtifactState}
	}

	if info, err := os.Stat(string(a.dest)); err == nil && info.IsDir() {
		return a.discard("prepare", errIsDirectory)
	}

	if err := a.writer.Flush(); err != nil {
		return a.discard("prepare", err)
	}

	if err := a.tmp.Sync(); err != nil {
		return a.discard("prepare", err)
	}

	if err := a.tmp.Close(); err != nil {
		return a.discard("prepare", err)
	}

	a.state = artifactPrepared

	return nil
}

func (a *atomicArtifact) Commit() error {
	if a.state != artifactPrepared {
		return &m.FileAccessError{Op: "commit", Path: a.dest, Err: errArtifactState}
	}

	backup, err := a.setAside()
	if err != nil {
		return a.discard("commit", err)
	}

	if err := os.Rename(a.tmpPath, string(a.dest)); err != nil {
		if backup != "" {
			if restoreErr := os.Rename(backup, string(a.dest)); restoreErr != nil {
				slog.Error("failed to restore previous artifact", "path", a.dest, "backup", backup, "error", restoreErr)
			}
		}

		return a.discard("commit", err)
	}

	a.backup = backup
	a.state = artifactCommitted

	syncDir(filepath.Dir(string(a.dest)))
	slog.Debug("committed artifact", "path", a.dest)

	return nil
}

// setAside moves the current destination to a hidden name next to it.
func (a *atomicArtifact) setAside() (string, error) {
	if _, err := os.Lstat(string(a.dest)); errors.Is(err, os.ErrNotExist) {
		return "", nil
	}

	reserved, err := os.CreateTemp(filepath.Dir(string(a.dest)), "."+a.dest.Base()+".bak-*")
	if err != nil {
		return "", err
	}

	backup := reserved.Name()
	_ = reserved.Close()

	if err := os.Rename(string(a.dest), backup); err != nil {
		_ = os.Remove(backup)
		return "", err
	}

	return backup, nil
}

func (a *atomicArtifact) Rollback() error {
	if a.state != artifactCommitted {
		return &m.FileAccessError{Op: "rollback", Path: a.dest, Err: errArtifactState}
	}

	a.state = artifactClosed

	var err error
	if a.backup == "" {
		err = os.Remove(string(a.dest))
	} else {
		err = os.Rename(a.backup, string(a.dest))
	}

	if err != nil {
		slog.Error("failed to roll back artifact", "path", a.dest, "error", err)
		return &m.FileAccessError{Op: "rollback", Path: a.dest, Err: err}
	}

	slog.Info("rolled back artifact", "path", a.dest)

	return nil
}

func (a *atomicArtifact) Release() error {
	if a.state != artifactCommitted {
		return &m.FileAccessError{Op: "release", Path: a.dest, Err: errArtifactState}
	}

	a.state = artifactClosed

	if a.backup == "" {
		return nil
	}

	if err := os.Remove(a.backup); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &m.FileAccessError{Op: "release", Path: a.dest, Err: err}
	}

	return nil
}

func (a *atomicArtifact) Abort() error {
	switch a.state {
	case artifactCommitted, artifactClosed:
		return nil
	case artifactOpen:
		_ = a.tmp.Close()
	case artifactPrepared:
	}

	a.state = artifactClosed

	if err := os.Remove(a.tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Error("failed to remove aborted artifact", "path", a.tmpPath, "error", err)
		return &m.FileAccessError{Op: "abort", Path: a.dest, Err: err}
	}

	slog.Debug("aborted artifact", "path", a.dest)

	return nil
}

// discard removes the temporary file after a failed Prepare or Commit.
func (a *atomicArtifact) discard(op string, err error) error {
	if a.state == artifactOpen {
		_ = a.tmp.Close()
	}

	a.state = artifactClosed
	_ = os.Remove(a.tmpPath)

	slog.Error("failed to "+op+" artifact", "path", a.dest, "error", err)

	return &m.FileAccessError{Op: op, Path: a.dest, Err: err}
}

// CommitAll replaces the destinations of all artifacts or of none. Every
// artifact is prepared before the first rename; a failed rename rolls back
// the artifacts already committed.
func CommitAll(artifacts []Artifact) error {
	for _, artifact := range artifacts {
		if err := artifact.Prepare(); err != nil {
			return fmt.Errorf("prepare %s: %w", artifact.Path(), err)
		}
	}

	committed := make([]Artifact, 0, len(artifacts))

	for _, artifact := range artifacts {
		if err := artifact.Commit(); err != nil {
			slog.Error("failed to commit artifact", "path", artifact.Path(), "error", err)
			rollback(committed)

			return fmt.Errorf("commit %s: %w", artifact.Path(), err)
		}

		committed = append(committed, artifact)
	}

	for _, artifact := range committed {
		if err := artifact.Release(); err != nil {
			slog.Warn("failed to remove previous artifact", "path", artifact.Path(), "error", err)
		}
	}

	return nil
}

func rollback(committed []Artifact) {
	for i := len(committed) - 1; i >= 0; i-- {
		if err := committed[i].Rollback(); err != nil {
			slog.Error("artifact left replaced after failed commit", "path", committed[i].Path(), "error", err)
		}
	}
}

// syncDir makes the rename durable where the platform allows it.
func syncDir(dir string) {
	f, err := os.Open(dir)
	if err != nil {
		return
	}

	defer func() { _ = f.Close() }()

	_ = f.Sync()
}
