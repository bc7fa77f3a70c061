package domain

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	m "amalgam.dev/pkg/amalgam/internal/model"
)

// recordingUI captures what the workflow displays.
type recordingUI struct {
	mu     sync.Mutex
	build  [][]m.PassReport
	list   [][]m.PassReport
	checks [][]m.CheckResult
}

func (r *recordingUI) DisplayBuild(_ context.Context, reports []m.PassReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.build = append(r.build, reports)

	return nil
}

func (r *recordingUI) DisplayList(_ context.Context, reports []m.PassReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.list = append(r.list, reports)

	return nil
}

func (r *recordingUI) DisplayCheck(_ context.Context, results []m.CheckResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.checks = append(r.checks, results)

	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}

	return string(content)
}

// writeSources writes name→content pairs under root and returns their paths in order.
func writeSources(t *testing.T, root string, files ...[2]string) []m.Path {
	t.Helper()

	paths := make([]m.Path, 0, len(files))

	for _, file := range files {
		path := filepath.Join(root, file[0])
		writeFile(t, path, file[1])
		paths = append(paths, m.Path(path))
	}

	return paths
}
