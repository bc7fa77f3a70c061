package domain

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"amalgam.dev/pkg/amalgam/internal/adapter"
	adaptermocks "amalgam.dev/pkg/amalgam/internal/adapter/mocks"
	m "amalgam.dev/pkg/amalgam/internal/model"
)

func testPlan(banner string) m.Plan {
	return m.Plan{Banner: banner, Markers: m.DefaultMarkers()}
}

func amalgamate(t *testing.T, plan m.Plan, target m.Target) (string, m.PassReport) {
	t.Helper()

	var out bytes.Buffer

	report, err := NewAmalgamator(adapter.NewLocalSourceFSAdapter()).Amalgamate(context.Background(), plan, target, &out)
	require.NoError(t, err)

	return out.String(), report
}

func TestAmalgamate_InterfaceExample(t *testing.T) {
	root := t.TempDir()
	files := writeSources(t, root,
		[2]string{"a.h", "// lic\n#pragma once\nint x;\n"},
		[2]string{"b.h", "// lic\n#pragma once\nint y;\n"},
	)

	out, report := amalgamate(t, testPlan("/*BANNER*/\n"), m.Target{Kind: m.PassInterface, Output: "lib.h", Files: files})

	assert.Equal(t, "/*BANNER*/\n#pragma once\nint x;\n\n\nint y;\n\n\n", out)
	assert.True(t, report.BannerEmitted)
	assert.True(t, report.GuardEmitted)
	assert.Equal(t, int64(len(out)), report.Bytes)
	require.Len(t, report.Files, 2)
	assert.Equal(t, 1, report.Files[0].GuardsKept)
	assert.Equal(t, 1, report.Files[1].GuardsDropped)
	assert.Equal(t, 1, report.Files[0].BannerLines)
	assert.Equal(t, 3, report.LinesWritten())

	sum := sha256.Sum256([]byte(out))
	assert.Equal(t, hex.EncodeToString(sum[:]), report.SHA256)
}

func TestAmalgamate_ImplementationExample(t *testing.T) {
	root := t.TempDir()
	files := writeSources(t, root,
		[2]string{"Lexer.h", "// lic\n#pragma once\n#include \"Scene.h\"\n#include <queue>\nstruct Lexer;\n"},
		[2]string{"Lexer.cpp", "// lic\n#include \"Lexer.h\"\nvoid lex() {}\n"},
		[2]string{"Parser.h", "// lic\n#pragma once\nstruct Parser;\n"},
	)

	target := m.Target{Kind: m.PassImplementation, Output: "lib.cpp", Files: files, Include: "pbrt_parser.h"}
	out, report := amalgamate(t, testPlan("/*BANNER*/\n"), target)

	want := "/*BANNER*/\n" +
		"#include \"pbrt_parser.h\"\n#include <queue>\nstruct Lexer;\n\n\n" +
		"void lex() {}\n\n\n" +
		"struct Parser;\n\n\n"
	assert.Equal(t, want, out)
	assert.NotContains(t, out, "#pragma once")
	assert.Equal(t, 1, strings.Count(out, "#include \"pbrt_parser.h\""))
	assert.Equal(t, 1, report.Files[0].GuardsReplaced)
	assert.Equal(t, 1, report.Files[0].LocalIncludes)
	assert.Equal(t, 1, report.Files[1].LocalIncludes)
	assert.Equal(t, 1, report.Files[2].GuardsDropped)
}

func TestAmalgamate_BannerBeforeFirstFileWithoutComment(t *testing.T) {
	root := t.TempDir()
	files := writeSources(t, root,
		[2]string{"plain.h", "int x;\n"},
		[2]string{"lic.h", "// lic\nint y;\n"},
	)

	out, _ := amalgamate(t, testPlan("/*BANNER*/\n"), m.Target{Kind: m.PassInterface, Files: files})

	assert.Equal(t, "/*BANNER*/\nint x;\n\n\nint y;\n\n\n", out)
}

func TestAmalgamate_PreservesLineTerminators(t *testing.T) {
	root := t.TempDir()
	files := writeSources(t, root,
		[2]string{"crlf.h", "// lic\r\n#pragma once\r\nint x;\r\n"},
		[2]string{"noeol.h", "int y;"},
	)

	out, _ := amalgamate(t, testPlan(""), m.Target{Kind: m.PassInterface, Files: files})

	assert.Equal(t, "#pragma once\r\nint x;\r\n\n\nint y;\n\n", out)
}

func TestAmalgamate_EmptyAndBannerOnlyFiles(t *testing.T) {
	root := t.TempDir()
	files := writeSources(t, root,
		[2]string{"empty.h", ""},
		[2]string{"only.h", "// lic\n// lic\n"},
		[2]string{"body.h", "int x;\n"},
	)

	out, report := amalgamate(t, testPlan("B\n"), m.Target{Kind: m.PassInterface, Files: files})

	assert.Equal(t, "\n\n\n\nB\nint x;\n\n\n", out)
	assert.Equal(t, 0, report.Files[0].LinesRead)
	assert.Equal(t, 2, report.Files[1].BannerLines)
	assert.False(t, report.GuardEmitted)
}

func TestAmalgamate_EmptyTarget(t *testing.T) {
	out, report := amalgamate(t, testPlan("B\n"), m.Target{Kind: m.PassInterface})

	assert.Empty(t, out)
	assert.False(t, report.BannerEmitted)
	assert.Empty(t, report.Files)
}

func TestAmalgamate_InputDigest(t *testing.T) {
	root := t.TempDir()
	content := "// lic\n#pragma once\nint x;"
	files := writeSources(t, root, [2]string{"a.h", content})

	_, report := amalgamate(t, testPlan(""), m.Target{Kind: m.PassInterface, Files: files})

	sum := sha256.Sum256([]byte(content))
	assert.Equal(t, hex.EncodeToString(sum[:]), report.Files[0].SHA256)
	assert.Equal(t, 3, report.Files[0].LinesRead)
}

func TestAmalgamate_Properties(t *testing.T) {
	root := t.TempDir()

	var sources [][2]string
	for i, name := range []string{"a", "b", "c", "d", "e"} {
		body := "// lic " + name + "\n#pragma once\n#include \"" + name + ".h\"\nint " + name + ";\n"
		if i%2 == 1 {
			body = "int " + name + ";\n#pragma once\n"
		}

		sources = append(sources, [2]string{name + ".h", body})
	}

	files := writeSources(t, root, sources...)

	for _, kind := range []m.PassKind{m.PassInterface, m.PassImplementation} {
		t.Run(kind.String(), func(t *testing.T) {
			target := m.Target{Kind: kind, Files: files, Include: "lib.h"}
			out, _ := amalgamate(t, testPlan("/*BANNER*/\n"), target)

			assert.Equal(t, 1, strings.Count(out, "/*BANNER*/"))
			assert.True(t, strings.HasPrefix(out, "/*BANNER*/\n"))
			assert.NotContains(t, out, "// lic")

			for _, line := range strings.Split(out, "\n") {
				assert.False(t, strings.HasPrefix(line, `#include "`) && line != `#include "lib.h"`, "local include survived: %q", line)
			}

			if kind == m.PassInterface {
				assert.Equal(t, 1, strings.Count(out, "#pragma once"))
			} else {
				assert.Zero(t, strings.Count(out, "#pragma once"))
				assert.Equal(t, 1, strings.Count(out, `#include "lib.h"`))
			}

			last := -1
			for _, name := range []string{"a", "b", "c", "d", "e"} {
				idx := strings.Index(out, "int "+name+";")
				assert.Greater(t, idx, last, "order of %s", name)
				last = idx
			}

			again, _ := amalgamate(t, testPlan("/*BANNER*/\n"), target)
			assert.Equal(t, out, again)
		})
	}
}

func TestAmalgamate_MissingFileAborts(t *testing.T) {
	root := t.TempDir()
	files := writeSources(t, root, [2]string{"a.h", "int x;\n"})
	missing := m.Path(filepath.Join(root, "missing.h"))
	files = append(files, missing, files[0])

	var out bytes.Buffer

	report, err := NewAmalgamator(adapter.NewLocalSourceFSAdapter()).Amalgamate(
		context.Background(), testPlan(""), m.Target{Kind: m.PassInterface, Files: files}, &out)

	var accessErr *m.FileAccessError
	require.ErrorAs(t, err, &accessErr)
	assert.Equal(t, missing, accessErr.Path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Len(t, report.Files, 1)
}

func TestAmalgamate_CancelledContext(t *testing.T) {
	root := t.TempDir()
	files := writeSources(t, root, [2]string{"a.h", "int x;\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAmalgamator(adapter.NewLocalSourceFSAdapter()).Amalgamate(
		ctx, testPlan(""), m.Target{Kind: m.PassInterface, Files: files}, io.Discard)
	require.ErrorIs(t, err, context.Canceled)
}

type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) { return 0, f.err }
func (f failingReader) Close() error             { return nil }

func TestAmalgamate_ReadErrorAborts(t *testing.T) {
	fsAdapter := adaptermocks.NewMockSourceFSAdapter(t)
	readErr := errors.New("device gone")

	fsAdapter.On("OpenLines", mock.Anything, m.Path("a.h")).
		Return(adapter.NewLineReader("a.h", failingReader{err: readErr}), nil)

	_, err := NewAmalgamator(fsAdapter).Amalgamate(
		context.Background(), testPlan(""), m.Target{Kind: m.PassInterface, Files: []m.Path{"a.h", "b.h"}}, io.Discard)

	var accessErr *m.FileAccessError
	require.ErrorAs(t, err, &accessErr)
	assert.Equal(t, "read", accessErr.Op)
	assert.ErrorIs(t, err, readErr)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestAmalgamate_WriteErrorAborts(t *testing.T) {
	fsAdapter := adaptermocks.NewMockSourceFSAdapter(t)

	fsAdapter.On("OpenLines", mock.Anything, m.Path("a.h")).
		Return(adapter.NewLineReader("a.h", io.NopCloser(strings.NewReader("int x;\n"))), nil)

	_, err := NewAmalgamator(fsAdapter).Amalgamate(
		context.Background(), testPlan(""), m.Target{Kind: m.PassInterface, Files: []m.Path{"a.h"}}, failingWriter{})
	require.ErrorContains(t, err, "disk full")
}
