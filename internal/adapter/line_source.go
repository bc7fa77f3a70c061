package adapter

import (
	"bufio"
	"errors"
	"io"

	m "amalgam.dev/pkg/amalgam/internal/model"
)

const lineBufferSize = 64 * 1024

// LineReader streams the raw lines of one file in on-disk order. Every line
// keeps its terminator; a final unterminated line is returned as-is. ReadLine
// returns io.EOF once the file is exhausted.
type LineReader interface {
	ReadLine() (string, error)
	Close() error
}

type bufferedLineReader struct {
	path   m.Path
	source io.ReadCloser
	reader *bufio.Reader
}

// NewLineReader wraps source in a LineReader. path is only used to annotate errors.
func NewLineReader(path m.Path, source io.ReadCloser) LineReader {
	return &bufferedLineReader{
		path:   path,
		source: source,
		reader: bufio.NewReaderSize(source, lineBufferSize),
	}
}

// ReadLine returns the next line including its terminator.
func (r *bufferedLineReader) ReadLine() (string, error) {
	line, err := r.reader.ReadString('\n')
	if errors.Is(err, io.EOF) {
		if line != "" {
			return line, nil
		}

		return "", io.EOF
	}

	if err != nil {
		return "", &m.FileAccessError{Op: "read", Path: r.path, Err: err}
	}

	return line, nil
}

// Close releases the underlying file.
func (r *bufferedLineReader) Close() error {
	return r.source.Close()
}
