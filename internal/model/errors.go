package model

import "fmt"

// FileAccessError reports a path that is missing, unreadable or unwritable.
// It is always fatal for the invocation.
type FileAccessError struct {
	Op   string
	Path Path
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}
