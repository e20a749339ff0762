package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a path that is not in the registry.
	ErrNotFound = errors.New("repository not registered")

	// ErrInvalidPath reports an empty or unusable repository path.
	ErrInvalidPath = errors.New("repository path is required")
)

// IOError reports a failure reading or writing the backing file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s registry %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
