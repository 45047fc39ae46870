package upload

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFilename = errors.New("invalid file name")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrTooManyFiles    = errors.New("too many files in request")
	ErrNoFile          = errors.New("no file provided")
)

// IOError reports a failed transfer into storage. Nothing is left at Path
// when it is returned.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("upload %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
