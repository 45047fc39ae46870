package upload

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// Storage materializes a named byte stream. Save returns only once the
// object is fully committed, or an *IOError.
type Storage interface {
	Save(ctx context.Context, name, contentType string, src io.Reader) (int64, error)
}

// DiskStorage writes files under a root directory. Each file is written to a
// temporary name next to its destination and renamed into place, so readers
// never see a partial file.
type DiskStorage struct {
	root string
}

func NewDiskStorage(root string) *DiskStorage {
	return &DiskStorage{root: root}
}

func (d *DiskStorage) Root() string { return d.root }

// Save ignores ctx cancellation: once a transfer has started it either
// commits or fails on src.
func (d *DiskStorage) Save(_ context.Context, name, _ string, src io.Reader) (int64, error) {
	// MkdirAll succeeds when a concurrent upload created the directory first.
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return 0, &IOError{Op: "mkdir", Path: d.root, Err: err}
	}

	dst := filepath.Join(d.root, name)
	tmp, err := os.CreateTemp(d.root, ".upload-*.part")
	if err != nil {
		return 0, &IOError{Op: "create", Path: dst, Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	n, err := io.Copy(tmp, src)
	if err != nil {
		return n, &IOError{Op: "write", Path: dst, Err: err}
	}
	if err := tmp.Chmod(0o644); err != nil {
		return n, &IOError{Op: "chmod", Path: dst, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return n, &IOError{Op: "sync", Path: dst, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return n, &IOError{Op: "close", Path: dst, Err: err}
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return n, &IOError{Op: "rename", Path: dst, Err: err}
	}
	committed = true
	return n, nil
}
