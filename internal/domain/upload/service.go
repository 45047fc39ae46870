package upload

import (
	"context"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"foodcatalog/internal/logging"
)

// Pipeline moves one inbound file into Storage and returns where it will be
// served from.
type Pipeline struct {
	storage Storage
	baseURL string
}

// NewPipeline builds a pipeline whose URLs are baseURL + "/images/<name>".
func NewPipeline(storage Storage, baseURL string) *Pipeline {
	return &Pipeline{storage: storage, baseURL: strings.TrimRight(baseURL, "/")}
}

// Upload copies src into storage under filename. It returns after the file
// is committed; a failed transfer is an *IOError. A file with the same name
// is replaced. Canceling ctx does not abort a transfer in progress.
func (p *Pipeline) Upload(ctx context.Context, src io.Reader, filename, mimetype, encoding string) (*File, error) {
	if !validFilename(filename) {
		return nil, ErrInvalidFilename
	}

	ctx = context.WithoutCancel(ctx)
	log := logging.WithFields(ctx, "filename", filename)
	n, err := p.storage.Save(ctx, filename, mimetype, src)
	if err != nil {
		log.Error("upload failed", "bytes", n, "error", err)
		return nil, err
	}
	log.Info("file uploaded", "bytes", n, "mimetype", mimetype)

	return &File{
		Filename: filename,
		Mimetype: mimetype,
		Encoding: encoding,
		URL:      p.baseURL + "/images/" + url.PathEscape(filename),
	}, nil
}

// validFilename accepts a single path element only.
func validFilename(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return false
	}
	return filepath.Base(name) == name
}
