package upload

import (
	"errors"
	"io"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"foodcatalog/internal/logging"
	"foodcatalog/internal/pkg/response"
)

const (
	defaultEncoding = "7bit"
	defaultMimetype = "application/octet-stream"

	// room for multipart headers and non-file fields
	multipartOverhead = 1 << 20
)

// Handler streams multipart uploads into the Pipeline part by part, without
// buffering whole files in memory or on disk.
type Handler struct {
	pipeline    *Pipeline
	maxFileSize int64
	maxFiles    int
}

func NewHandler(pipeline *Pipeline, maxFileSize int64, maxFiles int) *Handler {
	return &Handler{pipeline: pipeline, maxFileSize: maxFileSize, maxFiles: maxFiles}
}

// Upload godoc
// @Summary Upload one or more files
// @Description Each file part is stored under its own name and served from /images/{name}.
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Success 201 {object} response.Body
// @Failure 400,413,500 {object} response.Body
// @Router /uploads [post]
func (h *Handler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, bodyLimit(h.maxFileSize, h.maxFiles))

	mr, err := c.Request.MultipartReader()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Expected a multipart/form-data body")
		return
	}

	ctx := c.Request.Context()
	files := make([]File, 0, 1)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			handleError(c, err, files)
			return
		}

		filename := part.FileName()
		if filename == "" {
			// plain form field
			_ = part.Close()
			continue
		}
		if len(files) == h.maxFiles {
			_ = part.Close()
			handleError(c, ErrTooManyFiles, files)
			return
		}

		mimetype := part.Header.Get("Content-Type")
		if mimetype == "" {
			mimetype = defaultMimetype
		}
		encoding := part.Header.Get("Content-Transfer-Encoding")
		if encoding == "" {
			encoding = defaultEncoding
		}

		f, err := h.pipeline.Upload(ctx, &sizeLimitReader{r: part, remaining: h.maxFileSize}, filename, mimetype, encoding)
		_ = part.Close()
		if err != nil {
			handleError(c, err, files)
			return
		}
		files = append(files, *f)
	}

	if len(files) == 0 {
		handleError(c, ErrNoFile, nil)
		return
	}
	response.Success(c, http.StatusCreated, files)
}

// bodyLimit caps the whole request at maxFiles full-size files plus
// multipart framing, saturating instead of overflowing.
func bodyLimit(maxFileSize int64, maxFiles int) int64 {
	if maxFiles < 1 {
		maxFiles = 1
	}
	if maxFileSize > (math.MaxInt64-multipartOverhead)/int64(maxFiles) {
		return math.MaxInt64
	}
	return maxFileSize*int64(maxFiles) + multipartOverhead
}

// partialUpload is the error detail when earlier parts of the request were
// already stored. Those files stay in place.
type partialUpload struct {
	Uploaded []File `json:"uploaded"`
}

// handleError writes the error response. Files stored before the failure are
// listed under details.uploaded.
func handleError(c *gin.Context, err error, stored []File) {
	var maxBytes *http.MaxBytesError
	var ioErr *IOError

	status, code, message := http.StatusBadRequest, "INVALID_REQUEST", "Malformed multipart body"
	switch {
	case errors.Is(err, ErrFileTooLarge), errors.As(err, &maxBytes):
		status, code, message = http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", ErrFileTooLarge.Error()
	case errors.Is(err, ErrTooManyFiles):
		code, message = "TOO_MANY_FILES", err.Error()
	case errors.Is(err, ErrInvalidFilename):
		code, message = "INVALID_FILENAME", err.Error()
	case errors.Is(err, ErrNoFile):
		code, message = "NO_FILE", err.Error()
	case errors.As(err, &ioErr):
		_ = c.Error(err)
		status, code, message = http.StatusInternalServerError, "UPLOAD_FAILED", "Upload failed"
	default:
		_ = c.Error(err)
		logging.FromContext(c.Request.Context()).Warn("malformed multipart body", "error", err)
	}

	if len(stored) > 0 {
		response.ErrorWithDetails(c, status, code, message, partialUpload{Uploaded: stored})
		return
	}
	response.Error(c, status, code, message)
}

// sizeLimitReader fails with ErrFileTooLarge once more than remaining bytes
// have been read.
type sizeLimitReader struct {
	r         io.Reader
	remaining int64
}

func (l *sizeLimitReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, ErrFileTooLarge
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrFileTooLarge
	}
	return n, err
}
