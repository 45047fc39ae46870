package upload

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"foodcatalog/internal/logging"
)

const testBaseURL = "http://localhost:4000"

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

// failingReader yields data and then err.
type failingReader struct {
	data []byte
	err  error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, f.err
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Save(ctx context.Context, name, contentType string, src io.Reader) (int64, error) {
	args := m.Called(ctx, name, contentType, src)
	return args.Get(0).(int64), args.Error(1)
}

func TestPipeline_Upload(t *testing.T) {
	root := t.TempDir()
	p := NewPipeline(NewDiskStorage(root), testBaseURL+"/")

	content := randomBytes(t, 256*1024+17)
	f, err := p.Upload(context.Background(), bytes.NewReader(content), "logo.png", "image/png", "7bit")
	require.NoError(t, err)

	assert.Equal(t, "logo.png", f.Filename)
	assert.Equal(t, "image/png", f.Mimetype)
	assert.Equal(t, "7bit", f.Encoding)
	assert.Equal(t, testBaseURL+"/images/logo.png", f.URL)
	assert.True(t, strings.HasSuffix(f.URL, "/images/logo.png"))

	stored, err := os.ReadFile(filepath.Join(root, "logo.png"))
	require.NoError(t, err)
	assert.Len(t, stored, len(content))
	assert.True(t, bytes.Equal(content, stored))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not remain")
}

func TestPipeline_UploadEmptyFile(t *testing.T) {
	root := t.TempDir()
	p := NewPipeline(NewDiskStorage(root), testBaseURL)

	_, err := p.Upload(context.Background(), bytes.NewReader(nil), "empty.txt", "text/plain", "7bit")
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(root, "empty.txt"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
}

func TestPipeline_UploadReplacesSameName(t *testing.T) {
	root := t.TempDir()
	p := NewPipeline(NewDiskStorage(root), testBaseURL)
	ctx := context.Background()

	_, err := p.Upload(ctx, strings.NewReader("first version"), "menu.txt", "text/plain", "7bit")
	require.NoError(t, err)
	_, err = p.Upload(ctx, strings.NewReader("second"), "menu.txt", "text/plain", "7bit")
	require.NoError(t, err)

	stored, err := os.ReadFile(filepath.Join(root, "menu.txt"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(stored))
}

func TestPipeline_FailedTransferLeavesNothing(t *testing.T) {
	root := t.TempDir()
	p := NewPipeline(NewDiskStorage(root), testBaseURL)

	cause := errors.New("connection reset by peer")
	src := &failingReader{data: randomBytes(t, 4096), err: cause}

	f, err := p.Upload(context.Background(), src, "logo.png", "image/png", "7bit")
	assert.Nil(t, f)

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr), "got %v", err)
	assert.Equal(t, "write", ioErr.Op)
	assert.Equal(t, filepath.Join(root, "logo.png"), ioErr.Path)
	assert.ErrorIs(t, err, cause)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPipeline_FailedTransferKeepsPreviousFile(t *testing.T) {
	root := t.TempDir()
	p := NewPipeline(NewDiskStorage(root), testBaseURL)
	ctx := context.Background()

	_, err := p.Upload(ctx, strings.NewReader("good copy"), "logo.png", "image/png", "7bit")
	require.NoError(t, err)

	_, err = p.Upload(ctx, &failingReader{data: []byte("partial"), err: io.ErrUnexpectedEOF}, "logo.png", "image/png", "7bit")
	require.Error(t, err)

	stored, err := os.ReadFile(filepath.Join(root, "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, "good copy", string(stored))
}

func TestPipeline_CanceledContextStillCommits(t *testing.T) {
	root := t.TempDir()
	p := NewPipeline(NewDiskStorage(root), testBaseURL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f, err := p.Upload(ctx, strings.NewReader("written anyway"), "logo.png", "image/png", "7bit")
	require.NoError(t, err)
	assert.Equal(t, testBaseURL+"/images/logo.png", f.URL)

	stored, err := os.ReadFile(filepath.Join(root, "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, "written anyway", string(stored))
}

func TestPipeline_StorageSeesLiveContext(t *testing.T) {
	storage := new(MockStorage)
	storage.On("Save", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }),
		"logo.png", "image/png", mock.Anything).Return(int64(4), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPipeline(storage, testBaseURL).Upload(ctx, strings.NewReader("data"), "logo.png", "image/png", "7bit")
	require.NoError(t, err)
	storage.AssertExpectations(t)
}

func TestPipeline_LongFilename(t *testing.T) {
	root := t.TempDir()
	p := NewPipeline(NewDiskStorage(root), testBaseURL)

	name := strings.Repeat("a", 246) + ".png"
	require.Len(t, name, 250)

	_, err := p.Upload(context.Background(), strings.NewReader("long"), name, "image/png", "7bit")
	require.NoError(t, err)

	stored, err := os.ReadFile(filepath.Join(root, name))
	require.NoError(t, err)
	assert.Equal(t, "long", string(stored))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPipeline_ConcurrentFirstUse(t *testing.T) {
	root := filepath.Join(t.TempDir(), "public", "images")
	p := NewPipeline(NewDiskStorage(root), testBaseURL)

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("dish-%02d.jpg", i)
			_, err := p.Upload(context.Background(), strings.NewReader(name), name, "image/jpeg", "7bit")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, workers)
	for i := 0; i < workers; i++ {
		name := fmt.Sprintf("dish-%02d.jpg", i)
		stored, err := os.ReadFile(filepath.Join(root, name))
		require.NoError(t, err)
		assert.Equal(t, name, string(stored))
	}
}

func TestPipeline_InvalidFilename(t *testing.T) {
	storage := new(MockStorage)
	p := NewPipeline(storage, testBaseURL)

	for _, name := range []string{"", ".", "..", "../etc/passwd", "a/b.png", `a\b.png`, "nul\x00.png"} {
		_, err := p.Upload(context.Background(), strings.NewReader("x"), name, "text/plain", "7bit")
		assert.ErrorIs(t, err, ErrInvalidFilename, "name %q", name)
	}
	storage.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPipeline_StorageError(t *testing.T) {
	storage := new(MockStorage)
	ioErr := &IOError{Op: "put", Path: "s3://bucket/images/logo.png", Err: errors.New("access denied")}
	storage.On("Save", mock.Anything, "logo.png", "image/png", mock.Anything).Return(int64(0), ioErr)

	p := NewPipeline(storage, testBaseURL)
	f, err := p.Upload(context.Background(), strings.NewReader("x"), "logo.png", "image/png", "7bit")
	assert.Nil(t, f)
	assert.ErrorIs(t, err, ioErr)
	storage.AssertExpectations(t)
}

func TestPipeline_URLEscapesName(t *testing.T) {
	storage := new(MockStorage)
	storage.On("Save", mock.Anything, "pad thai.jpg", "image/jpeg", mock.Anything).Return(int64(1), nil)

	f, err := NewPipeline(storage, testBaseURL).Upload(context.Background(), strings.NewReader("x"), "pad thai.jpg", "image/jpeg", "7bit")
	require.NoError(t, err)
	assert.Equal(t, testBaseURL+"/images/pad%20thai.jpg", f.URL)
}

func TestPipeline_LogsCarryFilename(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logging.New(&buf, "info", "json"))
	t.Cleanup(func() { slog.SetDefault(prev) })

	p := NewPipeline(NewDiskStorage(t.TempDir()), testBaseURL)
	ctx := logging.WithRequestID(context.Background(), "req-42")

	_, err := p.Upload(ctx, strings.NewReader("data"), "menu.pdf", "application/pdf", "7bit")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"file uploaded"`)
	assert.Contains(t, out, `"filename":"menu.pdf"`)
	assert.Contains(t, out, `"request_id":"req-42"`)
}
