package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"regexp"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeader builds a parsed multipart file header with the given content.
func fileHeader(t *testing.T, field, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File[field][0]
}

type countingRecorder struct {
	stored, rejected int
}

func (c *countingRecorder) RecordUpload(_ string, _ int64, err error) {
	if err != nil {
		c.rejected++
		return
	}
	c.stored++
}

func newTestUploader(t *testing.T, maxBytes int64) (*Uploader, *countingRecorder) {
	t.Helper()
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	rec := &countingRecorder{}
	u := NewUploader(storage, maxBytes, rec, nil)
	u.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return u, rec
}

func TestGenerateName(t *testing.T) {
	t.Parallel()

	name := GenerateName("task", ".png", time.UnixMilli(1700000000123))
	assert.Regexp(t, regexp.MustCompile(`^task-1700000000123-\d{1,9}\.png$`), name)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	u, _ := newTestUploader(t, 10)
	tests := []struct {
		name        string
		filename    string
		contentType string
		size        int
		wantErr     error
	}{
		{"png", "a.png", "image/png", 5, nil},
		{"upper case jpeg", "A.JPEG", "image/jpeg", 5, nil},
		{"jpg", "a.jpg", "image/jpeg", 10, nil},
		{"too large", "a.png", "image/png", 11, ErrFileTooLarge},
		{"gif", "a.gif", "image/gif", 5, ErrUnsupportedType},
		{"png name with text body", "a.png", "text/plain", 5, ErrUnsupportedType},
		{"no extension", "image", "image/png", 5, ErrUnsupportedType},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			fh := fileHeader(t, "images", tc.filename, tc.contentType, bytes.Repeat([]byte("x"), tc.size))
			_, err := u.Validate(fh)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestSaveAndServe(t *testing.T) {
	t.Parallel()

	u, rec := newTestUploader(t, 1024)
	ctx := context.Background()

	url, err := u.Save(ctx, FolderAvatars, fileHeader(t, "avatar", "me.PNG", "image/png", []byte("png-bytes")))
	require.NoError(t, err)
	assert.Regexp(t, `^/uploads/avatars/avatar-1700000000000-\d+\.png$`, url)

	_, err = u.Save(ctx, FolderAvatars, fileHeader(t, "avatar", "me.txt", "text/plain", []byte("x")))
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Equal(t, 1, rec.stored)
	assert.Equal(t, 1, rec.rejected)

	r := chi.NewRouter()
	r.Get("/uploads/{folder}/{name}", u.ServeFile)

	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "png-bytes", res.Body.String())
	assert.Equal(t, "image/png", res.Header().Get("Content-Type"))

	for _, path := range []string{"/uploads/avatars/missing.png", "/uploads/secrets/a.png", "/uploads/avatars/.hidden"} {
		res := httptest.NewRecorder()
		r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, res.Code, path)
	}
}

func TestSaveAllStopsAtFirstInvalidFile(t *testing.T) {
	t.Parallel()

	u, rec := newTestUploader(t, 1024)
	files := []*multipart.FileHeader{
		fileHeader(t, "images", "1.jpg", "image/jpeg", []byte("1")),
		fileHeader(t, "images", "2.bmp", "image/bmp", []byte("2")),
	}
	_, err := u.SaveAll(context.Background(), FolderTasks, files)
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Equal(t, 1, rec.stored)
}

func TestSplitKey(t *testing.T) {
	t.Parallel()

	folder, name, err := SplitKey("tasks/task-1-2.png")
	require.NoError(t, err)
	assert.Equal(t, FolderTasks, folder)
	assert.Equal(t, "task-1-2.png", name)

	for _, key := range []string{"tasks", "tasks/", "other/a.png", "tasks/../a.png", "tasks/a/b.png", `tasks/a\b.png`} {
		_, _, err := SplitKey(key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestLocalStorageDoesNotOverwrite(t *testing.T) {
	t.Parallel()

	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "proofs/p.png", bytes.NewBufferString("first"), 5, "image/png"))
	assert.Error(t, s.Put(ctx, "proofs/p.png", bytes.NewBufferString("second"), 6, "image/png"))

	obj, info, err := s.Get(ctx, "proofs/p.png")
	require.NoError(t, err)
	defer func() { _ = obj.Close() }()
	data, err := io.ReadAll(obj)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
	assert.Equal(t, int64(5), info.Size)

	_, _, err = s.Get(ctx, "proofs/none.png")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, s.Ping(ctx))
}
