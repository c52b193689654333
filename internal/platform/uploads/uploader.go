package uploads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskie-api/internal/platform/logger"
)

// Folder groups uploads by purpose.
type Folder string

// Upload folders.
const (
	FolderAvatars  Folder = "avatars"
	FolderProofs   Folder = "proofs"
	FolderTasks    Folder = "tasks"
	FolderPayments Folder = "payments"
)

// Folders lists every valid folder.
var Folders = []Folder{FolderAvatars, FolderProofs, FolderTasks, FolderPayments}

// filePrefix is the first segment of generated file names per folder.
var filePrefix = map[Folder]string{
	FolderAvatars:  "avatar",
	FolderProofs:   "proof",
	FolderTasks:    "task",
	FolderPayments: "payment",
}

// MaxTaskImages caps the number of images attached to a task.
const MaxTaskImages = 10

// PublicPrefix is the URL path under which uploads are served.
const PublicPrefix = "/uploads/"

var allowedExtensions = map[string]bool{".jpeg": true, ".jpg": true, ".png": true}

// Recorder receives upload outcomes. *metrics.Metrics satisfies it.
type Recorder interface {
	RecordUpload(folder string, size int64, err error)
}

type nopRecorder struct{}

func (nopRecorder) RecordUpload(string, int64, error) {}

// Uploader validates multipart files and writes them to a Storage.
type Uploader struct {
	storage  Storage
	maxBytes int64
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewUploader creates an Uploader that accepts files up to maxBytes.
func NewUploader(storage Storage, maxBytes int64, recorder Recorder, log *slog.Logger) *Uploader {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Uploader{
		storage:  storage,
		maxBytes: maxBytes,
		recorder: recorder,
		logger:   log.With(slog.String("component", "uploader")),
		now:      time.Now,
	}
}

// MaxBytes is the per-file size limit.
func (u *Uploader) MaxBytes() int64 {
	return u.maxBytes
}

// Storage returns the backing storage.
func (u *Uploader) Storage() Storage {
	return u.storage
}

// Save validates fh and stores it in folder, returning its public URL.
func (u *Uploader) Save(ctx context.Context, folder Folder, fh *multipart.FileHeader) (string, error) {
	url, err := u.save(ctx, folder, fh)
	u.recorder.RecordUpload(string(folder), fh.Size, err)
	return url, err
}

func (u *Uploader) save(ctx context.Context, folder Folder, fh *multipart.FileHeader) (string, error) {
	ext, err := u.Validate(fh)
	if err != nil {
		return "", err
	}

	name := GenerateName(filePrefix[folder], ext, u.now())
	key := string(folder) + "/" + name

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := u.storage.Put(ctx, key, f, fh.Size, fh.Header.Get("Content-Type")); err != nil {
		logger.FromContextOrDefault(ctx, u.logger).Error("failed to store upload",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return "", err
	}

	return PublicPrefix + key, nil
}

// SaveAll stores every file in order. Files already stored stay in place
// when a later one fails.
func (u *Uploader) SaveAll(ctx context.Context, folder Folder, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := u.Save(ctx, folder, fh)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// Validate checks size, extension and declared content type, returning
// the lowercased extension.
func (u *Uploader) Validate(fh *multipart.FileHeader) (string, error) {
	if u.maxBytes > 0 && fh.Size > u.maxBytes {
		return "", ErrFileTooLarge
	}
	ext := strings.ToLower(path.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}
	ct := strings.ToLower(fh.Header.Get("Content-Type"))
	if !strings.Contains(ct, "jpeg") && !strings.Contains(ct, "jpg") && !strings.Contains(ct, "png") {
		return "", ErrUnsupportedType
	}
	return ext, nil
}

// GenerateName builds "<prefix>-<unixmillis>-<random><ext>".
func GenerateName(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%d%s", prefix, now.UnixMilli(), rand.Int64N(1_000_000_000), ext)
}

// SplitKey validates a "<folder>/<name>" key.
func SplitKey(key string) (Folder, string, error) {
	folder, name, ok := strings.Cut(key, "/")
	if !ok || !IsFolder(folder) || !validName(name) {
		return "", "", ErrInvalidKey
	}
	return Folder(folder), name, nil
}

// IsFolder reports whether name is a known upload folder.
func IsFolder(name string) bool {
	_, ok := filePrefix[Folder(name)]
	return ok
}

func validName(name string) bool {
	return name != "" &&
		!strings.HasPrefix(name, ".") &&
		!strings.ContainsAny(name, `/\`) &&
		path.Base(name) == name
}

// ServeFile serves GET /uploads/{folder}/{name}.
func (u *Uploader) ServeFile(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "folder") + "/" + chi.URLParam(r, "name")
	if _, _, err := SplitKey(key); err != nil {
		http.NotFound(w, r)
		return
	}

	obj, info, err := u.storage.Get(r.Context(), key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.FromContextOrDefault(r.Context(), u.logger).Error("failed to read upload",
				slog.String("key", key),
				slog.String("error", err.Error()))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		http.NotFound(w, r)
		return
	}
	defer func() { _ = obj.Close() }()

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, key, info.ModTime, obj)
}
