package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pdfdesk/backend/internal/model"
)

type FileStore interface {
	InsertFile(ctx context.Context, file model.File) (*model.File, error)
	ListFiles(ctx context.Context) ([]model.File, error)
}

// ObjectStorage persists uploaded bytes and returns where they ended up.
type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

type Upload struct {
	FieldName   string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type UploadService struct {
	files   FileStore
	storage ObjectStorage
	now     func() time.Time
}

func NewUploadService(files FileStore, storage ObjectStorage) *UploadService {
	return &UploadService{files: files, storage: storage, now: time.Now}
}

func (s *UploadService) UploadFile(ctx context.Context, title string, upload Upload) (*model.File, error) {
	title = strings.TrimSpace(title)
	if title == "" || upload.Body == nil || upload.FileName == "" {
		return nil, ErrInvalidInput
	}

	now := s.now()
	key := storageKey(upload.FieldName, upload.FileName, now)

	location, err := s.storage.Put(ctx, key, upload.Body, upload.Size, upload.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	return s.files.InsertFile(ctx, model.File{
		ID:    uuid.NewString(),
		Title: title,
		PDF:   location,
		Date:  now.Format(time.DateOnly),
	})
}

func (s *UploadService) ListFiles(ctx context.Context) ([]model.File, error) {
	return s.files.ListFiles(ctx)
}

// storageKey follows "<field>-<unix ms>-<original name>".
func storageKey(field, fileName string, now time.Time) string {
	if field == "" {
		field = "file"
	}
	base := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		if r == ' ' || r == '/' || r < 0x20 {
			return '_'
		}
		return r
	}, base)
	return fmt.Sprintf("%s-%d-%s", field, now.UnixMilli(), base)
}
