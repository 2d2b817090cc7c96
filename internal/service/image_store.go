package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
)

const defaultMaxImageSize = 5 << 20

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ImageStore persists event images
type ImageStore interface {
	// Save stores the upload and returns its stored file name
	Save(ctx context.Context, upload *ImageUpload) (string, error)
	// Delete removes a stored file; missing files are not an error
	Delete(ctx context.Context, name string) error
}

// FileImageStore stores images in a directory of an afero filesystem
type FileImageStore struct {
	fs      afero.Fs
	dir     string
	maxSize int64
	now     func() time.Time
}

// NewFileImageStore creates an image store rooted at dir
func NewFileImageStore(fs afero.Fs, dir string, maxSize int64) (*FileImageStore, error) {
	if maxSize <= 0 {
		maxSize = defaultMaxImageSize
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &FileImageStore{fs: fs, dir: dir, maxSize: maxSize, now: time.Now}, nil
}

// Save writes the image as <unix-nano>-<basename>
func (s *FileImageStore) Save(ctx context.Context, upload *ImageUpload) (string, error) {
	if upload == nil || upload.Content == nil {
		return "", fmt.Errorf("%w: no file", domain.ErrInvalidImage)
	}

	base := sanitizeFilename(upload.Filename)
	ext := strings.ToLower(path.Ext(base))
	if !allowedImageExtensions[ext] {
		return "", fmt.Errorf("%w: extension %q not allowed", domain.ErrInvalidImage, ext)
	}
	if upload.Size > s.maxSize {
		return "", fmt.Errorf("%w: %d bytes exceeds limit of %d", domain.ErrInvalidImage, upload.Size, s.maxSize)
	}

	name := fmt.Sprintf("%d-%s", s.now().UnixNano(), base)
	full := filepath.Join(s.dir, name)

	f, err := s.fs.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}

	// The declared size comes from the client; enforce the limit on the bytes actually read
	n, err := io.Copy(f, io.LimitReader(upload.Content, s.maxSize+1))
	closeErr := f.Close()
	if err == nil && n > s.maxSize {
		err = fmt.Errorf("%w: upload exceeds limit of %d bytes", domain.ErrInvalidImage, s.maxSize)
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.fs.Remove(full)
		return "", err
	}
	return name, nil
}

// Delete removes a stored image
func (s *FileImageStore) Delete(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	err := s.fs.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil {
		if exists, _ := afero.Exists(s.fs, filepath.Join(s.dir, filepath.Base(name))); !exists {
			return nil
		}
		return fmt.Errorf("failed to delete image %s: %w", name, err)
	}
	return nil
}

// sanitizeFilename keeps the base name and replaces characters unsafe in URLs
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}

var _ ImageStore = (*FileImageStore)(nil)
