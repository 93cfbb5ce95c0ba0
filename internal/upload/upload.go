// Package upload stores admin-uploaded media and documents under random names.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/flameguard/flameguard-site/internal/config"
)

var (
	// ErrEmptyFile is returned for a zero byte upload.
	ErrEmptyFile = errors.New("file is empty")
	// ErrTooLarge is returned when a file exceeds the configured size limit.
	ErrTooLarge = errors.New("file is too large")
	// ErrExtensionNotAllowed is returned for a file type outside the whitelist.
	ErrExtensionNotAllowed = errors.New("file type is not allowed")
)

const megabyte = 1 << 20

// File describes a stored upload.
type File struct {
	Name         string `json:"name"`
	OriginalName string `json:"original_name"`
	URL          string `json:"url"`
	Type         string `json:"file_type"`
	Size         int64  `json:"file_size"`
	HumanSize    string `json:"human_size"`
}

// Store writes uploads to a directory served under a URL prefix.
type Store struct {
	dir       string
	urlPrefix string
	maxSize   int64
	allowed   map[string]struct{}
}

// New creates a store from the upload settings. An empty whitelist allows every extension.
func New(cfg config.Upload) *Store {
	s := &Store{
		dir:       cfg.Dir,
		urlPrefix: strings.TrimSuffix(cfg.URLPrefix, "/"),
		maxSize:   int64(cfg.MaxSizeMB) * megabyte,
		allowed:   make(map[string]struct{}, len(cfg.AllowedExtensions)),
	}

	for _, ext := range cfg.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}

		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}

		s.allowed[ext] = struct{}{}
	}

	return s
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.dir
}

// MaxSize returns the size limit in bytes, 0 means unlimited.
func (s *Store) MaxSize() int64 {
	return s.maxSize
}

// Check validates name and size before anything is written.
func (s *Store) Check(name string, size int64) error {
	if size <= 0 {
		return ErrEmptyFile
	}

	if s.maxSize > 0 && size > s.maxSize {
		return fmt.Errorf("%w: %s, limit %s", ErrTooLarge,
			humanize.Bytes(uint64(size)), humanize.Bytes(uint64(s.maxSize)))
	}

	ext := strings.ToLower(filepath.Ext(name))
	if len(s.allowed) == 0 {
		return nil
	}

	if _, ok := s.allowed[ext]; !ok {
		return fmt.Errorf("%w: %q", ErrExtensionNotAllowed, ext)
	}

	return nil
}

// Save validates and stores a multipart file.
func (s *Store) Save(fh *multipart.FileHeader) (*File, error) {
	if err := s.Check(fh.Filename, fh.Size); err != nil {
		return nil, err
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}

	defer func() { _ = src.Close() }()

	return s.Write(fh.Filename, src)
}

// Write stores the content of r under a random name keeping the extension of original.
func (s *Store) Write(original string, r io.Reader) (*File, error) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(original))
	name := uuid.NewString() + ext

	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o640)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}

	var src io.Reader = r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}

	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}

	if err == nil && s.maxSize > 0 && n > s.maxSize {
		err = ErrTooLarge
	}

	if err == nil && n == 0 {
		err = ErrEmptyFile
	}

	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return nil, err
	}

	return &File{
		Name:         name,
		OriginalName: filepath.Base(original),
		URL:          path.Join(s.urlPrefix, name),
		Type:         strings.TrimPrefix(ext, "."),
		Size:         n,
		HumanSize:    humanize.Bytes(uint64(n)),
	}, nil
}
