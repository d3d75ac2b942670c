package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrEmptyFileName is returned when the sanitized file name is empty.
var ErrEmptyFileName = errors.New("empty file name")

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileStore persists uploaded binaries and returns where they were stored.
type FileStore interface {
	Save(ctx context.Context, filename string, content io.Reader) (string, error)
	Remove(ctx context.Context, location string) error
}

// LocalStore writes files under a single directory.
type LocalStore struct {
	dir string
}

// NewLocalStore ensures dir exists and returns a store rooted there.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// SanitizeFileName strips directories and characters unsafe for a file name.
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, ".")
	return name
}

// Save writes content to a uuid-prefixed copy of filename and returns its path.
func (s *LocalStore) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := SanitizeFileName(filename)
	if clean == "" {
		return "", ErrEmptyFileName
	}

	path := filepath.Join(s.dir, uuid.NewString()+"_"+clean)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", clean, err)
	}
	if _, err := io.Copy(f, content); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write %s: %w", clean, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close %s: %w", clean, err)
	}
	return path, nil
}

// Remove deletes a previously saved file. Missing files are ignored.
func (s *LocalStore) Remove(_ context.Context, location string) error {
	if !strings.HasPrefix(filepath.Clean(location), filepath.Clean(s.dir)+string(filepath.Separator)) {
		return fmt.Errorf("refusing to remove %s outside upload dir", location)
	}
	if err := os.Remove(location); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
