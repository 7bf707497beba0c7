package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"productshots/internal/domain"
)

// FileStore persists images onto the local filesystem and serves them under a
// public base URL. It backs both uploads and generated angles.
type FileStore struct {
	basePath string
	baseURL  string
}

// NewFileStore initializes a FileStore rooted at basePath. baseURL may be
// empty, in which case URL returns the bare key.
func NewFileStore(basePath, baseURL string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath, baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Write persists the provided bytes at the given relative key and returns the
// canonicalized storage key.
func (s *FileStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fullPath, cleanKey, err := s.Resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return cleanKey, nil
}

// Read loads the bytes stored at key. Keys escaping the root fail with
// domain.ErrInvalidReferencePath and missing files with domain.ErrNotFound.
func (s *FileStore) Read(ctx context.Context, key string) ([]byte, error) {
	if s == nil {
		return nil, errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, cleanKey, err := s.Resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, cleanKey)
		}
		return nil, fmt.Errorf("storage: read file: %w", err)
	}
	return data, nil
}

// Resolve maps key to its absolute path under the root.
func (s *FileStore) Resolve(key string) (string, string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", "", err
	}
	return filepath.Join(s.basePath, filepath.FromSlash(cleanKey)), cleanKey, nil
}

// URL returns the public address of key.
func (s *FileStore) URL(key string) string {
	key = strings.TrimLeft(strings.ReplaceAll(key, "\\", "/"), "/")
	if s == nil || s.baseURL == "" {
		return key
	}
	return s.baseURL + "/" + key
}

// KeyForURL reverses URL for addresses served by this store.
func (s *FileStore) KeyForURL(url string) (string, bool) {
	if s == nil {
		return "", false
	}
	key := url
	if s.baseURL != "" {
		if !strings.HasPrefix(url, s.baseURL+"/") {
			return "", false
		}
		key = strings.TrimPrefix(url, s.baseURL+"/")
	}
	clean, err := sanitizeKey(key)
	if err != nil {
		return "", false
	}
	return clean, true
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: key is required", domain.ErrInvalidReferencePath)
	}
	if strings.Contains(key, "://") || strings.ContainsRune(key, 0) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidReferencePath, key)
	}
	key = strings.ReplaceAll(key, "\\", "/")
	if strings.HasPrefix(key, "/") || filepath.VolumeName(key) != "" {
		return "", fmt.Errorf("%w: absolute path %q", domain.ErrInvalidReferencePath, key)
	}
	key = strings.TrimPrefix(key, "./")
	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidReferencePath, key)
	}
	return cleaned, nil
}
