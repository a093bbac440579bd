package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage is the content-store collaborator: it persists uploaded bytes and
// hands back an opaque handle that is stored on document rows. Handles are
// paths relative to the base directory, so the database stays portable
// across deployments.
type Storage struct {
	BaseDir string
}

func NewStorage(baseDir string) *Storage {
	return &Storage{BaseDir: baseDir}
}

// Store writes data under dir with a unique name derived from suggestedName
// and returns the handle.
func (s *Storage) Store(data []byte, dir, suggestedName string) (string, error) {
	target := filepath.Join(s.BaseDir, dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	ext := filepath.Ext(suggestedName)
	name := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	handle := filepath.Join(dir, name)

	if err := os.WriteFile(filepath.Join(s.BaseDir, handle), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return handle, nil
}

// Fetch reads the bytes behind a handle.
func (s *Storage) Fetch(handle string) ([]byte, error) {
	path, err := s.resolve(handle)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Remove discards a stored file. Used to clean up partial writes when the
// enclosing transaction rolls back.
func (s *Storage) Remove(handle string) error {
	path, err := s.resolve(handle)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

func (s *Storage) resolve(handle string) (string, error) {
	clean := filepath.Clean(handle)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid file handle: %s", handle)
	}
	return filepath.Join(s.BaseDir, clean), nil
}
