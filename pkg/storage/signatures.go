package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// SignatureStore persists signature images on disk under a base directory.
// The workflow engine only ever sees the opaque reference it returns.
type SignatureStore struct {
	baseDir string
}

// NewSignatureStore ensures the base directory exists and returns a handle.
func NewSignatureStore(baseDir string) (*SignatureStore, error) {
	if baseDir == "" {
		baseDir = "./signatures"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create signatures directory: %w", err)
	}
	return &SignatureStore{baseDir: baseDir}, nil
}

// Save writes an uploaded signature image and returns its relative reference.
func (s *SignatureStore) Save(documentID, filename string, data []byte) (string, error) {
	ref := filepath.Join(documentID, filepath.Base(filename))
	path := s.resolve(ref)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare signature directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write signature image: %w", err)
	}
	return ref, nil
}

// Open returns a read-only handle for a stored signature image.
func (s *SignatureStore) Open(ref string) (*os.File, error) {
	file, err := os.Open(s.resolve(ref))
	if err != nil {
		return nil, fmt.Errorf("open signature image: %w", err)
	}
	return file, nil
}

// Delete removes a stored signature image if present.
func (s *SignatureStore) Delete(ref string) error {
	if err := os.Remove(s.resolve(ref)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete signature image: %w", err)
	}
	return nil
}

func (s *SignatureStore) resolve(ref string) string {
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(s.baseDir, ref)
}
