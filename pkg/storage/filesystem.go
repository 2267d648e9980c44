package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileSystemArtifactStore implements ArtifactStore using the local filesystem
type FileSystemArtifactStore struct {
	rootDir string
	baseURL string
}

// NewFileSystemArtifactStore creates a new filesystem-based artifact store.
// Returned URLs are baseURL joined with the artifact key.
func NewFileSystemArtifactStore(rootDir, baseURL string) (*FileSystemArtifactStore, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}
	return &FileSystemArtifactStore{
		rootDir: rootDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// PutArtifact implements ArtifactStore.PutArtifact
func (s *FileSystemArtifactStore) PutArtifact(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	rel, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(s.rootDir, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := os.WriteFile(dest, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	return s.baseURL + "/" + rel, nil
}

// Root returns the directory artifacts are written to
func (s *FileSystemArtifactStore) Root() string {
	return s.rootDir
}

// cleanKey resolves key to a slash separated path that stays inside the root
func cleanKey(key string) (string, error) {
	clean := strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(key)), "/")
	if clean == "" {
		return "", fmt.Errorf("invalid artifact key: %q", key)
	}
	return clean, nil
}
