package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestNewFileSystemArtifactStore(t *testing.T) {
	tmpDir := t.TempDir()
	rootDir := filepath.Join(tmpDir, "reports")

	store, err := NewFileSystemArtifactStore(rootDir, "http://localhost:8080/artifacts/")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if store.Root() != rootDir {
		t.Errorf("Expected root %s, got %s", rootDir, store.Root())
	}
	if _, err := os.Stat(rootDir); os.IsNotExist(err) {
		t.Error("Root directory should have been created")
	}
}

func TestFileSystemArtifactStore_PutArtifact(t *testing.T) {
	store, err := NewFileSystemArtifactStore(t.TempDir(), "http://localhost:8080/artifacts/")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	url, err := store.PutArtifact(context.Background(), "users/7/report.html", []byte("<html></html>"), "text/html")
	if err != nil {
		t.Fatalf("PutArtifact failed: %v", err)
	}
	if url != "http://localhost:8080/artifacts/users/7/report.html" {
		t.Errorf("unexpected url: %s", url)
	}

	data, err := os.ReadFile(filepath.Join(store.Root(), "users", "7", "report.html"))
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	if string(data) != "<html></html>" {
		t.Errorf("unexpected content: %s", data)
	}
}

func TestFileSystemArtifactStore_KeyCannotEscapeRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileSystemArtifactStore(filepath.Join(root, "reports"), "http://x")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if _, err := store.PutArtifact(context.Background(), "../../escape.html", []byte("x"), "text/html"); err != nil {
		t.Fatalf("PutArtifact failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "escape.html")); err == nil {
		t.Error("artifact escaped the root directory")
	}

	if _, err := store.PutArtifact(context.Background(), "", []byte("x"), "text/html"); err == nil {
		t.Error("expected error for empty key")
	}
}
