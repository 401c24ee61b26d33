package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/trebuchet-org/catapult/internal/usecase"
)

// FileWriterAdapter handles file system operations for project setup
type FileWriterAdapter struct{}

// NewFileWriterAdapter creates a new file writer adapter
func NewFileWriterAdapter() *FileWriterAdapter {
	return &FileWriterAdapter{}
}

// WriteFile writes content to path, creating parent directories
func (f *FileWriterAdapter) WriteFile(ctx context.Context, path string, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

// FileExists checks if a file exists
func (f *FileWriterAdapter) FileExists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// EnsureDirectory ensures a directory exists
func (f *FileWriterAdapter) EnsureDirectory(ctx context.Context, path string) error {
	return os.MkdirAll(path, 0755)
}

var _ usecase.FileWriter = (*FileWriterAdapter)(nil)
