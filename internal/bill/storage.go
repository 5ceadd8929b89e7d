package bill

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Storage defines the interface for receipt file storage
type Storage interface {
	// Save saves a file and returns its storage key
	Save(ctx context.Context, key string, data []byte) (string, error)

	// Get retrieves a file by key
	Get(ctx context.Context, key string) ([]byte, error)
}

// LocalStorage implements the Storage interface using local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
	}, nil
}

// Save saves a file to local storage
func (l *LocalStorage) Save(_ context.Context, key string, data []byte) (string, error) {
	path := filepath.Join(l.basePath, filepath.Base(key))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return filepath.Base(key), nil
}

// Get retrieves a file from local storage
func (l *LocalStorage) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.basePath, filepath.Base(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, MarkAs(fmt.Errorf("reading file: %w", err), ErrNotFound)
		}
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}
