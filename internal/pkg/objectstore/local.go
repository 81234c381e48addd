package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const localScheme = "local://"

// LocalStore writes objects below a root directory on disk.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &LocalStore{root: abs}, nil
}

func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	full, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}

	dst, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create object: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	return localScheme + key, nil
}

func (s *LocalStore) Get(ctx context.Context, address string) ([]byte, error) {
	if !strings.HasPrefix(address, localScheme) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}
	full, err := s.resolve(strings.TrimPrefix(address, localScheme))
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

func (s *LocalStore) resolve(key string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(key))
	if full != s.root && !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: key escapes storage root", ErrInvalidAddress)
	}
	return full, nil
}
