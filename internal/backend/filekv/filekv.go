// Package filekv implements storage.KV with one file per key in a directory.
package filekv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"taskflow/internal/storage"
)

// FileExt is appended to every key to form its filename.
const FileExt = ".json"

var validKey = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Store keeps each slot in <dir>/<key>.json.
type Store struct {
	dir string
}

// New creates a Store rooted at dir. The directory is created with mode 0700
// on first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the root directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("invalid key: %q", key)
	}
	return filepath.Join(s.dir, key+FileExt), nil
}

// Get implements storage.KV.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", storage.ErrNotFound
		}
		return "", err
	}
	return string(data), nil
}

// Set implements storage.KV. The write is atomic: data goes to a temp file
// in the same directory which is then renamed over the target.
func (s *Store) Set(ctx context.Context, key, value string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", key, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}

// Delete implements storage.KV.
func (s *Store) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
