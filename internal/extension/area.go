package extension

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rpggio/genai-tracker/internal/repository"
)

// FileSuffix is appended to keys to form file names in an Area.
const FileSuffix = ".json"

// Area is a directory-backed key/value storage area. Each key is one file;
// writes are atomic so readers and watchers never see partial values.
type Area struct {
	dir string
	mu  sync.Mutex
}

// NewArea opens (and creates) the storage directory.
func NewArea(dir string) (*Area, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage area: %w", err)
	}
	return &Area{dir: dir}, nil
}

// Dir returns the storage directory.
func (a *Area) Dir() string { return a.dir }

// Path returns the file path for key.
func (a *Area) Path(key string) string {
	return filepath.Join(a.dir, key+FileSuffix)
}

// Get returns the value stored under key.
func (a *Area) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(a.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

// Put replaces the value stored under key.
func (a *Area) Put(_ context.Context, key string, value []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	tmp, err := os.CreateTemp(a.dir, "."+key+".tmp-*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := os.Rename(tmpName, a.Path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (a *Area) Delete(_ context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := os.Remove(a.Path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// KeyFromPath maps a file path in the area back to its key. Hidden and
// temporary files yield ok=false.
func KeyFromPath(path string) (key string, ok bool) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || !strings.HasSuffix(base, FileSuffix) {
		return "", false
	}
	return strings.TrimSuffix(base, FileSuffix), true
}
