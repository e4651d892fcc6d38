package source

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"
)

// ErrNotFound indicates a configuration part file does not exist.
var ErrNotFound = errors.New("configuration part not found")

// Source provides the text of configuration parts.
type Source interface {
	Load(path string) (string, error)
	Changed() (bool, error)
}

// FileLoader reads part files and remembers a content fingerprint per path
// so callers can detect edits. Access is guarded by a RWMutex.
type FileLoader struct {
	mu           sync.RWMutex
	fingerprints map[string][sha256.Size]byte
}

// NewFileLoader returns a loader with no tracked files.
func NewFileLoader() *FileLoader {
	return &FileLoader{
		fingerprints: make(map[string][sha256.Size]byte),
	}
}

// Load returns the content of path and starts tracking it.
func (l *FileLoader) Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	l.mu.Lock()
	l.fingerprints[path] = sha256.Sum256(data)
	l.mu.Unlock()

	return string(data), nil
}

// Changed reports whether any tracked file differs from its content at the
// last Load. A tracked file that disappeared counts as changed.
func (l *FileLoader) Changed() (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for path, sum := range l.fingerprints {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return true, nil
			}
			return false, fmt.Errorf("read %s: %w", path, err)
		}
		if sha256.Sum256(data) != sum {
			return true, nil
		}
	}
	return false, nil
}

// Paths returns the tracked paths in sorted order.
func (l *FileLoader) Paths() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]string, 0, len(l.fingerprints))
	for path := range l.fingerprints {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}
