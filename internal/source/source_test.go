package source

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadTracksFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := filepath.Join(dir, "base.yaml")
	site := filepath.Join(dir, "site.yaml")
	writeFile(t, base, "a: 1\n")
	writeFile(t, site, "a: 2\n")

	loader := NewFileLoader()
	for _, path := range []string{site, base} {
		if _, err := loader.Load(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got, err := loader.Load(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "a: 1\n" {
		t.Fatalf("unexpected content %q", got)
	}
	if want := []string{base, site}; !slices.Equal(loader.Paths(), want) {
		t.Fatalf("expected tracked paths %v, got %v", want, loader.Paths())
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewFileLoader().Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestChanged(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "base.yaml")
	writeFile(t, path, "a: 1\n")

	loader := NewFileLoader()
	if changed, err := loader.Changed(); err != nil || changed {
		t.Fatalf("expected no change without tracked files, got %v, %v", changed, err)
	}
	if _, err := loader.Load(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if changed, err := loader.Changed(); err != nil || changed {
		t.Fatalf("expected no change, got %v, %v", changed, err)
	}

	// same content rewritten is not a change
	writeFile(t, path, "a: 1\n")
	if changed, err := loader.Changed(); err != nil || changed {
		t.Fatalf("expected identical rewrite to be ignored, got %v, %v", changed, err)
	}

	writeFile(t, path, "a: 2\n")
	if changed, err := loader.Changed(); err != nil || !changed {
		t.Fatalf("expected change after edit, got %v, %v", changed, err)
	}

	if _, err := loader.Load(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if changed, err := loader.Changed(); err != nil || !changed {
		t.Fatalf("expected removal to count as change, got %v, %v", changed, err)
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "base.yaml")
	writeFile(t, path, "a: 1\n")

	loader := NewFileLoader()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := loader.Load(path); err != nil {
				t.Errorf("load: %v", err)
			}
			if _, err := loader.Changed(); err != nil {
				t.Errorf("changed: %v", err)
			}
		}()
	}
	wg.Wait()
}
