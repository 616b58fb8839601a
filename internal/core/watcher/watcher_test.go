// # internal/core/watcher/watcher_test.go
package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewWatcher_RejectsNilCallback(t *testing.T) {
	w, err := NewWatcher(100*time.Millisecond, nil, nil)
	if err == nil {
		t.Fatal("expected error for nil callback")
	}
	if !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("expected os.ErrInvalid, got %v", err)
	}
	if w != nil {
		t.Fatal("expected nil watcher when callback is invalid")
	}
}

func TestNewWatcher_RejectsBadPattern(t *testing.T) {
	if _, err := NewWatcher(time.Millisecond, []string{"["}, func([]string) {}); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestWatcher(t *testing.T) {
	tmpDir := t.TempDir()

	changedFiles := make(chan []string, 4)
	w, err := NewWatcher(100*time.Millisecond, []string{"*.json", "*.yaml"}, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{tmpDir}); err != nil {
		t.Fatal(err)
	}

	graphFile := filepath.Join(tmpDir, "graph.json")
	os.WriteFile(graphFile, []byte(`{"nodes":[]}`), 0o644)

	select {
	case paths := <-changedFiles:
		found := false
		for _, p := range paths {
			if p == graphFile {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected to find %s in changed files %v", graphFile, paths)
		}
	case <-time.After(2 * time.Second):
		t.Error("Timed out waiting for file change event")
	}

	// Files outside the patterns never fire.
	os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("ignored"), 0o644)

	select {
	case paths := <-changedFiles:
		for _, p := range paths {
			if filepath.Base(p) == "notes.txt" {
				t.Error("Unmatched file triggered event")
			}
		}
	case <-time.After(500 * time.Millisecond):
		// Expected
	}
}

func TestForFile_DebouncesBursts(t *testing.T) {
	tmpDir := t.TempDir()
	doc := filepath.Join(tmpDir, "graph.yaml")
	if err := os.WriteFile(doc, []byte("nodes: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan []string, 4)
	w, err := ForFile(doc, 200*time.Millisecond, func(paths []string) { changed <- paths })
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	for i := 0; i < 5; i++ {
		os.WriteFile(doc, []byte("nodes: []\n"), 0o644)
		time.Sleep(10 * time.Millisecond)
	}
	os.WriteFile(filepath.Join(tmpDir, "other.yaml"), []byte("x: 1\n"), 0o644)

	select {
	case paths := <-changed:
		if len(paths) != 1 || paths[0] != doc {
			t.Fatalf("expected one debounced change for %s, got %v", doc, paths)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for debounced change")
	}
}
