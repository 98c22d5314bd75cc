package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestRotatingWriter_RotatesPastMaxSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	w, err := NewRotatingWriter(path, 10, 2)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer w.Close()

	if _, err := w.Write([]byte("first-line\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := w.Write([]byte("second-line\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	first, err := os.ReadFile(path + ".2")
	if err != nil {
		t.Fatalf("expected second backup: %v", err)
	}
	if !bytes.Equal(first, []byte("first-line\n")) {
		t.Fatalf("unexpected oldest backup %q", first)
	}
	second, err := os.ReadFile(path + ".1")
	if err != nil {
		t.Fatalf("expected first backup: %v", err)
	}
	if !bytes.Equal(second, []byte("second-line\n")) {
		t.Fatalf("unexpected newest backup %q", second)
	}
	current, _ := os.ReadFile(path)
	if len(current) != 0 {
		t.Fatalf("expected fresh log file, got %q", current)
	}
}

func TestRotatingWriter_TruncatesOversizedFileOnOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(path, bytes.Repeat([]byte("x"), 64), 0644); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	w, err := NewRotatingWriter(path, 32, 1)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer w.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Size() != 0 {
		t.Fatalf("expected truncated file, got %d bytes", info.Size())
	}
}
