package handler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/driftlog/driftlog/core"
)

func TestFileAppendsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h, err := NewFileHandler(FileConfig{Path: path})
	if err != nil {
		t.Fatalf("new file handler: %v", err)
	}

	h.Handle(rec(core.InfoLevel, "first"))
	h.Handle(rec(core.InfoLevel, "second"))
	if err := h.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), data)
	}
}

func TestFileCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "app.log")
	h, err := NewFileHandler(FileConfig{Path: path})
	if err != nil {
		t.Fatalf("new file handler: %v", err)
	}
	defer h.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestFileDelayPostponesOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h, err := NewFileHandler(FileConfig{Path: path, Delay: true})
	if err != nil {
		t.Fatalf("new file handler: %v", err)
	}
	defer h.Close()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("delayed handler must not create the file up front")
	}

	h.Handle(rec(core.InfoLevel, "now it exists"))
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not created on first record: %v", err)
	}
}

func TestFileWatchReopensAfterRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	h, err := NewFileHandler(FileConfig{Path: path, Watch: true})
	if err != nil {
		t.Fatalf("new file handler: %v", err)
	}
	defer h.Close()

	h.Handle(rec(core.InfoLevel, "before rotation"))

	// Simulate an external rotator.
	if err := os.Rename(path, filepath.Join(dir, "app.log.1")); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	h.Handle(rec(core.InfoLevel, "after rotation"))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("rotated path not recreated: %v", err)
	}
	if !strings.Contains(string(data), "after rotation") {
		t.Errorf("post-rotation record missing: %q", data)
	}
	if strings.Contains(string(data), "before rotation") {
		t.Error("handler kept writing to the rotated file")
	}
}

func TestFileAppendAcrossHandlers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	for _, msg := range []string{"run one", "run two"} {
		h, err := NewFileHandler(FileConfig{Path: path})
		if err != nil {
			t.Fatalf("new file handler: %v", err)
		}
		h.Handle(rec(core.InfoLevel, msg))
		h.Close()
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "run one") || !strings.Contains(string(data), "run two") {
		t.Errorf("append mode lost history: %q", data)
	}
}
