package handler

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/driftlog/driftlog/core"
	"github.com/driftlog/driftlog/formatter"
)

// FileHandler appends formatted records to a file. Rotation and
// retention are external concerns: with Watch enabled the handler
// notices when a rotator has moved the file away and reopens the path.
type FileHandler struct {
	mu        sync.Mutex
	path      string
	formatter formatter.Formatter
	watch     bool

	file *os.File
	info fs.FileInfo
}

// FileConfig configures a FileHandler.
type FileConfig struct {
	// Path of the log file; parent directories are created.
	Path string
	// Formatter renders records (default: formatter.NewSimpleFormatter()).
	Formatter formatter.Formatter
	// Delay postpones opening the file until the first record.
	Delay bool
	// Watch reopens the path when the file identity changes underneath
	// the handler (external rotation).
	Watch bool
}

// NewFileHandler creates a file handler.
func NewFileHandler(cfg FileConfig) (*FileHandler, error) {
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewSimpleFormatter("")
	}
	h := &FileHandler{
		path:      cfg.Path,
		formatter: cfg.Formatter,
		watch:     cfg.Watch,
	}
	if !cfg.Delay {
		if err := h.openFile(); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Handle formats the record and appends it, plus a newline, to the file.
func (h *FileHandler) Handle(r *core.Record) error {
	msg, err := h.formatter.Format(r)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file == nil {
		if err := h.openFile(); err != nil {
			return err
		}
	}
	if h.watch {
		if err := h.reopenIfNeeded(); err != nil {
			return err
		}
	}
	_, err = h.file.Write(append(msg, '\n'))
	return err
}

// Close syncs and closes the file.
func (h *FileHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closeFile()
}

func (h *FileHandler) openFile() error {
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	h.file = f
	if h.watch {
		info, err := f.Stat()
		if err != nil {
			return err
		}
		h.info = info
	}
	return nil
}

func (h *FileHandler) closeFile() error {
	if h.file == nil {
		return nil
	}
	err := h.file.Sync()
	if cerr := h.file.Close(); err == nil {
		err = cerr
	}
	h.file = nil
	h.info = nil
	return err
}

// reopenIfNeeded compares the identity of the file at the handler's
// path with the open file and reopens when they diverge (the file was
// moved, removed or recreated).
func (h *FileHandler) reopenIfNeeded() error {
	current, err := os.Stat(h.path)
	if err != nil || h.info == nil || !os.SameFile(h.info, current) {
		if cerr := h.closeFile(); cerr != nil {
			return cerr
		}
		return h.openFile()
	}
	return nil
}
