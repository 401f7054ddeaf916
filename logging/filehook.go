package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// DatedFilePrefix is the file name prefix of the daily log files
const DatedFilePrefix = "guildkeeper-"

// DatedFileName returns the daily log file name for t
func DatedFileName(t time.Time) string {
	return DatedFilePrefix + t.Format("2006-01-02") + ".log"
}

// FileHook appends formatted entries to a log file. A dated hook switches to
// a new file when the day changes.
type FileHook struct {
	dir       string
	name      string // Fixed file name; empty for a dated hook
	levels    []log.Level
	formatter log.Formatter
	now       func() time.Time

	mu      sync.Mutex
	file    *os.File
	current string
}

// NewDatedFileHook writes every entry at or above minLevel to
// <dir>/guildkeeper-YYYY-MM-DD.log
func NewDatedFileHook(dir string, minLevel log.Level) (*FileHook, error) {
	return newFileHook(dir, "", minLevel)
}

// NewErrorFileHook writes error and more severe entries to <dir>/error.log
func NewErrorFileHook(dir string) (*FileHook, error) {
	return newFileHook(dir, "error.log", log.ErrorLevel)
}

func newFileHook(dir, name string, minLevel log.Level) (*FileHook, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	hook := &FileHook{
		dir:       dir,
		name:      name,
		levels:    levelsUpTo(minLevel),
		formatter: &log.TextFormatter{DisableColors: true, FullTimestamp: true, TimestampFormat: time.RFC3339},
		now:       time.Now,
	}

	hook.mu.Lock()
	defer hook.mu.Unlock()
	if err := hook.rotate(); err != nil {
		return nil, err
	}
	return hook, nil
}

// Levels implements logrus.Hook
func (h *FileHook) Levels() []log.Level {
	return h.levels
}

// Fire implements logrus.Hook
func (h *FileHook) Fire(entry *log.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to format log entry: %v\n", err)
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.rotate(); err != nil {
		fmt.Fprintf(os.Stderr, "unable to open log file: %v\n", err)
		return err
	}

	if _, err := h.file.Write(line); err != nil {
		fmt.Fprintf(os.Stderr, "unable to write log file: %v\n", err)
		return err
	}
	return nil
}

// Path returns the file currently written to
func (h *FileHook) Path() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return filepath.Join(h.dir, h.current)
}

// Close closes the underlying file
func (h *FileHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.file == nil {
		return nil
	}
	err := h.file.Close()
	h.file = nil
	h.current = ""
	return err
}

// rotate opens the target file when it differs from the open one. Callers
// hold h.mu.
func (h *FileHook) rotate() error {
	target := h.name
	if target == "" {
		target = DatedFileName(h.now())
	}
	if h.file != nil && target == h.current {
		return nil
	}

	file, err := os.OpenFile(filepath.Join(h.dir, target), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", target, err)
	}

	if h.file != nil {
		_ = h.file.Close()
	}
	h.file = file
	h.current = target
	return nil
}

// levelsUpTo returns every level at least as severe as minLevel
func levelsUpTo(minLevel log.Level) []log.Level {
	var levels []log.Level
	for _, level := range log.AllLevels {
		if level <= minLevel {
			levels = append(levels, level)
		}
	}
	return levels
}
