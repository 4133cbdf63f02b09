package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	amerrors "github.com/Aman-CERP/amanlog/internal/errors"
)

// FileSink appends lines to a size-rotated file.
//
// Rotation is delegated to lumberjack: when the active file would exceed
// MaxSizeMB it is renamed to <name>-<timestamp>.<ext> and a fresh file is
// opened. At most MaxFiles rotated files are kept, oldest removed first.
type FileSink struct {
	name string
	min  Level
	path string

	mu     sync.Mutex
	w      *lumberjack.Logger
	closed bool
}

// NewFileSink creates a rotating file sink.
// The file is created immediately so an unwritable directory fails here
// rather than on the first write.
func NewFileSink(name, path string, min Level, maxSizeMB, maxFiles int) (*FileSink, error) {
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxSizeMB
	}
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	if name == "" {
		name = filepath.Base(path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, logDirError(filepath.Dir(path), err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, amerrors.New(amerrors.ErrCodeLogDirUnavailable,
			fmt.Sprintf("failed to open log file %s", path), err).
			WithDetail("path", path)
	}
	_ = f.Close()

	return &FileSink{
		name: name,
		min:  min,
		path: path,
		w: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxFiles,
			LocalTime:  true,
		},
	}, nil
}

func (s *FileSink) Name() string    { return s.name }
func (s *FileSink) MinLevel() Level { return s.min }
func (s *FileSink) Path() string    { return s.path }

// Write implements Sink.
func (s *FileSink) Write(_ Record, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errSinkClosed(s.name)
	}
	_, err := s.w.Write([]byte(line + "\n"))
	return err
}

// Rotate forces a rotation regardless of size.
func (s *FileSink) Rotate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errSinkClosed(s.name)
	}
	return s.w.Rotate()
}

// Close closes the current file. It is safe to call more than once.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.w.Close()
}

func errSinkClosed(name string) error {
	return amerrors.New(amerrors.ErrCodeFacilityDrained,
		fmt.Sprintf("sink %s is closed", name), nil)
}
