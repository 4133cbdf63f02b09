package logging

import (
	"io"
	"os"
	"sync"
)

// ConsoleSink writes lines to a terminal stream with level colors.
type ConsoleSink struct {
	name string
	min  Level

	mu     sync.Mutex
	out    io.Writer
	colors palette // nil when colors are off
	closed bool
}

// NewConsoleSink creates a console sink. A nil out means stderr, which keeps
// stdout free for program output.
func NewConsoleSink(name string, out io.Writer, min Level, mode ColorMode) *ConsoleSink {
	if out == nil {
		out = os.Stderr
	}
	if name == "" {
		name = "console"
	}

	s := &ConsoleSink{name: name, min: min, out: out}
	if ColorEnabled(out, mode) {
		s.colors = newPalette(out)
	}
	return s
}

func (s *ConsoleSink) Name() string    { return s.name }
func (s *ConsoleSink) MinLevel() Level { return s.min }
func (s *ConsoleSink) Path() string    { return "" }

// Colored reports whether the sink emits ANSI colors.
func (s *ConsoleSink) Colored() bool { return s.colors != nil }

// Write implements Sink.
func (s *ConsoleSink) Write(r Record, line string) error {
	if s.colors != nil {
		line = formatLine(r, s.colors.paint)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errSinkClosed(s.name)
	}
	_, err := io.WriteString(s.out, line+"\n")
	return err
}

// Close stops the sink. The underlying stream is flushed if it buffers but
// never closed; it belongs to the process.
func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if f, ok := s.out.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}
