package logging

import (
	"fmt"
	"io"
)

// Destination is where a sink writes.
type Destination string

const (
	DestinationConsole Destination = "console"
	DestinationFile    Destination = "file"
)

// Sink receives formatted lines for records at or above its minimum level.
// Implementations must be safe for concurrent use.
type Sink interface {
	// Name identifies the sink in health reports and diagnostics.
	Name() string
	// MinLevel is the lowest level this sink accepts.
	MinLevel() Level
	// Path is the file currently written, or "" for non-file sinks.
	Path() string
	// Write appends one record. line is FormatLine(r) without a newline.
	Write(r Record, line string) error
	// Close flushes and releases the destination. Later writes fail.
	Close() error
}

// SinkConfig describes one sink. It is fixed at startup.
type SinkConfig struct {
	Name        string
	Destination Destination
	MinLevel    Level

	// File sinks only.
	FilePath  string
	MaxSizeMB int
	MaxFiles  int

	// Console sinks only.
	Output io.Writer
	Color  ColorMode
}

// NewSink builds a sink from its configuration.
func NewSink(cfg SinkConfig) (Sink, error) {
	switch cfg.Destination {
	case DestinationConsole:
		return NewConsoleSink(cfg.Name, cfg.Output, cfg.MinLevel, cfg.Color), nil
	case DestinationFile:
		return NewFileSink(cfg.Name, cfg.FilePath, cfg.MinLevel, cfg.MaxSizeMB, cfg.MaxFiles)
	default:
		return nil, fmt.Errorf("unknown sink destination %q", cfg.Destination)
	}
}
