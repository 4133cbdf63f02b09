package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	amerrors "github.com/Aman-CERP/amanlog/internal/errors"
)

// Defaults for the file sinks.
const (
	DefaultMaxSizeMB = 10
	DefaultMaxFiles  = 5
)

// Config contains facility configuration.
type Config struct {
	// Dir is the log directory. Empty means DefaultLogDir().
	Dir string
	// Level is the initial global minimum level.
	Level Level
	// MaxSizeMB is the size in MB before a file sink rotates (default: 10).
	MaxSizeMB int
	// MaxFiles is the number of rotated files kept per file sink (default: 5).
	MaxFiles int
	// Console enables the console sink.
	Console bool
	// ConsoleOutput is the console stream (default: stderr).
	ConsoleOutput io.Writer
	// Color controls console colors (default: auto).
	Color ColorMode
	// Diagnostics receives one line per distinct sink failure (default: stderr).
	// Use io.Discard to silence.
	Diagnostics io.Writer
	// Now is the clock used for record timestamps and retention cutoffs.
	Now func() time.Time
}

// DefaultConfig returns the standard facility configuration: ./logs, info
// level, console plus combined and error files rotating at 10 MB with 5
// backups.
func DefaultConfig() Config {
	return Config{
		Dir:       DefaultLogDir(),
		Level:     LevelInfo,
		MaxSizeMB: DefaultMaxSizeMB,
		MaxFiles:  DefaultMaxFiles,
		Console:   true,
		Color:     ColorAuto,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = DefaultMaxSizeMB
	}
	if c.MaxFiles <= 0 {
		c.MaxFiles = DefaultMaxFiles
	}
	if c.Color == "" {
		c.Color = ColorAuto
	}
	if c.Diagnostics == nil {
		c.Diagnostics = os.Stderr
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// SinkConfigs returns the standard sink set for c: console (all levels,
// when enabled), combined.log (all levels) and error.log (errors only).
func (c Config) SinkConfigs(dir string) []SinkConfig {
	var sinks []SinkConfig
	if c.Console {
		sinks = append(sinks, SinkConfig{
			Name:        "console",
			Destination: DestinationConsole,
			MinLevel:    LevelDebug,
			Output:      c.ConsoleOutput,
			Color:       c.Color,
		})
	}
	sinks = append(sinks,
		SinkConfig{
			Name:        "combined",
			Destination: DestinationFile,
			MinLevel:    LevelDebug,
			FilePath:    filepath.Join(dir, CombinedLogName),
			MaxSizeMB:   c.MaxSizeMB,
			MaxFiles:    c.MaxFiles,
		},
		SinkConfig{
			Name:        "error",
			Destination: DestinationFile,
			MinLevel:    LevelError,
			FilePath:    filepath.Join(dir, ErrorLogName),
			MaxSizeMB:   c.MaxSizeMB,
			MaxFiles:    c.MaxFiles,
		},
	)
	return sinks
}

// sinkState pairs a sink with its breaker and counters.
type sinkState struct {
	sink    Sink
	breaker *amerrors.CircuitBreaker

	written atomic.Uint64
	failed  atomic.Uint64
	dropped atomic.Uint64
}

// Facility is the process-wide logger. Construct one at startup and pass it
// to the collaborators that log.
type Facility struct {
	dir   string
	level atomic.Int32
	now   func() time.Time

	// mu serializes fan-out so every sink sees records in submission order,
	// and lets Flush wait for in-flight writes.
	mu    sync.Mutex
	sinks []*sinkState

	dropped  atomic.Uint64
	failures *failureLog

	state     atomic.Int32
	drainOnce sync.Once
	drainDone chan struct{}
	drainErr  error
}

// New creates a facility with the standard sink set.
// The log directory is created eagerly; failure is a fatal configuration
// error (ERR_102_LOG_DIR_UNAVAILABLE).
func New(cfg Config) (*Facility, error) {
	cfg = cfg.withDefaults()

	dir, err := ResolveLogDir(cfg.Dir)
	if err != nil {
		return nil, err
	}
	if err := EnsureLogDir(dir); err != nil {
		return nil, err
	}

	var sinks []Sink
	for _, sc := range cfg.SinkConfigs(dir) {
		s, err := NewSink(sc)
		if err != nil {
			for _, opened := range sinks {
				_ = opened.Close()
			}
			return nil, err
		}
		sinks = append(sinks, s)
	}

	return newFacility(dir, cfg, sinks), nil
}

// NewWithSinks creates a facility over a caller-supplied sink set.
// cfg.Dir is still resolved and created for LogDirectory and CleanOldLogs.
func NewWithSinks(cfg Config, sinks ...Sink) (*Facility, error) {
	cfg = cfg.withDefaults()

	dir, err := ResolveLogDir(cfg.Dir)
	if err != nil {
		return nil, err
	}
	if err := EnsureLogDir(dir); err != nil {
		return nil, err
	}
	return newFacility(dir, cfg, sinks), nil
}

func newFacility(dir string, cfg Config, sinks []Sink) *Facility {
	f := &Facility{
		dir:       dir,
		now:       cfg.Now,
		failures:  newFailureLog(cfg.Diagnostics),
		drainDone: make(chan struct{}),
	}
	f.level.Store(int32(cfg.Level))

	for _, s := range sinks {
		f.sinks = append(f.sinks, &sinkState{
			sink:    s,
			breaker: amerrors.NewCircuitBreaker(s.Name()),
		})
	}
	return f
}

// LogDirectory returns the absolute path of the log directory.
func (f *Facility) LogDirectory() string {
	return f.dir
}

// Level returns the global minimum level.
func (f *Facility) Level() Level {
	return Level(f.level.Load())
}

// SetLevel replaces the global minimum level and announces the change
// through the facility itself. Concurrent calls: last writer wins.
func (f *Facility) SetLevel(level Level) {
	prev := Level(f.level.Swap(int32(level)))
	f.Info("logging", fmt.Sprintf("Log level changed to %s", level),
		Metadata{"previous": prev.String()})
}

// Enabled reports whether a record at level passes the global filter.
func (f *Facility) Enabled(level Level) bool {
	return level >= f.Level()
}

// Debug logs at debug level.
func (f *Facility) Debug(category, message string, meta ...Metadata) {
	f.Log(LevelDebug, category, message, meta...)
}

// Info logs at info level.
func (f *Facility) Info(category, message string, meta ...Metadata) {
	f.Log(LevelInfo, category, message, meta...)
}

// Warn logs at warn level.
func (f *Facility) Warn(category, message string, meta ...Metadata) {
	f.Log(LevelWarn, category, message, meta...)
}

// Error logs at error level.
func (f *Facility) Error(category, message string, meta ...Metadata) {
	f.Log(LevelError, category, message, meta...)
}

// Log writes a record to every sink that accepts level. It never fails:
// sink errors are counted and reported through Health.
// Multiple metadata maps are merged, later keys winning.
func (f *Facility) Log(level Level, category, message string, meta ...Metadata) {
	if !f.Enabled(level) {
		return
	}
	f.dispatch(Record{
		Time:     f.now(),
		Level:    level,
		Category: category,
		Message:  message,
		Metadata: mergeMetadata(meta),
	})
}

func (f *Facility) dispatch(r Record) {
	if !f.Enabled(r.Level) {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if DrainState(f.state.Load()) != DrainIdle {
		f.dropped.Add(1)
		return
	}

	line := FormatLine(r)
	for _, s := range f.sinks {
		if r.Level < s.sink.MinLevel() {
			continue
		}

		err := s.breaker.Execute(func() error {
			return s.sink.Write(r, line)
		})
		switch {
		case err == nil:
			s.written.Add(1)
		case errors.Is(err, amerrors.ErrCircuitOpen):
			s.dropped.Add(1)
		default:
			s.failed.Add(1)
			f.failures.record(s.sink.Name(), err)
		}
	}
}

// openPaths returns the files currently held open by file sinks.
func (f *Facility) openPaths() []string {
	var paths []string
	for _, s := range f.sinks {
		if p := s.sink.Path(); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func mergeMetadata(meta []Metadata) Metadata {
	switch len(meta) {
	case 0:
		return nil
	case 1:
		return meta[0]
	}

	merged := Metadata{}
	for _, m := range meta {
		for k, v := range m {
			merged[k] = v
		}
	}
	return merged
}
