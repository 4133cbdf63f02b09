package logging

import (
	"fmt"
	"os"
	"path/filepath"

	amerrors "github.com/Aman-CERP/amanlog/internal/errors"
)

const (
	// CombinedLogName holds records of every level.
	CombinedLogName = "combined.log"
	// ErrorLogName holds error records only.
	ErrorLogName = "error.log"

	sweepLockName = ".sweep.lock"
)

// DefaultLogDir returns the default log directory (<cwd>/logs).
// Falls back to a relative "logs" if the working directory is unavailable.
func DefaultLogDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "logs"
	}
	return filepath.Join(wd, "logs")
}

// ResolveLogDir returns the absolute log directory: explicit if set,
// otherwise DefaultLogDir.
func ResolveLogDir(explicit string) (string, error) {
	dir := explicit
	if dir == "" {
		dir = DefaultLogDir()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", logDirError(dir, err)
	}
	return abs, nil
}

// EnsureLogDir creates the log directory if it doesn't exist.
func EnsureLogDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return logDirError(dir, err)
	}
	return nil
}

func logDirError(dir string, cause error) error {
	return amerrors.New(amerrors.ErrCodeLogDirUnavailable,
		fmt.Sprintf("cannot use log directory %s", dir), cause).
		WithDetail("dir", dir).
		WithSuggestion("Set LOG_DIR to a writable directory")
}

// LogSource selects which log files to view.
type LogSource string

const (
	// LogSourceCombined is the all-levels log (default).
	LogSourceCombined LogSource = "combined"
	// LogSourceError is the error-only log.
	LogSourceError LogSource = "error"
	// LogSourceAll combines both files.
	LogSourceAll LogSource = "all"
)

// ParseLogSource parses a string into a LogSource, defaulting to combined.
func ParseLogSource(s string) LogSource {
	switch s {
	case "error":
		return LogSourceError
	case "all":
		return LogSourceAll
	default:
		return LogSourceCombined
	}
}

// FindLogFiles returns the existing log files in dir for source.
// An explicit path takes precedence over dir and source.
func FindLogFiles(dir string, source LogSource, explicit string) ([]string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, fmt.Errorf("log file not found: %s", explicit)
		}
		return []string{explicit}, nil
	}

	var candidates []string
	switch source {
	case LogSourceCombined:
		candidates = []string{filepath.Join(dir, CombinedLogName)}
	case LogSourceError:
		candidates = []string{filepath.Join(dir, ErrorLogName)}
	case LogSourceAll:
		candidates = []string{
			filepath.Join(dir, CombinedLogName),
			filepath.Join(dir, ErrorLogName),
		}
	default:
		return nil, fmt.Errorf("unknown log source: %s (use: combined, error, all)", source)
	}

	var paths []string
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no log files found for source '%s'.\nChecked: %v", source, candidates)
	}
	return paths, nil
}
