package logging

import (
	"fmt"
	"log/slog"
	"strings"

	amerrors "github.com/Aman-CERP/amanlog/internal/errors"
)

// Level is the severity of a record. Higher values are more severe.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the lower-case level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int32(l))
	}
}

// ParseLevel converts a level name into a Level.
// Accepts "warning" as an alias for "warn". Matching is case-insensitive.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, amerrors.New(amerrors.ErrCodeInvalidLevel,
			fmt.Sprintf("unknown log level %q", s), nil).
			WithSuggestion("Use one of: debug, info, warn, error")
	}
}

// LevelFromString converts a level name into a Level, defaulting to info.
func LevelFromString(s string) Level {
	l, _ := ParseLevel(s)
	return l
}

// levelFromSlog folds an arbitrary slog level into the four facility levels.
func levelFromSlog(l slog.Level) Level {
	switch {
	case l < slog.LevelInfo:
		return LevelDebug
	case l < slog.LevelWarn:
		return LevelInfo
	case l < slog.LevelError:
		return LevelWarn
	default:
		return LevelError
	}
}
