package logging

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the fixed-width timestamp prefix of every line.
const TimestampLayout = "2006-01-02 15:04:05.000"

const (
	levelWidth    = 7
	categoryWidth = 20
)

// Metadata is optional structured context attached to a record.
type Metadata map[string]any

// Record is a single log event. It is built per call and discarded once
// formatted.
type Record struct {
	Time     time.Time
	Level    Level
	Category string
	Message  string
	Metadata Metadata
}

// FormatLine renders r in the canonical line format:
//
//	2024-05-01 12:00:00.000 INFO    [http]               request served
//	{
//	  "requestId": "abc"
//	}
//
// The metadata block is only appended when metadata is non-empty. Padding
// never truncates long levels or categories.
func FormatLine(r Record) string {
	return formatLine(r, nil)
}

// formatLine is FormatLine with an optional level decorator. The decorator
// receives the already padded level so colors never change column widths.
func formatLine(r Record, paint func(Level, string) string) string {
	level := padRight(strings.ToUpper(r.Level.String()), levelWidth)
	if paint != nil {
		level = paint(r.Level, level)
	}

	var sb strings.Builder
	sb.WriteString(r.Time.Format(TimestampLayout))
	sb.WriteByte(' ')
	sb.WriteString(level)
	sb.WriteByte(' ')
	sb.WriteString(padRight("["+r.Category+"]", categoryWidth))
	sb.WriteByte(' ')
	sb.WriteString(r.Message)

	if len(r.Metadata) > 0 {
		sb.WriteByte('\n')
		sb.WriteString(renderMetadata(r.Metadata))
	}

	return sb.String()
}

func padRight(s string, width int) string {
	return fmt.Sprintf("%-*s", width, s)
}
