package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// headerPattern matches the first line of a formatted record. The category
// is padded, so its closing bracket is always followed by a space or the end
// of the line; a "]" inside the category is not.
var headerPattern = regexp.MustCompile(
	`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}) ([A-Z]+) +\[(.*?)\](?: +(.*))?$`)

// Entry is a record parsed back from a log file.
type Entry struct {
	Time     time.Time
	Level    Level
	Category string
	Message  string
	Metadata Metadata
	Source   string // log file the entry came from: "combined", "error", ...
	Raw      string // original text, including any metadata block
	IsValid  bool   // whether the header parsed
}

// ParseEntries splits canonical log text into entries. Lines that follow a
// header and are not themselves headers continue its message, up to the
// metadata block: a line holding only "{" from which the rest parses as a
// JSON object. Numbers in metadata decode as json.Number so large integers
// survive.
func ParseEntries(r io.Reader) ([]Entry, error) {
	var p entryParser
	var entries []Entry
	emit := func(e Entry) { entries = append(entries, e) }

	scanner := bufio.NewScanner(r)
	const maxCapacity = 1024 * 1024 // 1MB
	scanner.Buffer(make([]byte, maxCapacity), maxCapacity)

	for scanner.Scan() {
		p.feed(scanner.Text(), emit)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	p.flush(emit)
	return entries, nil
}

// entryParser accumulates lines into entries.
type entryParser struct {
	pending *Entry
	block   []string
}

func (p *entryParser) feed(line string, emit func(Entry)) {
	if m := headerPattern.FindStringSubmatch(line); m != nil {
		p.flush(emit)
		e := Entry{
			Level:    LevelFromString(m[2]),
			Category: m[3],
			Message:  m[4],
			Raw:      line,
			IsValid:  true,
		}
		if t, err := time.ParseInLocation(TimestampLayout, m[1], time.Local); err == nil {
			e.Time = t
		}
		p.pending = &e
		return
	}

	if p.pending == nil {
		emit(Entry{Raw: line})
		return
	}
	p.block = append(p.block, line)
}

func (p *entryParser) flush(emit func(Entry)) {
	if p.pending == nil {
		return
	}
	e := *p.pending
	if len(p.block) > 0 {
		e.Raw += "\n" + strings.Join(p.block, "\n")

		rest := p.block
		for i, line := range p.block {
			if line != "{" {
				continue
			}
			if meta, ok := decodeMetadata(strings.Join(p.block[i:], "\n")); ok {
				e.Metadata = meta
				rest = p.block[:i]
				break
			}
		}
		if len(rest) > 0 {
			e.Message += "\n" + strings.Join(rest, "\n")
		}
	}
	p.pending = nil
	p.block = nil
	emit(e)
}

// decodeMetadata parses a complete metadata block.
func decodeMetadata(text string) (Metadata, bool) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var meta Metadata
	if err := dec.Decode(&meta); err != nil {
		return nil, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	return meta, true
}

// ViewerConfig configures the log viewer.
type ViewerConfig struct {
	Level      string // minimum level (debug, info, warn, error)
	Category   string // exact category, case-insensitive
	NoColor    bool
	ShowSource bool // prefix entries with their source file
}

// Viewer tails, follows and prints log files written by a Facility.
type Viewer struct {
	config ViewerConfig
	out    io.Writer
	colors palette
	poll   time.Duration
}

// NewViewer creates a new log viewer.
func NewViewer(cfg ViewerConfig, out io.Writer) *Viewer {
	v := &Viewer{config: cfg, out: out, poll: 250 * time.Millisecond}
	if !cfg.NoColor {
		v.colors = newPalette(out)
	}
	return v
}

// Tail returns the last n matching entries of a log file.
func (v *Viewer) Tail(path string, n int) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	all, err := ParseEntries(file)
	if err != nil {
		return nil, err
	}

	source := sourceFromPath(path)
	var entries []Entry
	for _, e := range all {
		e.Source = source
		if v.matchesFilter(e) {
			entries = append(entries, e)
		}
	}
	return lastN(entries, n), nil
}

// TailMultiple tails several files and merges them by timestamp.
// Files that can't be read are skipped.
func (v *Viewer) TailMultiple(paths []string, n int) ([]Entry, error) {
	var all []Entry
	for _, path := range paths {
		entries, err := v.Tail(path, n)
		if err != nil {
			continue
		}
		all = append(all, entries...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Time.Before(all[j].Time)
	})
	return lastN(all, n), nil
}

func lastN(entries []Entry, n int) []Entry {
	if n > 0 && len(entries) > n {
		return entries[len(entries)-n:]
	}
	return entries
}

// Follow streams entries appended to path until ctx is cancelled.
// It survives rotation: when the file is recreated it is reopened from the
// start. Change notification uses fsnotify, falling back to polling.
func (v *Viewer) Follow(ctx context.Context, path string, entries chan<- Entry) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	t := &tailer{v: v, path: path, source: sourceFromPath(path), file: file}
	t.reader = bufio.NewReader(file)

	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		defer func() { _ = watcher.Close() }()
		if err := watcher.Add(filepath.Dir(path)); err == nil {
			events = watcher.Events
			watchErrs = watcher.Errors
		}
	}

	// With fsnotify the ticker only catches missed events.
	interval := v.poll
	if events != nil {
		interval = 4 * v.poll
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				t.reopen()
			}
		case _, ok := <-watchErrs:
			// Overflows and similar; the ticker picks up what was missed.
			if !ok {
				watchErrs = nil
			}
			continue
		case <-ticker.C:
			t.checkRotated()
		}
		if !t.drain(ctx, entries) {
			return nil
		}
	}
}

// tailer reads complete lines appended to a followed file.
type tailer struct {
	v       *Viewer
	path    string
	source  string
	file    *os.File
	reader  *bufio.Reader
	partial string
	parser  entryParser
}

// reopen switches to a recreated file, reading it from the start.
func (t *tailer) reopen() {
	f, err := os.Open(t.path)
	if err != nil {
		return
	}
	_ = t.file.Close()
	t.file = f
	t.reader = bufio.NewReader(f)
	t.partial = ""
}

// checkRotated reopens when the path now names a different file.
func (t *tailer) checkRotated() {
	current, err := os.Stat(t.path)
	if err != nil {
		return
	}
	open, err := t.file.Stat()
	if err != nil || !os.SameFile(current, open) {
		t.reopen()
	}
}

// drain forwards every complete entry available. Each record is written by
// a single Write, so once the data runs out the last entry is complete.
// Returns false if ctx ended while sending.
func (t *tailer) drain(ctx context.Context, entries chan<- Entry) bool {
	var batch []Entry
	emit := func(e Entry) {
		e.Source = t.source
		if t.v.matchesFilter(e) {
			batch = append(batch, e)
		}
	}

	for {
		line, err := t.reader.ReadString('\n')
		if err != nil {
			t.partial += line
			break
		}
		line = strings.TrimSuffix(t.partial+line, "\n")
		t.partial = ""
		if line == "" {
			continue
		}
		t.parser.feed(line, emit)
	}
	if t.partial == "" {
		t.parser.flush(emit)
	}

	for _, e := range batch {
		select {
		case entries <- e:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

// sourceFromPath names the log stream a file belongs to, rotated backups
// included ("combined-2024-05-01T10-00-00.000.log" is "combined").
func sourceFromPath(path string) string {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "combined"):
		return "combined"
	case strings.HasPrefix(base, "error"):
		return "error"
	default:
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
}

// FormatEntry formats an entry for display, recoloring the level.
func (v *Viewer) FormatEntry(e Entry) string {
	if !e.IsValid {
		return e.Raw
	}

	var paint func(Level, string) string
	if v.colors != nil {
		paint = v.colors.paint
	}
	line := formatLine(Record{
		Time:     e.Time,
		Level:    e.Level,
		Category: e.Category,
		Message:  e.Message,
		Metadata: e.Metadata,
	}, paint)

	if v.config.ShowSource && e.Source != "" {
		line = v.formatSource(e.Source) + " " + line
	}
	return line
}

func (v *Viewer) formatSource(source string) string {
	label := fmt.Sprintf("[%s]", source)
	if v.colors == nil {
		return label
	}
	if source == "error" {
		return v.colors.paint(LevelError, label)
	}
	return v.colors.paint(LevelDebug, label)
}

// Print prints entries to the output.
func (v *Viewer) Print(entries []Entry) {
	for _, e := range entries {
		_, _ = fmt.Fprintln(v.out, v.FormatEntry(e))
	}
}

// matchesFilter checks an entry against the level and category filters.
// Unparsed lines only pass when no filter is set.
func (v *Viewer) matchesFilter(e Entry) bool {
	if v.config.Level == "" && v.config.Category == "" {
		return true
	}
	if !e.IsValid {
		return false
	}
	if v.config.Level != "" && e.Level < LevelFromString(v.config.Level) {
		return false
	}
	if v.config.Category != "" && !strings.EqualFold(e.Category, v.config.Category) {
		return false
	}
	return true
}
