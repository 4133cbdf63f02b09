package logging

import (
	"fmt"
	"io"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// recentFailureCapacity bounds the distinct failure messages remembered.
const recentFailureCapacity = 32

// SinkHealth is the per-sink part of a Health snapshot.
type SinkHealth struct {
	Name     string
	Path     string
	MinLevel Level
	Circuit  string
	Written  uint64
	Failed   uint64
	Dropped  uint64
}

// Health is a point-in-time view of write outcomes, for health checks.
type Health struct {
	State   DrainState
	Written uint64
	Failed  uint64
	// Dropped counts writes skipped by an open circuit or after drain.
	Dropped uint64
	Sinks   []SinkHealth
	// RecentErrors lists distinct failure messages, oldest first.
	RecentErrors []string
}

// Healthy reports whether no write has failed or been dropped.
func (h Health) Healthy() bool {
	return h.Failed == 0 && h.Dropped == 0
}

// Health returns the current write counters.
func (f *Facility) Health() Health {
	h := Health{
		State:        DrainState(f.state.Load()),
		Dropped:      f.dropped.Load(),
		RecentErrors: f.failures.recent(),
	}
	for _, s := range f.sinks {
		sh := SinkHealth{
			Name:     s.sink.Name(),
			Path:     s.sink.Path(),
			MinLevel: s.sink.MinLevel(),
			Circuit:  s.breaker.State().String(),
			Written:  s.written.Load(),
			Failed:   s.failed.Load(),
			Dropped:  s.dropped.Load(),
		}
		h.Written += sh.Written
		h.Failed += sh.Failed
		h.Dropped += sh.Dropped
		h.Sinks = append(h.Sinks, sh)
	}
	return h
}

// failureLog remembers recent distinct sink failures and reports each one
// once to the diagnostics writer.
type failureLog struct {
	mu   sync.Mutex
	seen *lru.Cache[string, uint64]
	out  io.Writer
}

func newFailureLog(out io.Writer) *failureLog {
	seen, _ := lru.New[string, uint64](recentFailureCapacity)
	return &failureLog{seen: seen, out: out}
}

func (l *failureLog) record(sink string, err error) {
	key := fmt.Sprintf("%s: %v", sink, err)

	l.mu.Lock()
	n, _ := l.seen.Get(key)
	l.seen.Add(key, n+1)
	l.mu.Unlock()

	if n == 0 && l.out != nil {
		_, _ = fmt.Fprintf(l.out, "amanlog: sink %s write failed: %v\n", sink, err)
	}
}

func (l *failureLog) recent() []string {
	return l.seen.Keys()
}
