package logging

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	amerrors "github.com/Aman-CERP/amanlog/internal/errors"
)

// DefaultDrainTimeout bounds FlushTimeout when no timeout is given.
const DefaultDrainTimeout = 5 * time.Second

// DrainState is the facility lifecycle: Idle -> Draining -> Drained.
type DrainState int32

const (
	DrainIdle DrainState = iota
	DrainDraining
	DrainDrained
)

// String returns the state name.
func (s DrainState) String() string {
	switch s {
	case DrainIdle:
		return "idle"
	case DrainDraining:
		return "draining"
	case DrainDrained:
		return "drained"
	default:
		return "unknown"
	}
}

// DrainState returns the current lifecycle state.
func (f *Facility) DrainState() DrainState {
	return DrainState(f.state.Load())
}

// Flush waits for in-flight writes, then closes every sink. It is terminal:
// records logged after Flush starts are dropped.
//
// Only the first call drains. Every call waits for that drain and returns
// its result; once drained, calls return immediately. If ctx ends first the
// error matches errors.ErrDrainTimeout and the drain keeps running.
func (f *Facility) Flush(ctx context.Context) error {
	f.drainOnce.Do(func() {
		// Taking mu waits out any dispatch in progress.
		f.mu.Lock()
		f.state.Store(int32(DrainDraining))
		f.mu.Unlock()

		go f.drain()
	})

	select {
	case <-f.drainDone:
		return f.drainErr
	default:
	}

	select {
	case <-f.drainDone:
		return f.drainErr
	case <-ctx.Done():
		return amerrors.New(amerrors.ErrCodeDrainTimeout,
			fmt.Sprintf("log drain did not finish: %v", ctx.Err()), ctx.Err())
	}
}

// FlushTimeout is Flush bounded by timeout (DefaultDrainTimeout if <= 0).
func (f *Facility) FlushTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultDrainTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return f.Flush(ctx)
}

func (f *Facility) drain() {
	defer close(f.drainDone)

	var g errgroup.Group
	for _, s := range f.sinks {
		g.Go(func() error {
			if err := s.sink.Close(); err != nil {
				return amerrors.New(amerrors.ErrCodeSinkClose,
					fmt.Sprintf("failed to close sink %s", s.sink.Name()), err).
					WithDetail("sink", s.sink.Name())
			}
			return nil
		})
	}

	f.drainErr = g.Wait()
	f.state.Store(int32(DrainDrained))
}
