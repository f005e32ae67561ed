package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"csvserve/internal/metrics"
)

// State is the store's readiness.
type State int

const (
	// StateUnloaded means no load has completed yet.
	StateUnloaded State = iota
	// StateLoaded means a dataset is published and readable.
	StateLoaded
	// StateFailed means the load failed. Terminal; the store never retries.
	StateFailed
)

// String returns the state name used in logs and health output.
func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unloaded"
	}
}

// Snapshot is one consistent view of the store. Data is non-nil only in
// StateLoaded, Err only in StateFailed.
type Snapshot struct {
	State State
	Data  *Dataset
	Err   error
}

// Dataset returns the published dataset, ErrNotReady before publication, or
// the load error after a failure.
func (s Snapshot) Dataset() (*Dataset, error) {
	switch s.State {
	case StateLoaded:
		return s.Data, nil
	case StateFailed:
		return nil, s.Err
	default:
		return nil, ErrNotReady
	}
}

// Store owns the readiness lifecycle of one dataset. It is a write-once
// cell: StartLoad runs a single load pass in the background, and the outcome
// is published exactly once. The state only ever moves Unloaded to Loaded or
// Unloaded to Failed; it never reverts.
//
// Read is safe for any number of concurrent callers at any time. Before
// publication every caller sees Unloaded; after, every caller sees the same
// dataset pointer. No caller ever observes a partially populated dataset.
type Store struct {
	mu    sync.RWMutex
	state State
	data  *Dataset
	err   error

	once sync.Once
	done chan struct{}
}

// NewStore returns an unloaded store.
func NewStore() *Store {
	return &Store{done: make(chan struct{})}
}

// StartLoad begins the load in the background and returns immediately. Only
// the first call starts anything; later calls are no-ops, so the store can
// never race to publish two different datasets. It reports whether this call
// was the one that started the load.
//
// ctx bounds the load: callers that want a startup timeout pass a context
// that expires, and the loader aborts at its next check.
func (s *Store) StartLoad(ctx context.Context, loader Loader) bool {
	started := false
	s.once.Do(func() {
		started = true
		go s.load(ctx, loader)
	})
	return started
}

// Read returns the current snapshot. Once a snapshot with StateLoaded has
// been observed, every later call returns the identical dataset.
func (s *Store) Read() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{State: s.state, Data: s.data, Err: s.err}
}

// Done returns a channel that is closed once the load has settled, in either
// direction. It lets callers wait for startup or apply their own timeout.
func (s *Store) Done() <-chan struct{} {
	return s.done
}

// load drives one parse to completion and publishes the outcome. A panic in
// the loader is published as a failure so readers are never left waiting on
// a load that silently died.
func (s *Store) load(ctx context.Context, loader Loader) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic during dataset load", "panic", r)
			s.publish(nil, fmt.Errorf("internal error: %v", r))
			metrics.LoadsTotal.WithLabelValues("failure").Inc()
		}
	}()

	data, err := loader.Load(ctx)
	duration := time.Since(start)
	metrics.LoadDuration.Set(duration.Seconds())

	if err != nil {
		slog.Error("dataset load failed",
			"error", err,
			"duration_ms", duration.Milliseconds(),
		)
		metrics.LoadsTotal.WithLabelValues("failure").Inc()
		s.publish(nil, err)
		return
	}

	slog.Info("dataset loaded",
		"records", data.Len(),
		"fields", len(data.Header()),
		"bytes", data.SourceBytes(),
		"duration_ms", duration.Milliseconds(),
		"load_id", data.LoadID(),
	)
	metrics.LoadsTotal.WithLabelValues("success").Inc()
	metrics.RecordsLoaded.Set(float64(data.Len()))
	metrics.SourceBytes.Set(float64(data.SourceBytes()))
	s.publish(data, nil)
}

// publish installs the load outcome. First write wins; the settled state is
// never overwritten.
func (s *Store) publish(data *Dataset, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateUnloaded {
		return
	}
	if err != nil {
		s.state = StateFailed
		s.err = err
	} else {
		s.state = StateLoaded
		s.data = data
	}
	close(s.done)
}
