// Package loader acquires the search index once per session, populates the
// text index adapter and tracks readiness.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bastiangx/nascast/internal/logger"
	"github.com/bastiangx/nascast/pkg/catalog"
	"github.com/bastiangx/nascast/pkg/metrics"
	"github.com/bastiangx/nascast/pkg/textindex"
	"github.com/charmbracelet/log"
)

// State is the session readiness state. Ready and Unavailable are terminal.
type State int32

const (
	Uninitialized State = iota
	Loading
	Ready
	Unavailable
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Unavailable:
		return "unavailable"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

const (
	StageFetch = "fetch"
	StageParse = "parse"
)

// ErrUnavailable is returned when the index is requested but loading failed.
var ErrUnavailable = errors.New("search index unavailable")

// ErrNotReady is returned when the index is requested before loading finished.
var ErrNotReady = errors.New("search index not ready")

// IndexLoadError reports a transport failure or a malformed payload.
type IndexLoadError struct {
	Stage string
	Path  string
	Err   error
}

func (e *IndexLoadError) Error() string {
	return fmt.Sprintf("index %s failed for %s: %v", e.Stage, e.Path, e.Err)
}

func (e *IndexLoadError) Unwrap() error {
	return e.Err
}

// Stats describes the outcome of the load.
type Stats struct {
	State    State
	Entries  int
	Duration time.Duration
}

// Loader fetches and parses the index exactly once.
type Loader struct {
	fetcher Fetcher
	path    string
	adapter *textindex.Adapter
	logger  *log.Logger

	once     sync.Once
	done     chan struct{}
	state    atomic.Int32
	index    atomic.Pointer[catalog.Index]
	err      error
	duration time.Duration
}

type Option func(*Loader)

// WithLogger replaces the component logger.
func WithLogger(l *log.Logger) Option {
	return func(ld *Loader) {
		ld.logger = l
	}
}

func New(fetcher Fetcher, path string, adapter *textindex.Adapter, opts ...Option) *Loader {
	l := &Loader{
		fetcher: fetcher,
		path:    path,
		adapter: adapter,
		logger:  logger.New("loader"),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load runs the fetch, parse and populate sequence on the first call.
// Later and concurrent calls wait for that run and return its result.
func (l *Loader) Load(ctx context.Context) error {
	l.once.Do(func() {
		defer close(l.done)
		l.err = l.load(ctx)
	})
	return l.err
}

// Start runs Load in the background. Queries no-op until it resolves.
func (l *Loader) Start(ctx context.Context) {
	go func() {
		_ = l.Load(ctx)
	}()
}

// Done is closed once the load has resolved to Ready or Unavailable.
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

func (l *Loader) load(ctx context.Context) error {
	l.state.Store(int32(Loading))
	start := time.Now()

	rc, err := l.fetcher.Fetch(ctx, l.path)
	if err != nil {
		return l.fail(&IndexLoadError{Stage: StageFetch, Path: l.path, Err: err})
	}
	defer rc.Close()

	idx, err := catalog.Decode(rc)
	if err != nil {
		stage := StageParse
		if !errors.Is(err, catalog.ErrMalformed) {
			stage = StageFetch
		}
		return l.fail(&IndexLoadError{Stage: stage, Path: l.path, Err: err})
	}

	for i, entry := range idx.Entries {
		l.adapter.Add(i, entry.SearchText())
	}
	l.index.Store(idx)
	l.adapter.MarkReady()
	l.duration = time.Since(start)
	l.state.Store(int32(Ready))

	metrics.IndexLoadsTotal.WithLabelValues("ok").Inc()
	metrics.IndexLoadDuration.Observe(l.duration.Seconds())
	metrics.IndexEntries.Set(float64(idx.Len()))
	l.logger.Infof("Loaded %d entries from %s in %v", idx.Len(), l.path, l.duration)
	return nil
}

func (l *Loader) fail(err *IndexLoadError) error {
	l.state.Store(int32(Unavailable))
	metrics.IndexLoadsTotal.WithLabelValues(err.Stage + "_error").Inc()
	l.logger.Errorf("Search index unavailable: %v", err)
	return err
}

func (l *Loader) State() State {
	return State(l.state.Load())
}

// Index returns the loaded entries once Ready.
func (l *Loader) Index() (*catalog.Index, error) {
	switch l.State() {
	case Ready:
		return l.index.Load(), nil
	case Unavailable:
		return nil, ErrUnavailable
	default:
		return nil, ErrNotReady
	}
}

// Err returns the load failure, or nil while loading or after success.
func (l *Loader) Err() error {
	select {
	case <-l.done:
		return l.err
	default:
		return nil
	}
}

func (l *Loader) Stats() Stats {
	s := Stats{State: l.State()}
	select {
	case <-l.done:
		s.Duration = l.duration
	default:
	}
	if idx := l.index.Load(); idx != nil {
		s.Entries = idx.Len()
	}
	return s
}
