// Package search orchestrates queries: it debounces input, asks the text
// index for ranked ids, groups the matching entries and hands them to a view.
package search

import (
	"sync"
	"time"

	"github.com/bastiangx/nascast/internal/logger"
	"github.com/bastiangx/nascast/internal/utils"
	"github.com/bastiangx/nascast/pkg/catalog"
	"github.com/bastiangx/nascast/pkg/loader"
	"github.com/bastiangx/nascast/pkg/metrics"
	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/log"
)

// QueryState tracks one query inside a Ready session.
type QueryState int

const (
	Idle QueryState = iota
	Debouncing
	Querying
	Displaying
	NoResults
)

func (s QueryState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Debouncing:
		return "debouncing"
	case Querying:
		return "querying"
	case Displaying:
		return "displaying"
	case NoResults:
		return "no_results"
	}
	return "unknown"
}

// Source exposes the loaded entry store and session readiness.
type Source interface {
	State() loader.State
	Index() (*catalog.Index, error)
}

// Searcher returns ranked entry ids for a query.
type Searcher interface {
	Search(query string, limit int) []int
}

// View displays grouped results. Hide removes visibility without clearing.
type View interface {
	Render(res GroupedResult, query string)
	Hide()
}

// Result is what a view was given for one executed query.
type Result struct {
	Query   string
	Grouped GroupedResult
	State   QueryState
}

type Options struct {
	Debounce    time.Duration
	MinQueryLen int
	Limit       int
	EpisodeCap  int
	Clock       clock.Clock
	Logger      *log.Logger
}

func DefaultOptions() Options {
	return Options{
		Debounce:    300 * time.Millisecond,
		MinQueryLen: 2,
		Limit:       20,
		EpisodeCap:  DefaultEpisodeCap,
	}
}

// Service owns the query pipeline for one session. Every state transition
// happens under mu, including the debounced execution.
type Service struct {
	source    Source
	searcher  Searcher
	view      View
	debouncer *Debouncer
	opts      Options
	logger    *log.Logger

	mu       sync.Mutex
	seq      uint64
	state    QueryState
	query    string
	onRender func(Result)
}

func NewService(source Source, searcher Searcher, view View, opts Options) *Service {
	defaults := DefaultOptions()
	if opts.Debounce <= 0 {
		opts.Debounce = defaults.Debounce
	}
	if opts.MinQueryLen <= 0 {
		opts.MinQueryLen = defaults.MinQueryLen
	}
	if opts.Limit <= 0 {
		opts.Limit = defaults.Limit
	}
	// a negative cap disables truncation
	if opts.EpisodeCap == 0 {
		opts.EpisodeCap = defaults.EpisodeCap
	}
	if opts.Logger == nil {
		opts.Logger = logger.New("search")
	}

	return &Service{
		source:    source,
		searcher:  searcher,
		view:      view,
		debouncer: NewDebouncer(opts.Clock, opts.Debounce),
		opts:      opts,
		logger:    opts.Logger,
	}
}

// OnRender registers a hook that observes every rendered result set.
func (s *Service) OnRender(fn func(Result)) {
	s.mu.Lock()
	s.onRender = fn
	s.mu.Unlock()
}

// SubmitQuery trims raw and schedules it after the quiet period. Queries
// shorter than the minimum length cancel pending work and hide results at once.
func (s *Service) SubmitQuery(raw string) {
	query := utils.NormalizeQuery(raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	if utils.QueryLen(query) < s.opts.MinQueryLen {
		if s.debouncer.Cancel() {
			metrics.QueriesSupersededTotal.Inc()
		}
		metrics.QueriesShortTotal.Inc()
		s.query = query
		s.state = Idle
		s.view.Hide()
		return
	}

	seq := s.seq
	s.query = query
	s.state = Debouncing
	if s.debouncer.Trigger(func() { s.execute(seq, query) }) {
		metrics.QueriesSupersededTotal.Inc()
	}
}

// Clear drops pending work and hides results.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.query = ""
}

// Hide removes result visibility and drops any pending query, so a late
// timer cannot reveal results the user dismissed.
func (s *Service) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Service) resetLocked() {
	s.seq++
	if s.debouncer.Cancel() {
		metrics.QueriesSupersededTotal.Inc()
	}
	s.state = Idle
	s.view.Hide()
}

// IsReady reports whether the index has loaded.
func (s *Service) IsReady() bool {
	return s.source.State() == loader.Ready
}

// State is the session state of the underlying index.
func (s *Service) State() loader.State {
	return s.source.State()
}

func (s *Service) QueryState() QueryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Query returns the last submitted query, trimmed.
func (s *Service) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

func (s *Service) execute(seq uint64, query string) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	if s.source.State() != loader.Ready {
		s.logger.Debugf("Dropping query %q: index %s", query, s.source.State())
		s.state = Idle
		s.mu.Unlock()
		return
	}
	idx, err := s.source.Index()
	if err != nil {
		s.logger.Debugf("Dropping query %q: %v", query, err)
		s.state = Idle
		s.mu.Unlock()
		return
	}

	s.state = Querying
	metrics.QueriesExecutedTotal.Inc()
	ids := s.searcher.Search(query, s.opts.Limit)
	grouped := Group(ids, idx, s.opts.EpisodeCap, s.logger)
	s.view.Render(grouped, query)

	outcome := "results"
	s.state = Displaying
	if grouped.Empty() {
		outcome = "no_results"
		s.state = NoResults
	}
	metrics.RendersTotal.WithLabelValues(outcome).Inc()
	s.logger.Debugf("Query %q matched %d entries", query, grouped.Len())

	res := Result{Query: query, Grouped: grouped, State: s.state}
	hook := s.onRender
	s.mu.Unlock()

	if hook != nil {
		hook(res)
	}
}
