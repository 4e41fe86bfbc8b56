package search

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/bastiangx/nascast/internal/logger"
	"github.com/bastiangx/nascast/pkg/catalog"
	"github.com/bastiangx/nascast/pkg/loader"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	state loader.State
	idx   *catalog.Index
}

func (f *fakeSource) State() loader.State { return f.state }

func (f *fakeSource) Index() (*catalog.Index, error) {
	if f.state != loader.Ready {
		return nil, loader.ErrNotReady
	}
	return f.idx, nil
}

type fakeSearcher struct {
	mu      sync.Mutex
	ids     []int
	queries []string
}

func (f *fakeSearcher) Search(query string, limit int) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if len(f.ids) > limit {
		return f.ids[:limit]
	}
	return f.ids
}

func (f *fakeSearcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

type fakeView struct {
	mu      sync.Mutex
	renders []string
	visible bool
	hides   int
}

func (v *fakeView) Render(_ GroupedResult, query string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.renders = append(v.renders, query)
	v.visible = true
}

func (v *fakeView) Hide() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.visible = false
	v.hides++
}

func (v *fakeView) snapshot() ([]string, bool, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.renders...), v.visible, v.hides
}

type fixture struct {
	svc      *Service
	clock    *clock.Mock
	source   *fakeSource
	searcher *fakeSearcher
	view     *fakeView
	logs     *bytes.Buffer
}

func newFixture(t *testing.T, state loader.State) *fixture {
	t.Helper()
	f := &fixture{
		clock: clock.NewMock(),
		source: &fakeSource{state: state, idx: &catalog.Index{Entries: []catalog.Entry{
			entry("Interstellar", catalog.MediaMovie),
			entry("Breaking Bad", catalog.MediaSeries),
		}}},
		searcher: &fakeSearcher{ids: []int{0, 1}},
		view:     &fakeView{},
		logs:     &bytes.Buffer{},
	}
	f.svc = NewService(f.source, f.searcher, f.view, Options{
		Clock:  f.clock,
		Logger: logger.To(f.logs, "search"),
	})
	return f
}

func (f *fixture) waitRenders(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		renders, _, _ := f.view.snapshot()
		return len(renders) == n
	}, time.Second, time.Millisecond)
}

func TestService_ShortQueryHidesSynchronously(t *testing.T) {
	for _, q := range []string{"", " ", "a", "  b  ", "é"} {
		t.Run(q, func(t *testing.T) {
			f := newFixture(t, loader.Ready)
			f.svc.SubmitQuery(q)

			_, visible, hides := f.view.snapshot()
			assert.False(t, visible)
			assert.Equal(t, 1, hides)
			assert.Equal(t, Idle, f.svc.QueryState())

			f.clock.Add(time.Second)
			time.Sleep(10 * time.Millisecond)
			assert.Empty(t, f.searcher.calls())
		})
	}
}

func TestService_DebounceCoalescing(t *testing.T) {
	f := newFixture(t, loader.Ready)

	for _, q := range []string{"in", "int", "inte", "inter"} {
		f.svc.SubmitQuery(q)
		assert.Equal(t, Debouncing, f.svc.QueryState())
		f.clock.Add(50 * time.Millisecond)
	}
	// last keystroke at t=150
	f.clock.Add(249 * time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, f.searcher.calls())

	f.clock.Add(time.Millisecond)
	f.waitRenders(t, 1)
	assert.Equal(t, []string{"inter"}, f.searcher.calls())
	assert.Equal(t, Displaying, f.svc.QueryState())
}

func TestService_ShortQueryCancelsPending(t *testing.T) {
	f := newFixture(t, loader.Ready)
	f.svc.SubmitQuery("batman")
	f.clock.Add(100 * time.Millisecond)
	f.svc.SubmitQuery("b")

	f.clock.Add(time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, f.searcher.calls())
	assert.Equal(t, Idle, f.svc.QueryState())
}

func TestService_TrimsQuery(t *testing.T) {
	f := newFixture(t, loader.Ready)
	f.svc.SubmitQuery("  inter  ")
	assert.Equal(t, "inter", f.svc.Query())
	f.clock.Add(300 * time.Millisecond)
	f.waitRenders(t, 1)
	assert.Equal(t, []string{"inter"}, f.searcher.calls())
}

func TestService_NoResults(t *testing.T) {
	f := newFixture(t, loader.Ready)
	f.searcher.ids = nil
	f.svc.SubmitQuery("zzz")
	f.clock.Add(300 * time.Millisecond)
	f.waitRenders(t, 1)
	assert.Equal(t, NoResults, f.svc.QueryState())
}

func TestService_NotReadyIsNoop(t *testing.T) {
	for _, state := range []loader.State{loader.Uninitialized, loader.Loading, loader.Unavailable} {
		t.Run(state.String(), func(t *testing.T) {
			f := newFixture(t, state)
			assert.False(t, f.svc.IsReady())

			f.svc.SubmitQuery("batman")
			f.clock.Add(time.Second)
			time.Sleep(10 * time.Millisecond)

			renders, visible, _ := f.view.snapshot()
			assert.Empty(t, renders)
			assert.False(t, visible)
			assert.Empty(t, f.searcher.calls())
			assert.Equal(t, Idle, f.svc.QueryState())
		})
	}
}

func TestService_ClearAndHideDropPending(t *testing.T) {
	for name, op := range map[string]func(*Service){
		"clear": (*Service).Clear,
		"hide":  (*Service).Hide,
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, loader.Ready)
			f.svc.SubmitQuery("inter")
			op(f.svc)

			f.clock.Add(time.Second)
			time.Sleep(10 * time.Millisecond)
			assert.Empty(t, f.searcher.calls())
			_, visible, hides := f.view.snapshot()
			assert.False(t, visible)
			assert.Equal(t, 1, hides)
			assert.Equal(t, Idle, f.svc.QueryState())
		})
	}
}

func TestService_OnRender(t *testing.T) {
	f := newFixture(t, loader.Ready)
	got := make(chan Result, 1)
	f.svc.OnRender(func(r Result) { got <- r })

	f.svc.SubmitQuery("inter")
	f.clock.Add(300 * time.Millisecond)

	select {
	case r := <-got:
		assert.Equal(t, "inter", r.Query)
		assert.Equal(t, Displaying, r.State)
		require.Len(t, r.Grouped.Movies, 1)
		require.Len(t, r.Grouped.Series, 1)
	case <-time.After(time.Second):
		t.Fatal("render hook not called")
	}
}

func TestQueryStateString(t *testing.T) {
	assert.Equal(t, "debouncing", Debouncing.String())
	assert.Equal(t, "no_results", NoResults.String())
}
