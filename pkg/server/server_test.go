package server

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bastiangx/nascast/internal/logger"
	"github.com/bastiangx/nascast/pkg/controller"
	"github.com/bastiangx/nascast/pkg/loader"
	"github.com/bastiangx/nascast/pkg/page"
	"github.com/bastiangx/nascast/pkg/playback"
	"github.com/bastiangx/nascast/pkg/render"
	"github.com/bastiangx/nascast/pkg/search"
	"github.com/bastiangx/nascast/pkg/textindex"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const indexJSON = `{"entries":[
	{"title":"Interstellar","meta":"Nolan","media_type":"movie","year":2014,"url":"/movies/interstellar/","poster_url":"/p/i.jpg"},
	{"title":"Inside Out","meta":"Pixar","media_type":"movie","year":2015,"url":"/movies/inside-out/","poster_url":""}
]}`

type stringFetcher string

func (f stringFetcher) Fetch(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(string(f))), nil
}

// frame decodes both response and load frames.
type frame struct {
	ID         string   `msgpack:"id"`
	State      string   `msgpack:"st"`
	QueryState string   `msgpack:"qs"`
	Visible    bool     `msgpack:"vis"`
	HTML       string   `msgpack:"html"`
	Fired      []string `msgpack:"fired"`
	Prevented  bool     `msgpack:"pd"`
	Error      string   `msgpack:"err"`
	URL        string   `msgpack:"url"`
}

type harness struct {
	t      *testing.T
	clock  *clock.Mock
	srv    *Server
	enc    *msgpack.Encoder
	dec    *msgpack.Decoder
	in     *io.PipeWriter
	done   chan error
	logs   *bytes.Buffer
	bridge *playback.Bridge
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logs := &bytes.Buffer{}
	lg := logger.To(logs, "test")

	adapter := textindex.NewAdapter(nil)
	ld := loader.New(stringFetcher(indexJSON), "search-index.json", adapter, loader.WithLogger(lg))
	require.NoError(t, ld.Load(context.Background()))

	p, err := page.ParseString(page.DefaultMarkup, page.DefaultSelectors())
	require.NoError(t, err)
	view, err := render.New(p.Results(), render.Options{Locker: p.Locker(), Logger: lg})
	require.NoError(t, err)

	mock := clock.NewMock()
	svc := search.NewService(ld, adapter, view, search.Options{Clock: mock, Logger: lg})
	ctrl := controller.Init(p, svc, controller.Options{ShortcutModifier: controller.ModCtrl | controller.ModMeta, Logger: lg})

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	srv := NewServer(Deps{Service: svc, Controller: ctrl, Page: p, View: view, Logger: lg}, inR, outW)

	bridge := playback.NewBridge(srv.Session(), lg)
	bridge.Attach(context.Background(), srv.MediaURL)

	h := &harness{
		t:      t,
		clock:  mock,
		srv:    srv,
		enc:    msgpack.NewEncoder(inW),
		dec:    msgpack.NewDecoder(outR),
		in:     inW,
		done:   make(chan error, 1),
		logs:   logs,
		bridge: bridge,
	}
	go func() { h.done <- srv.Start(context.Background()) }()

	ready := h.read()
	require.Equal(t, ReadyID, ready.ID)
	require.Equal(t, "ready", ready.State)
	t.Cleanup(func() { _ = inW.Close() })
	return h
}

func (h *harness) read() frame {
	h.t.Helper()
	var f frame
	require.NoError(h.t, h.dec.Decode(&f))
	return f
}

func (h *harness) send(req Request) frame {
	h.t.Helper()
	require.NoError(h.t, h.enc.Encode(req))
	return h.read()
}

func TestServer_InputThenPush(t *testing.T) {
	h := newHarness(t)

	resp := h.send(Request{ID: "1", Event: EventInput, Value: "inter"})
	assert.Equal(t, "1", resp.ID)
	assert.Equal(t, []string{controller.RuleInputChanged}, resp.Fired)
	assert.Equal(t, "debouncing", resp.QueryState)
	assert.False(t, resp.Visible)

	h.clock.Add(300 * time.Millisecond)
	push := h.read()
	assert.Equal(t, PushID, push.ID)
	assert.Equal(t, "displaying", push.QueryState)
	assert.True(t, push.Visible)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(push.HTML))
	require.NoError(t, err)
	assert.Equal(t, "Movies (1)", doc.Find(".search-section-header").Text())
	assert.Equal(t, "Movie (2014)", doc.Find(".search-result-type").Text())
}

func TestServer_ShortInputHidesImmediately(t *testing.T) {
	h := newHarness(t)
	resp := h.send(Request{ID: "1", Event: EventInput, Value: "i"})
	assert.Equal(t, "idle", resp.QueryState)
	assert.False(t, resp.Visible)
}

func TestServer_EscapeAndOutsideClick(t *testing.T) {
	h := newHarness(t)
	h.send(Request{ID: "1", Event: EventInput, Value: "inside"})
	h.clock.Add(300 * time.Millisecond)
	require.True(t, h.read().Visible)

	resp := h.send(Request{ID: "2", Event: EventEscape})
	assert.Equal(t, []string{controller.RuleEscapePressed}, resp.Fired)
	assert.False(t, resp.Visible)
	assert.NotEmpty(t, resp.HTML, "hiding keeps content")

	resp = h.send(Request{ID: "3", Event: EventClick, Value: "library"})
	assert.Equal(t, []string{controller.RuleOutsideClicked}, resp.Fired)
}

func TestServer_ClearAndShortcut(t *testing.T) {
	h := newHarness(t)
	h.send(Request{ID: "1", Event: EventInput, Value: "inter"})

	resp := h.send(Request{ID: "2", Event: EventClear})
	assert.Equal(t, []string{controller.RuleClearClicked}, resp.Fired)
	assert.Equal(t, "idle", resp.QueryState)

	h.send(Request{ID: "3", Event: EventFocus, Value: "library"})
	resp = h.send(Request{ID: "4", Event: EventShortcut, Modifiers: []string{"ctrl"}})
	assert.Equal(t, []string{controller.RuleShortcutPressed}, resp.Fired)
	assert.True(t, resp.Prevented)
}

func TestServer_UnknownEvent(t *testing.T) {
	h := newHarness(t)
	resp := h.send(Request{ID: "x", Event: "teleport"})
	assert.Equal(t, "x", resp.ID)
	assert.Contains(t, resp.Error, "unknown event")

	resp = h.send(Request{ID: "load_99", Event: EventLoaded})
	assert.Contains(t, resp.Error, "no pending load")
}

func TestServer_SessionLoadsMedia(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.enc.Encode(Request{ID: "s", Event: EventSession, Value: "/media/interstellar.mp4"}))

	// the response and the load frame race
	frames := map[string]frame{}
	for i := 0; i < 2; i++ {
		f := h.read()
		frames[f.ID] = f
	}
	require.Contains(t, frames, "s")
	load, ok := frames["load_1"]
	require.True(t, ok)
	assert.Equal(t, "/media/interstellar.mp4", load.URL)

	resp := h.send(Request{ID: "load_1", Event: EventLoaded, Value: "LOAD_CANCELLED"})
	assert.Empty(t, resp.Error)

	require.Eventually(t, func() bool { return h.bridge.LastError() != nil }, time.Second, time.Millisecond)
	var le *playback.LoadError
	require.ErrorAs(t, h.bridge.LastError(), &le)
	assert.Equal(t, "LOAD_CANCELLED", le.Code)
	assert.Equal(t, "ready", resp.State)
}

func TestServer_StopsOnEOF(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.in.Close())
	select {
	case err := <-h.done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_InertWithoutPage(t *testing.T) {
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	var logs bytes.Buffer
	srv := NewServer(Deps{Controller: controller.Init(nil, nil, controller.Options{Logger: logger.To(&logs, "c")}), Logger: logger.To(&logs, "s")}, inR, outW)
	go func() { _ = srv.Start(context.Background()) }()
	defer inW.Close()

	enc := msgpack.NewEncoder(inW)
	dec := msgpack.NewDecoder(outR)
	var f frame
	require.NoError(t, dec.Decode(&f))

	for _, ev := range []string{EventInput, EventClear, EventClick, EventShortcut, EventEscape} {
		require.NoError(t, enc.Encode(Request{ID: ev, Event: ev, Value: "batman"}))
		require.NoError(t, dec.Decode(&f))
		assert.Equal(t, ev, f.ID)
		assert.Empty(t, f.Fired)
		assert.False(t, f.Visible)
		assert.Empty(t, f.Error)
	}
}
