package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/bastiangx/nascast/internal/logger"
	"github.com/bastiangx/nascast/pkg/controller"
	"github.com/bastiangx/nascast/pkg/page"
	"github.com/bastiangx/nascast/pkg/playback"
	"github.com/bastiangx/nascast/pkg/search"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// View is the results container as seen by the host.
type View interface {
	Visible() bool
	HTML() string
}

// Deps are the widget parts the server drives. Page and View are nil when
// the host page lacks the widget; the controller is then inert.
type Deps struct {
	Service    *search.Service
	Controller *controller.Controller
	Page       *page.Page
	View       View
	Logger     *log.Logger
}

// Server handles the IPC for one host over a reader and writer pair.
type Server struct {
	deps   Deps
	logger *log.Logger
	dec    *msgpack.Decoder
	enc    *msgpack.Encoder
	wmu    sync.Mutex

	hub *playback.Hub

	mu      sync.Mutex
	media   string
	loadSeq int
	loads   map[string]chan string
}

// NewServer creates a server reading requests from r and writing frames to w.
func NewServer(deps Deps, r io.Reader, w io.Writer) *Server {
	if deps.Logger == nil {
		deps.Logger = logger.New("server")
	}
	s := &Server{
		deps:   deps,
		logger: deps.Logger,
		dec:    msgpack.NewDecoder(r),
		enc:    msgpack.NewEncoder(w),
		loads:  make(map[string]chan string),
	}
	s.hub = playback.NewHub(s.loadMedia)
	if deps.Service != nil {
		deps.Service.OnRender(func(search.Result) {
			s.send(s.snapshot(PushID))
		})
	}
	return s
}

// Session is the playback session backed by this host.
func (s *Server) Session() playback.Session {
	return s.hub
}

// MediaURL is the media of the page the last session event named.
func (s *Server) MediaURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.media
}

// Start announces readiness and serves requests until the reader closes or
// ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Debug("Starting server")
	s.send(s.snapshot(ReadyID))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debug("Input closed, stopping server")
				return nil
			}
			s.logger.Errorf("Decoding request: %v", err)
			return fmt.Errorf("failed to decode request: %w", err)
		}
		s.handle(ctx, req)
	}
}

func (s *Server) handle(ctx context.Context, req Request) {
	s.logger.Debugf("Request %s: %s %q", req.ID, req.Event, req.Value)

	var (
		ev  *controller.Event
		err error
	)
	switch req.Event {
	case EventInput:
		if s.deps.Page != nil {
			s.deps.Page.Focus(s.deps.Page.Input())
		}
		ev = &controller.Event{Type: controller.EventInput, Value: req.Value}
	case EventClear:
		if s.deps.Page != nil {
			ev = &controller.Event{Type: controller.EventClick, Target: s.deps.Page.Clear()}
		}
	case EventEscape:
		ev = &controller.Event{Type: controller.EventKeyDown, Key: "Escape"}
	case EventClick:
		if s.deps.Page != nil {
			ev = &controller.Event{Type: controller.EventClick, Target: s.deps.Page.ByID(req.Value)}
		}
	case EventShortcut:
		key := req.Value
		if key == "" {
			key = "k"
		}
		mods := controller.ParseModifiers(req.Modifiers...)
		if len(req.Modifiers) == 0 {
			mods = controller.PlatformModifier()
		}
		ev = &controller.Event{Type: controller.EventKeyDown, Key: key, Mods: mods}
	case EventFocus:
		s.focus(req.Value)
	case EventState:
	case EventSession:
		s.mu.Lock()
		s.media = req.Value
		s.mu.Unlock()
		go s.hub.Started()
	case EventLoaded:
		if !s.resolveLoad(req.ID, req.Value) {
			err = fmt.Errorf("no pending load %q", req.ID)
		}
	default:
		err = fmt.Errorf("unknown event %q", req.Event)
	}

	var (
		fired     []string
		prevented bool
	)
	if ev != nil && s.deps.Controller != nil {
		fired = s.deps.Controller.Dispatch(ev)
		prevented = ev.DefaultPrevented()
	}

	resp := s.snapshot(req.ID)
	resp.Fired = fired
	resp.Prevented = prevented
	if err != nil {
		s.logger.Warnf("Request %s: %v", req.ID, err)
		resp.Error = err.Error()
	}
	s.send(resp)
}

func (s *Server) focus(id string) {
	p := s.deps.Page
	if p == nil {
		return
	}
	if id == "" {
		if n := p.Focused(); n != nil {
			p.Blur(n)
		}
		return
	}
	if n := p.ByID(id); n != nil {
		p.Focus(n)
	}
}

func (s *Server) snapshot(id string) Response {
	resp := Response{ID: id}
	if s.deps.Service != nil {
		resp.State = s.deps.Service.State().String()
		resp.QueryState = s.deps.Service.QueryState().String()
	}
	if s.deps.View != nil {
		resp.Visible = s.deps.View.Visible()
		resp.HTML = s.deps.View.HTML()
	}
	return resp
}

// send writes one frame. Pushes come from timer goroutines, so writes are
// serialized.
func (s *Server) send(v any) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if err := s.enc.Encode(v); err != nil {
		s.logger.Errorf("Encoding response: %v", err)
	}
}

// loadMedia emits a load frame and waits for the host's loaded answer.
func (s *Server) loadMedia(ctx context.Context, url string) error {
	s.mu.Lock()
	s.loadSeq++
	id := "load_" + strconv.Itoa(s.loadSeq)
	ch := make(chan string, 1)
	s.loads[id] = ch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.loads, id)
		s.mu.Unlock()
	}()

	s.send(LoadFrame{ID: id, URL: url})
	select {
	case code := <-ch:
		if code != "" {
			return &playback.LoadError{Code: code}
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for %s: %w", id, ctx.Err())
	}
}

func (s *Server) resolveLoad(id, code string) bool {
	s.mu.Lock()
	ch, ok := s.loads[id]
	s.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case ch <- code:
	default:
	}
	return true
}
