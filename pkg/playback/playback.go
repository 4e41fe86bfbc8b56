// Package playback is the boundary to the remote playback collaborator. The
// search widget never depends on it; the host only asks it to load media
// when a session starts.
package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bastiangx/nascast/internal/logger"
	"github.com/charmbracelet/log"
)

// Session is a remote playback session.
type Session interface {
	// OnSessionStarted registers fn for the "session started" event and
	// returns a function that removes it.
	OnSessionStarted(fn func()) (unsubscribe func())

	// LoadMedia asks the receiver to play url.
	LoadMedia(ctx context.Context, url string) error
}

// LoadError carries the receiver's error code.
type LoadError struct {
	Code string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("media load failed: %s", e.Code)
}

const defaultLoadTimeout = 30 * time.Second

// Bridge issues the load command on session start and logs the outcome.
// Failures stay here: they never reach search state.
type Bridge struct {
	session Session
	timeout time.Duration
	logger  *log.Logger

	mu   sync.Mutex
	last error
}

func NewBridge(s Session, l *log.Logger) *Bridge {
	if l == nil {
		l = logger.New("playback")
	}
	return &Bridge{session: s, timeout: defaultLoadTimeout, logger: l}
}

// Attach loads the URL returned by media every time a session starts, until
// detach is called. An empty URL skips the load.
func (b *Bridge) Attach(ctx context.Context, media func() string) (detach func()) {
	return b.session.OnSessionStarted(func() {
		url := media()
		if url == "" {
			b.logger.Debug("Session started without media")
			return
		}
		b.load(ctx, url)
	})
}

// Static returns a media source for a fixed URL.
func Static(url string) func() string {
	return func() string { return url }
}

// LastError returns the outcome of the most recent load.
func (b *Bridge) LastError() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

func (b *Bridge) load(ctx context.Context, mediaURL string) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	err := b.session.LoadMedia(ctx, mediaURL)
	b.mu.Lock()
	b.last = err
	b.mu.Unlock()

	if err == nil {
		b.logger.Info("Media loaded", "url", mediaURL)
		return
	}
	var le *LoadError
	if errors.As(err, &le) {
		b.logger.Error("Media load failed", "url", mediaURL, "code", le.Code)
		return
	}
	b.logger.Error("Media load failed", "url", mediaURL, "err", err)
}

// Hub is a Session whose transport is supplied by the host. Started fans
// out the session-started event; Loader performs the load.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func()
	loader func(ctx context.Context, url string) error
}

func NewHub(loader func(ctx context.Context, url string) error) *Hub {
	return &Hub{subs: make(map[int]func()), loader: loader}
}

func (h *Hub) OnSessionStarted(fn func()) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// Started notifies every subscriber that a session began.
func (h *Hub) Started() {
	h.mu.Lock()
	fns := make([]func(), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (h *Hub) LoadMedia(ctx context.Context, url string) error {
	if h.loader == nil {
		return &LoadError{Code: "no_receiver"}
	}
	return h.loader(ctx, url)
}
