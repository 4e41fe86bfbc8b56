// Package render turns grouped results into markup inside the results
// container. All entry-derived text goes through text nodes and attribute
// values, so html.Render escapes it.
package render

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bastiangx/nascast/internal/logger"
	"github.com/bastiangx/nascast/internal/utils"
	"github.com/bastiangx/nascast/pkg/catalog"
	"github.com/bastiangx/nascast/pkg/search"
	"github.com/charmbracelet/log"
	"golang.org/x/net/html"
)

const (
	DefaultPlaceholderURL = "placeholder.svg"

	// VisibleClass marks the results container as shown.
	VisibleClass = "visible"

	// posterFallbackHandler swaps in data-fallback once, without touching
	// the rest of the item. It never interpolates entry data.
	posterFallbackHandler = "this.onerror=null;this.src=this.dataset.fallback"
)

// ErrNoContainer is returned when the renderer has nowhere to write.
var ErrNoContainer = errors.New("results container is missing")

type Options struct {
	PlaceholderURL string
	Logger         *log.Logger

	// Locker guards the document the container belongs to. Defaults to a
	// private mutex.
	Locker sync.Locker
}

// Renderer owns the content and visibility of one results container.
type Renderer struct {
	mu          sync.Locker
	container   *html.Node
	placeholder string
	logger      *log.Logger
}

func New(container *html.Node, opts Options) (*Renderer, error) {
	if container == nil {
		return nil, ErrNoContainer
	}
	if opts.PlaceholderURL == "" {
		opts.PlaceholderURL = DefaultPlaceholderURL
	}
	if opts.Logger == nil {
		opts.Logger = logger.New("render")
	}
	if opts.Locker == nil {
		opts.Locker = &sync.Mutex{}
	}
	return &Renderer{
		mu:          opts.Locker,
		container:   container,
		placeholder: opts.PlaceholderURL,
		logger:      opts.Logger,
	}, nil
}

// Render replaces the container content and marks it visible.
func (r *Renderer) Render(res search.GroupedResult, query string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	utils.RemoveChildren(r.container)
	if res.Empty() {
		r.container.AppendChild(noResults(query))
	} else {
		for _, section := range res.Sections() {
			r.container.AppendChild(r.section(section))
		}
	}
	utils.AddClass(r.container, VisibleClass)
	r.logger.Debugf("Rendered %d results for %q", res.Len(), query)
}

// Hide removes visibility and leaves the content in place.
func (r *Renderer) Hide() {
	r.mu.Lock()
	defer r.mu.Unlock()
	utils.RemoveClass(r.container, VisibleClass)
}

func (r *Renderer) Visible() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return utils.HasClass(r.container, VisibleClass)
}

// HTML returns the current container content.
func (r *Renderer) HTML() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out, err := utils.InnerHTML(r.container)
	if err != nil {
		r.logger.Errorf("Failed to serialize results: %v", err)
		return ""
	}
	return out
}

func noResults(query string) *html.Node {
	div := utils.Element("div", "search-no-results")
	div.AppendChild(utils.Text(fmt.Sprintf("No results for “%s”", query)))
	return div
}

func (r *Renderer) section(s search.Section) *html.Node {
	sec := utils.Element("div", "search-section")
	utils.SetAttr(sec, "data-type", s.Type.String())

	header := utils.Element("div", "search-section-header")
	header.AppendChild(utils.Text(fmt.Sprintf("%s (%d)", s.Label(), len(s.Entries))))
	sec.AppendChild(header)

	for _, e := range s.Entries {
		sec.AppendChild(r.item(e))
	}
	return sec
}

func (r *Renderer) item(e catalog.Entry) *html.Node {
	a := utils.Element("a", "search-result")
	utils.SetAttr(a, "href", SafeURL(e.URL, "#", false))

	poster := r.placeholder
	if e.PosterURL != "" {
		poster = SafeURL(e.PosterURL, r.placeholder, true)
	}
	img := utils.Element("img", "search-result-poster")
	utils.SetAttr(img, "src", poster)
	utils.SetAttr(img, "alt", "")
	utils.SetAttr(img, "loading", "lazy")
	utils.SetAttr(img, "data-fallback", r.placeholder)
	utils.SetAttr(img, "onerror", posterFallbackHandler)
	a.AppendChild(img)

	info := utils.Element("div", "search-result-info")
	title := utils.Element("div", "search-result-title")
	title.AppendChild(utils.Text(e.Title))
	label := utils.Element("div", "search-result-type")
	label.AppendChild(utils.Text(e.TypeLabel()))
	info.AppendChild(title)
	info.AppendChild(label)
	a.AppendChild(info)
	return a
}
