// Package page models the host page the search widget lives in: the parsed
// document, the bound element identities and keyboard focus.
package page

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/bastiangx/nascast/internal/utils"
	"golang.org/x/net/html"
)

// ErrElementMissing is returned when a bound element is absent from the page.
var ErrElementMissing = errors.New("page element missing")

// ClearVisibleClass reveals the clear affordance.
const ClearVisibleClass = "visible"

// Selectors locate the widget's elements.
type Selectors struct {
	Input     string
	Clear     string
	Results   string
	Container string
}

func DefaultSelectors() Selectors {
	return Selectors{
		Input:     "#search-input",
		Clear:     "#search-clear",
		Results:   "#search-results",
		Container: ".search-container",
	}
}

// DefaultMarkup is a minimal host page carrying every bound element.
const DefaultMarkup = `<!DOCTYPE html>
<html><head><title>Library</title></head>
<body>
<header>
  <div class="search-container">
    <input id="search-input" type="search" placeholder="Search movies and shows" autocomplete="off">
    <button id="search-clear" class="search-clear" type="button" aria-label="Clear search">×</button>
    <div id="search-results" class="search-results"></div>
  </div>
</header>
<main id="library"><h1>Library</h1></main>
</body></html>`

// Page is a parsed host page with the widget's elements bound.
type Page struct {
	mu  sync.Mutex
	doc *goquery.Document

	input     *html.Node
	clear     *html.Node
	results   *html.Node
	container *html.Node
	focused   *html.Node
}

// Parse reads markup and binds sel. Any missing element fails the whole
// binding so nothing is partially wired.
func Parse(r io.Reader, sel Selectors) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return Bind(doc, sel)
}

// ParseString is Parse over an in-memory page.
func ParseString(markup string, sel Selectors) (*Page, error) {
	return Parse(strings.NewReader(markup), sel)
}

func Bind(doc *goquery.Document, sel Selectors) (*Page, error) {
	p := &Page{doc: doc}
	for _, b := range []struct {
		name     string
		selector string
		dst      **html.Node
	}{
		{"input", sel.Input, &p.input},
		{"clear", sel.Clear, &p.clear},
		{"results", sel.Results, &p.results},
		{"container", sel.Container, &p.container},
	} {
		found := doc.Find(b.selector)
		if b.selector == "" || found.Length() == 0 {
			return nil, fmt.Errorf("%w: %s (%q)", ErrElementMissing, b.name, b.selector)
		}
		*b.dst = found.Get(0)
	}
	return p, nil
}

// Locker guards the document tree. Renderers writing into Results share it.
func (p *Page) Locker() sync.Locker {
	return &p.mu
}

func (p *Page) Input() *html.Node     { return p.input }
func (p *Page) Clear() *html.Node     { return p.clear }
func (p *Page) Results() *html.Node   { return p.results }
func (p *Page) Container() *html.Node { return p.container }

// Value returns the input's current value.
func (p *Page) Value() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, _ := utils.Attr(p.input, "value")
	return v
}

// SetValue sets the input's value. An empty value drops the attribute.
func (p *Page) SetValue(v string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v == "" {
		utils.RemoveAttr(p.input, "value")
		return
	}
	utils.SetAttr(p.input, "value", v)
}

// ShowClear toggles the clear affordance.
func (p *Page) ShowClear(show bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if show {
		utils.AddClass(p.clear, ClearVisibleClass)
	} else {
		utils.RemoveClass(p.clear, ClearVisibleClass)
	}
}

func (p *Page) ClearVisible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return utils.HasClass(p.clear, ClearVisibleClass)
}

// Focus moves keyboard focus to n.
func (p *Page) Focus(n *html.Node) {
	p.mu.Lock()
	p.focused = n
	p.mu.Unlock()
}

// Blur drops focus from n if it holds it.
func (p *Page) Blur(n *html.Node) {
	p.mu.Lock()
	if p.focused == n {
		p.focused = nil
	}
	p.mu.Unlock()
}

func (p *Page) Focused() *html.Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.focused
}

func (p *Page) InputFocused() bool {
	return p.Focused() == p.input
}

// Contains reports whether target sits inside the widget container.
func (p *Page) Contains(target *html.Node) bool {
	return p.Within(target, p.container)
}

// Within reports whether target is ancestor or one of its descendants.
func (p *Page) Within(target, ancestor *html.Node) bool {
	if ancestor == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for n := target; n != nil; n = n.Parent {
		if n == ancestor {
			return true
		}
	}
	return false
}

// Find returns the first node matching selector, or nil.
func (p *Page) Find(selector string) *html.Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	found := p.doc.Find(selector)
	if found.Length() == 0 {
		return nil
	}
	return found.Get(0)
}

// ByID resolves an element id, as sent by event sources that name click targets.
func (p *Page) ByID(id string) *html.Node {
	if id == "" {
		return nil
	}
	return p.Find(`[id="` + strings.ReplaceAll(id, `"`, `\"`) + `"]`)
}

// HTML renders the whole document.
func (p *Page) HTML() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return utils.OuterHTML(p.doc.Get(0))
}
