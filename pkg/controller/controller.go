// Package controller wires page interactions to the search service through a
// table of named rules. Each rule matches and applies independently.
package controller

import (
	"strings"

	"github.com/bastiangx/nascast/internal/logger"
	"github.com/bastiangx/nascast/internal/utils"
	"github.com/bastiangx/nascast/pkg/page"
	"github.com/charmbracelet/log"
)

const (
	RuleInputChanged    = "input-changed"
	RuleClearClicked    = "clear-clicked"
	RuleEscapePressed   = "escape-pressed"
	RuleOutsideClicked  = "outside-clicked"
	RuleShortcutPressed = "shortcut-pressed"
)

// Search is the part of the search service the controller drives.
type Search interface {
	SubmitQuery(raw string)
	Clear()
	Hide()
}

// Rule is one interaction: when Match holds, Apply runs.
type Rule struct {
	Name  string
	Match func(c *Controller, e *Event) bool
	Apply func(c *Controller, e *Event)
}

type Options struct {
	// ShortcutKey with ShortcutModifier focuses the input from anywhere.
	ShortcutKey      string
	ShortcutModifier Modifiers
	Logger           *log.Logger
}

func DefaultOptions() Options {
	return Options{
		ShortcutKey:      "k",
		ShortcutModifier: PlatformModifier(),
	}
}

type Controller struct {
	page   *page.Page
	search Search
	rules  []Rule
	opts   Options
	logger *log.Logger
}

// Init binds the controller to p. Without a page there is nothing to wire,
// so the controller stays inert and Dispatch does nothing.
func Init(p *page.Page, s Search, opts Options) *Controller {
	defaults := DefaultOptions()
	if opts.ShortcutKey == "" {
		opts.ShortcutKey = defaults.ShortcutKey
	}
	if opts.ShortcutModifier == 0 {
		opts.ShortcutModifier = defaults.ShortcutModifier
	}
	if opts.Logger == nil {
		opts.Logger = logger.New("controller")
	}

	c := &Controller{opts: opts, logger: opts.Logger}
	if p == nil || p.Input() == nil || s == nil {
		c.logger.Debug("Search input not found, controller inert")
		return c
	}
	c.page = p
	c.search = s
	c.rules = DefaultRules()
	return c
}

// Active reports whether the controller was wired to a page.
func (c *Controller) Active() bool {
	return c.page != nil
}

// Rules returns the wired rules in dispatch order.
func (c *Controller) Rules() []Rule {
	return c.rules
}

// Dispatch runs every rule matching e and returns the names that fired.
func (c *Controller) Dispatch(e *Event) []string {
	if !c.Active() || e == nil {
		return nil
	}
	var fired []string
	for _, r := range c.rules {
		if r.Match(c, e) {
			r.Apply(c, e)
			fired = append(fired, r.Name)
		}
	}
	if len(fired) > 0 {
		c.logger.Debugf("%s event fired %v", e.Type, fired)
	}
	return fired
}

// DefaultRules is the widget's interaction table.
func DefaultRules() []Rule {
	return []Rule{
		{Name: RuleInputChanged, Match: matchInput, Apply: applyInput},
		{Name: RuleClearClicked, Match: matchClear, Apply: applyClear},
		{Name: RuleEscapePressed, Match: matchEscape, Apply: applyEscape},
		{Name: RuleOutsideClicked, Match: matchOutside, Apply: applyOutside},
		{Name: RuleShortcutPressed, Match: matchShortcut, Apply: applyShortcut},
	}
}

func matchInput(c *Controller, e *Event) bool {
	return e.Type == EventInput && (e.Target == nil || e.Target == c.page.Input())
}

func applyInput(c *Controller, e *Event) {
	c.page.SetValue(e.Value)
	query := utils.NormalizeQuery(e.Value)
	c.search.SubmitQuery(query)
	if query == "" {
		c.page.ShowClear(false)
		c.search.Hide()
		return
	}
	c.page.ShowClear(true)
}

func matchClear(c *Controller, e *Event) bool {
	return e.Type == EventClick && c.page.Within(e.Target, c.page.Clear())
}

func applyClear(c *Controller, _ *Event) {
	c.page.SetValue("")
	c.page.ShowClear(false)
	c.search.Clear()
	c.page.Focus(c.page.Input())
}

func matchEscape(c *Controller, e *Event) bool {
	return e.Type == EventKeyDown && e.Key == "Escape" && c.page.InputFocused()
}

func applyEscape(c *Controller, _ *Event) {
	c.search.Hide()
	c.page.Blur(c.page.Input())
}

func matchOutside(c *Controller, e *Event) bool {
	return e.Type == EventClick && !c.page.Contains(e.Target)
}

func applyOutside(c *Controller, _ *Event) {
	c.search.Hide()
}

func matchShortcut(c *Controller, e *Event) bool {
	return e.Type == EventKeyDown &&
		strings.EqualFold(e.Key, c.opts.ShortcutKey) &&
		e.Mods&c.opts.ShortcutModifier != 0
}

func applyShortcut(c *Controller, e *Event) {
	e.PreventDefault()
	c.page.Focus(c.page.Input())
}
