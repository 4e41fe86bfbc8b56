package controller

import (
	"runtime"
	"strings"

	"golang.org/x/net/html"
)

type EventType int

const (
	EventInput EventType = iota
	EventClick
	EventKeyDown
)

func (t EventType) String() string {
	switch t {
	case EventInput:
		return "input"
	case EventClick:
		return "click"
	case EventKeyDown:
		return "keydown"
	}
	return "unknown"
}

// Modifiers is a bit set of held modifier keys.
type Modifiers uint8

const (
	ModCtrl Modifiers = 1 << iota
	ModMeta
	ModAlt
	ModShift
)

// ParseModifiers reads names like "ctrl", "meta", "cmd", "alt", "shift".
// Unknown names are ignored.
func ParseModifiers(names ...string) Modifiers {
	var m Modifiers
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "ctrl", "control":
			m |= ModCtrl
		case "meta", "cmd", "command", "super":
			m |= ModMeta
		case "alt", "option":
			m |= ModAlt
		case "shift":
			m |= ModShift
		}
	}
	return m
}

// PlatformModifier is the modifier used for application shortcuts:
// Meta on macOS and Ctrl elsewhere.
func PlatformModifier() Modifiers {
	if runtime.GOOS == "darwin" {
		return ModMeta
	}
	return ModCtrl
}

// Event is one UI interaction delivered to the controller.
type Event struct {
	Type   EventType
	Value  string
	Key    string
	Mods   Modifiers
	Target *html.Node

	defaultPrevented bool
}

// PreventDefault suppresses the host's default handling of the event.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}
