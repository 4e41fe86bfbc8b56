// Package cli drives the search widget from a terminal for debugging: each
// line is an input event, and lines starting with ":" are other interactions.
package cli

import (
	"bufio"
	"io"
	"strings"

	"github.com/bastiangx/nascast/pkg/controller"
	"github.com/bastiangx/nascast/pkg/page"
	"github.com/bastiangx/nascast/pkg/search"
	"github.com/charmbracelet/log"
)

const help = `type a query and press Enter; results appear after the quiet period.
  :clear        activate the clear button
  :esc          press Escape in the input
  :click <id>   click the element with that id (empty clicks outside)
  :k            press the focus shortcut
  :state        show session and query state
  :q            quit`

// InputHandler reads interactions line by line and feeds the controller.
type InputHandler struct {
	ctrl    *controller.Controller
	svc     *search.Service
	page    *page.Page
	printer *Printer
	in      io.Reader
}

// NewInputHandler wires the handler and prints every rendered result set.
func NewInputHandler(ctrl *controller.Controller, svc *search.Service, p *page.Page, printer *Printer, in io.Reader) *InputHandler {
	h := &InputHandler{ctrl: ctrl, svc: svc, page: p, printer: printer, in: in}
	svc.OnRender(printer.PrintResult)
	return h
}

// Start runs the loop until the input closes or :q.
func (h *InputHandler) Start() error {
	h.printer.Printf("nascast search CLI")
	h.printer.Printf("%s", help)
	if !h.ctrl.Active() {
		log.Warn("Search widget not found on the page, input is ignored")
	}

	scanner := bufio.NewScanner(h.in)
	for scanner.Scan() {
		if !h.handleLine(scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}

// handleLine processes one line and reports whether to keep reading.
func (h *InputHandler) handleLine(line string) bool {
	cmd, arg, isCmd := parseCommand(line)
	if !isCmd {
		if h.page != nil {
			h.page.Focus(h.page.Input())
		}
		h.dispatch(&controller.Event{Type: controller.EventInput, Value: line})
		return true
	}

	switch cmd {
	case "q", "quit":
		return false
	case "clear":
		if h.page != nil {
			h.dispatch(&controller.Event{Type: controller.EventClick, Target: h.page.Clear()})
		}
	case "esc", "escape":
		h.dispatch(&controller.Event{Type: controller.EventKeyDown, Key: "Escape"})
	case "click":
		var ev controller.Event
		ev.Type = controller.EventClick
		if h.page != nil {
			ev.Target = h.page.ByID(arg)
		}
		h.dispatch(&ev)
	case "k":
		h.dispatch(&controller.Event{Type: controller.EventKeyDown, Key: "k", Mods: controller.PlatformModifier()})
	case "state":
		h.printer.Printf("session=%s query=%s last=%q", h.svc.State(), h.svc.QueryState(), h.svc.Query())
	case "help", "h":
		h.printer.Printf("%s", help)
	default:
		log.Warnf("Unknown command :%s", cmd)
	}
	return true
}

func (h *InputHandler) dispatch(ev *controller.Event) {
	fired := h.ctrl.Dispatch(ev)
	log.Debug("Dispatched", "event", ev.Type, "fired", fired)
}

// parseCommand splits ":click library" into ("click", "library").
func parseCommand(line string) (cmd, arg string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, ":") {
		return "", "", false
	}
	cmd, arg, _ = strings.Cut(strings.TrimPrefix(trimmed, ":"), " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg), true
}
