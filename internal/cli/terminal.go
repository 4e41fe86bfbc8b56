package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/bastiangx/nascast/internal/utils"
	"github.com/bastiangx/nascast/pkg/search"
	"github.com/charmbracelet/lipgloss"
)

const titleWidth = 48

// Printer writes rendered result sets to a terminal.
type Printer struct {
	mu  sync.Mutex
	out io.Writer

	header lipgloss.Style
	title  lipgloss.Style
	label  lipgloss.Style
	url    lipgloss.Style
	muted  lipgloss.Style
}

// NewPrinter styles output with lipgloss unless color is false.
func NewPrinter(out io.Writer, color bool) *Printer {
	p := &Printer{out: out}
	if !color {
		return p
	}
	p.header = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})
	p.title = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	p.label = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#907aa9", Dark: "#c4a7e7"})
	p.url = lipgloss.NewStyle().Faint(true)
	p.muted = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#9893a5", Dark: "#6e6a86"})
	return p
}

// PrintResult writes one result set, section by section.
func (p *Printer) PrintResult(res search.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if res.Grouped.Empty() {
		fmt.Fprintln(p.out, p.muted.Render(fmt.Sprintf("No results for “%s”", res.Query)))
		return
	}

	var b strings.Builder
	for _, section := range res.Grouped.Sections() {
		b.WriteString(p.header.Render(fmt.Sprintf("%s (%d)", section.Label(), len(section.Entries))))
		b.WriteByte('\n')
		for i, e := range section.Entries {
			title := fmt.Sprintf("%-*s", titleWidth, utils.Ellipsize(e.Title, titleWidth))
			fmt.Fprintf(&b, "%2d. %s %s %s\n", i+1, p.title.Render(title), p.label.Render(e.TypeLabel()), p.url.Render(e.URL))
		}
	}
	fmt.Fprint(p.out, b.String())
}

// Printf writes a muted status line.
func (p *Printer) Printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, p.muted.Render(fmt.Sprintf(format, args...)))
}
