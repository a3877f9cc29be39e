package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/boundary/internal/sphere"
)

// stateColors maps each sphere state to its display color.
var stateColors = map[sphere.State]lipgloss.Color{
	sphere.StateStable:   lipgloss.Color("#8BC34A"),
	sphere.StateFloat:    lipgloss.Color("#42A5F5"),
	sphere.StateFreeze:   lipgloss.Color("#80DEEA"),
	sphere.StateDissolve: lipgloss.Color("#EF5350"),
}

// palette renders text for one output stream. Colors are dropped when the
// stream is not a terminal.
type palette struct {
	states map[sphere.State]lipgloss.Style
	header lipgloss.Style
	muted  lipgloss.Style
	ok     lipgloss.Style
	fail   lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)

	p := &palette{
		states: make(map[sphere.State]lipgloss.Style, len(stateColors)),
		header: r.NewStyle().Bold(true),
		muted:  r.NewStyle().Faint(true),
		ok:     r.NewStyle().Foreground(stateColors[sphere.StateStable]),
		fail:   r.NewStyle().Foreground(stateColors[sphere.StateDissolve]),
	}
	for st, c := range stateColors {
		p.states[st] = r.NewStyle().Foreground(c).Bold(true).Width(8)
	}
	return p
}

// state renders a state name padded to a fixed column width.
func (p *palette) state(s sphere.State) string {
	return p.states[s].Render(s.String())
}

// mark renders a pass/fail check mark.
func (p *palette) mark(pass bool) string {
	if pass {
		return p.ok.Render("✓")
	}
	return p.fail.Render("✗")
}
