package footer

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Footer is the bottom bar: build info on the left, hints on the right.
type Footer struct {
	hints   string
	width   int
	padding int
}

func New(hints string, width int) Footer {
	return Footer{
		hints:   hints,
		width:   width,
		padding: 2,
	}
}

func (f Footer) Render() string {
	left := f.leftContent()
	gap := f.width - lipgloss.Width(left) - lipgloss.Width(f.hints) - f.padding*2

	// narrow terminals drop build info before hints
	if gap < 1 {
		left, gap = "", max(f.width-lipgloss.Width(f.hints)-f.padding*2, 0)
	}

	return lipgloss.NewStyle().
		PaddingLeft(f.padding).
		PaddingRight(f.padding).
		PaddingBottom(1).
		Render(left + strings.Repeat(" ", gap) + f.hints)
}
