package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Theme holds the styles the bell UI draws with. The zero value is not
// usable; call New.
type Theme struct {
	background color.Color
	base       lipgloss.Style
	accent     lipgloss.Style
	dim        lipgloss.Style
	selected   lipgloss.Style
	badge      lipgloss.Style
}

func New() Theme {
	return Theme{
		background: ColorBgDark,
		base:       lipgloss.NewStyle().Foreground(ColorWhite),
		accent:     lipgloss.NewStyle().Foreground(ColorAccent),
		dim:        lipgloss.NewStyle().Foreground(ColorDim),
		selected:   lipgloss.NewStyle().Foreground(ColorBgDark).Background(ColorAccent),
		badge: lipgloss.NewStyle().
			Foreground(ColorWhite).
			Background(ColorBadge).
			Bold(true).
			Padding(0, 1),
	}
}

func (t Theme) Base() lipgloss.Style       { return t.base }
func (t Theme) TextAccent() lipgloss.Style { return t.accent }
func (t Theme) Dim() lipgloss.Style        { return t.dim }
func (t Theme) Selected() lipgloss.Style   { return t.selected }

// Badge is the pill behind the unread count.
func (t Theme) Badge() lipgloss.Style { return t.badge }

func (t Theme) UnreadMarker() string {
	return lipgloss.NewStyle().Foreground(ColorBadge).Render("•")
}

// Avatar colors a sender initial; administrators get their own hue.
func (t Theme) Avatar(admin bool) lipgloss.Style {
	c := ColorAccent
	if admin {
		c = ColorAdmin
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

// Panel is a rounded bordered box.
func (t Theme) Panel(border color.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border)
}

func (t Theme) Background() color.Color { return t.background }
