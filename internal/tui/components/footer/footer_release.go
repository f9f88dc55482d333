//go:build release

package footer

import (
	"charm.land/lipgloss/v2"

	"github.com/garrettladley/fixit/internal/tui/theme"
)

var releaseNameStyle = lipgloss.NewStyle().Foreground(theme.ColorAccent)

func (f Footer) leftContent() string {
	return releaseNameStyle.Render("fixit")
}
