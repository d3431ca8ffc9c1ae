package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	runewidth "github.com/mattn/go-runewidth"

	"helm/internal/types"
)

var (
	sidebarTitleStyle    = lipgloss.NewStyle().Bold(true)
	sidebarItemStyle     = lipgloss.NewStyle()
	sidebarSelectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	sidebarKindStyle     = lipgloss.NewStyle().Faint(true)
)

// renderSidebar draws the session list pane. The selected session is the
// one whose transcript fills the main viewport.
func renderSidebar(sessions []*types.Session, activeID string, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	lines := make([]string, 0, height)
	lines = append(lines, sidebarTitleStyle.Render(padToWidth("Sessions", width)))

	if len(sessions) == 0 {
		lines = append(lines, sidebarKindStyle.Render(padToWidth("(none)", width)))
	}
	for _, session := range sessions {
		if len(lines) >= height {
			break
		}
		label := sessionLabel(session)
		line := padToWidth(" "+label, width)
		if session.ID == activeID {
			lines = append(lines, sidebarSelectedStyle.Render(line))
		} else {
			lines = append(lines, sidebarItemStyle.Render(line))
		}
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func sessionLabel(session *types.Session) string {
	if session == nil {
		return ""
	}
	marker := "●"
	if session.Kind == types.SessionKindAutonomous {
		marker = "◆"
	}
	title := session.Title
	if title == "" {
		title = session.ID
	}
	return marker + " " + title
}

func padToWidth(text string, width int) string {
	text = runewidth.Truncate(text, width, "…")
	if pad := width - runewidth.StringWidth(text); pad > 0 {
		return text + strings.Repeat(" ", pad)
	}
	return text
}
