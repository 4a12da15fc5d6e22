package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const helpMarkdown = `# Widget board

## Dashboard

| Key | Action |
|-----|--------|
| h j k l | move between cards |
| x | remove the focused card |
| y | copy the focused card's chart data |
| a | open the **Add Widget** sidebar |
| e | export the dashboard |
| ? | toggle this help |
| q | quit |

## Sidebar

| Key | Action |
|-----|--------|
| tab, 1-9 | choose a category |
| j k | move in the card list |
| space | select or unselect a card |
| d | delete selected cards |
| n | start a new card |
| esc, a | close the sidebar |

## New card

| Key | Action |
|-----|--------|
| tab, shift+tab | next or previous input |
| ← → | change chart type |
| 1-9 | on the chart selector: switch category and discard the draft |
| ctrl+n | add a field row |
| ctrl+d | remove the focused row |
| enter, ctrl+s | add the card |
| esc | discard and close |

Fields with an empty name are dropped when the card is added.
Bar charts use a fixed 0 to 100 axis.
`

// renderHelp renders the help overlay for the given width. glamour output is
// used when available, otherwise the raw markdown.
func renderHelp(theme Theme, width, height int) string {
	wrap := clamp(width-8, 30, 80)
	body := helpMarkdown
	if r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	); err == nil {
		if out, err := r.Render(helpMarkdown); err == nil {
			body = strings.TrimRight(out, "\n ")
		}
	}

	box := theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Padding(0, 1).
		Render(body + "\n\n" + theme.MutedText.Italic(true).Render("? or esc to close"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
