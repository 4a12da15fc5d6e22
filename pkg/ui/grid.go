package ui

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/widgetboard/pkg/chart"
	"github.com/vanderheijden86/widgetboard/pkg/widget"

	"github.com/charmbracelet/lipgloss"
)

// cardsPerRow is how many cells fit side by side in width columns.
func (m Model) cardsPerRow(width int) int {
	n := (width + 1) / (m.cardWidth + 1)
	if n < 1 {
		return 1
	}
	return n
}

// focusedCell returns the card under the grid cursor wired to the store.
func (m Model) focusedCell() (widget.Cell, bool) {
	cats := m.state.Categories()
	if m.cursorCat < 0 || m.cursorCat >= len(cats) {
		return widget.Cell{}, false
	}
	cat := cats[m.cursorCat]
	cards := m.state.Cards(cat)
	if m.cursorIdx < 0 || m.cursorIdx >= len(cards) {
		return widget.Cell{}, false
	}
	return widget.NewCell(cards[m.cursorIdx], cat, m.store), true
}

// moveCursor steps the grid cursor. Vertical moves that leave a category
// continue into the nearest non-empty neighbour in that direction.
func (m *Model) moveCursor(dx, dy int) {
	cats := m.state.Categories()
	if len(cats) == 0 {
		return
	}
	n := len(m.state.Cards(cats[m.cursorCat]))
	if dx != 0 && n > 0 {
		m.cursorIdx = clamp(m.cursorIdx+dx, 0, n-1)
		return
	}
	if dy == 0 {
		return
	}

	perRow := m.cardsPerRow(m.gridWidth())
	if next := m.cursorIdx + dy*perRow; n > 0 && next >= 0 && next < n {
		m.cursorIdx = next
		return
	}
	col := m.cursorIdx % perRow
	for c := m.cursorCat + dy; c >= 0 && c < len(cats); c += dy {
		count := len(m.state.Cards(cats[c]))
		if count == 0 {
			continue
		}
		m.cursorCat = c
		if dy > 0 {
			m.cursorIdx = min(col, count-1)
		} else {
			lastRow := (count - 1) / perRow * perRow
			m.cursorIdx = min(lastRow+col, count-1)
		}
		return
	}
}

// clampCursor keeps the cursor on an existing card after removals.
func (m *Model) clampCursor() {
	cats := m.state.Categories()
	m.cursorCat = clamp(m.cursorCat, 0, max(len(cats)-1, 0))
	if len(cats) == 0 {
		m.cursorIdx = 0
		return
	}
	n := len(m.state.Cards(cats[m.cursorCat]))
	m.cursorIdx = clamp(m.cursorIdx, 0, max(n-1, 0))
}

// renderCell draws one widget cell: name header plus chart.
func (m Model) renderCell(cell widget.Cell, focused bool) string {
	card := cell.Card()
	r := m.theme.Renderer
	inner := m.cardWidth - 4

	badge := RenderChartBadge(r, string(card.ChartType))
	name := truncateRunesHelper(card.Name, inner-lipgloss.Width(badge)-1, "…")
	nameStyle := r.NewStyle().Bold(true).Foreground(ColorText)
	if focused {
		nameStyle = m.theme.PrimaryBold
	}
	gap := max(inner-lipgloss.Width(name)-lipgloss.Width(badge), 1)
	header := nameStyle.Render(name) + strings.Repeat(" ", gap) + badge

	body := chart.Render(chart.Derive(card), chart.Options{
		Width:    inner,
		Renderer: r,
		Muted:    m.theme.Muted,
	})

	style := m.theme.Panel
	if focused {
		style = m.theme.FocusedPanel
	}
	return style.Width(m.cardWidth - 2).Render(header + "\n" + body)
}

// renderGrid draws every category as a section of cells and scrolls so the
// focused category stays in view.
func (m Model) renderGrid(width, height int) string {
	r := m.theme.Renderer
	perRow := m.cardsPerRow(width)

	var lines []string
	focusLine := 0
	for ci, cat := range m.state.Categories() {
		cards := m.state.Cards(cat)
		if ci == m.cursorCat {
			focusLine = len(lines)
		}
		title := m.theme.Header.Render(fmt.Sprintf("%s (%d)", cat, len(cards)))
		lines = append(lines, title)

		if len(cards) == 0 {
			lines = append(lines, m.theme.MutedText.Render("  No widgets yet. Press a to add one."), "")
			continue
		}
		for start := 0; start < len(cards); start += perRow {
			end := min(start+perRow, len(cards))
			cells := make([]string, 0, 2*(end-start))
			for i := start; i < end; i++ {
				focused := !m.state.IsSidebarOpen() && ci == m.cursorCat && i == m.cursorIdx
				if i > start {
					cells = append(cells, " ")
				}
				cells = append(cells, m.renderCell(widget.NewCell(cards[i], cat, m.store), focused))
			}
			row := lipgloss.JoinHorizontal(lipgloss.Top, cells...)
			if ci == m.cursorCat && m.cursorIdx >= start && m.cursorIdx < end {
				focusLine = len(lines)
			}
			lines = append(lines, strings.Split(row, "\n")...)
		}
		lines = append(lines, "")
	}

	if height > 0 && len(lines) > height {
		offset := clamp(focusLine, 0, len(lines)-height)
		lines = lines[offset : offset+height]
	}
	return r.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}
