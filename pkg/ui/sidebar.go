package ui

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/widgetboard/pkg/dashboard"
)

// renderSidebar draws the "Add Widget" panel for the current phase.
func (m Model) renderSidebar(height int) string {
	inner := m.sidebarWidth - 4
	var b strings.Builder

	b.WriteString(m.theme.PrimaryBold.Render("Add Widget"))
	b.WriteString("\n\n")
	b.WriteString(m.renderCategoryTabs(inner))
	b.WriteString("\n\n")

	switch m.state.Phase() {
	case dashboard.PhaseBrowsing:
		b.WriteString(m.theme.MutedText.Render("Choose a category with tab or 1-9."))
	case dashboard.PhaseCategorySelected:
		b.WriteString(m.renderChecklist(inner))
	case dashboard.PhaseDraft:
		b.WriteString(m.form.View(m.state.SelectedCategory(), inner))
	}

	return m.theme.FocusedPanel.
		Width(m.sidebarWidth - 2).
		Height(max(height-2, 1)).
		Render(b.String())
}

func (m Model) renderCategoryTabs(width int) string {
	var tabs []string
	used := 0
	for i, c := range m.state.Categories() {
		label := fmt.Sprintf("%d %s", i+1, c)
		style := m.theme.Tab
		if c == m.state.SelectedCategory() {
			style = m.theme.ActiveTab
		}
		tab := style.Render(label)
		w := len([]rune(label)) + 2
		if used > 0 && used+w > width {
			tabs = append(tabs, "\n")
			used = 0
		}
		tabs = append(tabs, tab)
		used += w
	}
	return strings.Join(tabs, "")
}

// renderChecklist lists the active category's cards with selection marks.
func (m Model) renderChecklist(width int) string {
	cat := m.state.SelectedCategory()
	cards := m.state.Cards(cat)
	var b strings.Builder
	if len(cards) == 0 {
		b.WriteString(m.theme.MutedText.Render("No cards in " + string(cat) + "."))
	}
	for i, card := range cards {
		mark := "[ ]"
		if m.state.IsSelected(card.ID) {
			mark = m.theme.CheckMark.Render("[x]")
		}
		line := fmt.Sprintf("%s %s", mark, padRight(card.Name, width-12))
		line += " " + m.theme.MutedText.Render(string(card.ChartType))
		if i == m.listCursor {
			line = m.theme.Selected.Render(line)
		} else {
			line = " " + line
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	if n := len(m.state.Selection()); n > 0 {
		b.WriteString(m.theme.MutedText.Render(fmt.Sprintf("%d selected · d deletes", n)) + "\n")
	}
	b.WriteString(m.theme.PrimaryBold.Render("n") + m.theme.MutedText.Render(" add to "+string(cat)))
	return b.String()
}
