package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vanderheijden86/widgetboard/pkg/dashboard"
	"github.com/vanderheijden86/widgetboard/pkg/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Input slots: card name, chart type, then name/color/percentage per row.
const (
	slotName = iota
	slotChart
	slotFirstField
	slotsPerRow = 3
)

type fieldRow struct {
	name  textinput.Model
	color textinput.Model
	pct   textinput.Model
}

// DraftForm is the "add card" form. It owns the text inputs; the draft data
// itself lives in dashboard.State and is written back with Apply.
type DraftForm struct {
	name  textinput.Model
	chart int // index into model.ChartTypes()
	rows  []fieldRow
	focus int
	theme Theme
}

// NewDraftForm builds inputs mirroring d and focuses the name input.
func NewDraftForm(d dashboard.Draft, theme Theme) DraftForm {
	f := DraftForm{
		name:  makeInput(d.Name, "Card name", 40, 24),
		theme: theme,
	}
	for i, t := range model.ChartTypes() {
		if t == d.ChartType {
			f.chart = i
		}
	}
	for _, fld := range d.Fields {
		f.rows = append(f.rows, makeRow(fld))
	}
	f.setFocus(slotName)
	return f
}

func makeInput(value, placeholder string, limit, width int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = width
	ti.SetValue(value)
	return ti
}

func makeRow(f model.Field) fieldRow {
	pct := ""
	if f.Percentage != 0 {
		pct = strconv.FormatFloat(f.Percentage, 'f', -1, 64)
	}
	return fieldRow{
		name:  makeInput(f.Name, "Field", 40, 12),
		color: makeInput(f.Color, "#rrggbb", 7, 7),
		pct:   makeInput(pct, "0", 8, 5),
	}
}

func (f DraftForm) slots() int { return slotFirstField + slotsPerRow*len(f.rows) }

// FocusedRow returns the field row holding focus, or -1 on the header inputs.
func (f DraftForm) FocusedRow() int {
	if f.focus < slotFirstField {
		return -1
	}
	return (f.focus - slotFirstField) / slotsPerRow
}

// OnChartSelector reports whether the chart type selector has focus.
func (f DraftForm) OnChartSelector() bool { return f.focus == slotChart }

// Rows returns the number of field rows.
func (f DraftForm) Rows() int { return len(f.rows) }

func (f *DraftForm) input(slot int) *textinput.Model {
	switch {
	case slot == slotName:
		return &f.name
	case slot >= slotFirstField && slot < f.slots():
		row := &f.rows[(slot-slotFirstField)/slotsPerRow]
		switch (slot - slotFirstField) % slotsPerRow {
		case 0:
			return &row.name
		case 1:
			return &row.color
		default:
			return &row.pct
		}
	}
	return nil
}

func (f *DraftForm) setFocus(slot int) {
	if in := f.input(f.focus); in != nil {
		in.Blur()
	}
	f.focus = clamp(slot, 0, f.slots()-1)
	if in := f.input(f.focus); in != nil {
		in.Focus()
	}
}

// NextInput moves focus forward, wrapping.
func (f *DraftForm) NextInput() { f.setFocus((f.focus + 1) % f.slots()) }

// PrevInput moves focus backward, wrapping.
func (f *DraftForm) PrevInput() { f.setFocus((f.focus - 1 + f.slots()) % f.slots()) }

// CycleChart moves the chart selector by delta, wrapping.
func (f *DraftForm) CycleChart(delta int) {
	n := len(model.ChartTypes())
	f.chart = ((f.chart+delta)%n + n) % n
}

// ChartType returns the selected chart type.
func (f DraftForm) ChartType() model.ChartType { return model.ChartTypes()[f.chart] }

// AddRow appends a default row and focuses its name input.
func (f *DraftForm) AddRow() {
	f.rows = append(f.rows, makeRow(model.DefaultField()))
	f.setFocus(slotFirstField + slotsPerRow*(len(f.rows)-1))
}

// RemoveRow drops row i and keeps focus on a neighbouring input.
func (f *DraftForm) RemoveRow(i int) {
	if i < 0 || i >= len(f.rows) {
		return
	}
	if in := f.input(f.focus); in != nil {
		in.Blur()
	}
	f.rows = append(f.rows[:i:i], f.rows[i+1:]...)
	f.focus = clamp(f.focus, 0, f.slots()-1)
	f.setFocus(f.focus)
}

// Update forwards a message to the focused text input.
func (f DraftForm) Update(msg tea.Msg) (DraftForm, tea.Cmd) {
	in := f.input(f.focus)
	if in == nil {
		return f, nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return f, cmd
}

// Apply writes every input into the draft held by s.
func (f DraftForm) Apply(s dashboard.State) dashboard.State {
	s = s.SetCardName(f.name.Value()).SetChartType(f.ChartType())
	for i, row := range f.rows {
		s = s.SetFieldName(i, row.name.Value()).
			SetFieldColor(i, strings.TrimSpace(row.color.Value())).
			SetFieldPercentage(i, parsePercentage(row.pct.Value()))
	}
	return s
}

// parsePercentage maps text that is not a number to 0.
func parsePercentage(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// View renders the form for the sidebar.
func (f DraftForm) View(category model.CategoryID, width int) string {
	r := f.theme.Renderer

	labelStyle := r.NewStyle().Foreground(f.theme.Secondary).Width(7).Align(lipgloss.Right)
	focusedLabelStyle := r.NewStyle().Foreground(f.theme.Primary).Bold(true).Width(7).Align(lipgloss.Right)
	label := func(text string, focused bool) string {
		if focused {
			return focusedLabelStyle.Render(text)
		}
		return labelStyle.Render(text)
	}

	var b strings.Builder
	b.WriteString(f.theme.PrimaryBold.Render(truncateRunesHelper("Add to "+string(category), width, "…")))
	b.WriteString("\n\n")

	b.WriteString(label("Name:", f.focus == slotName) + " " + f.name.View() + "\n")

	chartLabel := f.ChartType().Label()
	if f.focus == slotChart {
		chartLabel = r.NewStyle().Foreground(f.theme.Primary).Render(fmt.Sprintf("< %s >", chartLabel))
	}
	b.WriteString(label("Chart:", f.focus == slotChart) + " " + chartLabel + "\n\n")

	b.WriteString(f.theme.MutedText.Render("  #  field         color    %") + "\n")
	for i, row := range f.rows {
		marker := "  "
		if f.FocusedRow() == i {
			marker = f.theme.PrimaryBold.Render("› ")
		}
		b.WriteString(fmt.Sprintf("%s%-2d %s %s%s %s\n",
			marker, i+1,
			row.name.View(),
			swatch(r, row.color.Value()),
			row.color.View(),
			row.pct.View()))
	}
	if len(f.rows) == 0 {
		b.WriteString(f.theme.MutedText.Render("  no fields (ctrl+n adds one)") + "\n")
	}
	return b.String()
}

// swatch shows the typed color, or a hollow mark while it is not a valid hex.
func swatch(r *lipgloss.Renderer, color string) string {
	color = strings.TrimSpace(color)
	if !model.IsHexColor(color) {
		return r.NewStyle().Foreground(ColorMuted).Render("□ ")
	}
	return r.NewStyle().Foreground(lipgloss.Color(color)).Render("■ ")
}
