// Package ui is the Bubble Tea front end: a grid of widget cells per category
// plus the "Add Widget" sidebar driving dashboard.State transitions.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/vanderheijden86/widgetboard/pkg/dashboard"
	"github.com/vanderheijden86/widgetboard/pkg/debug"
	"github.com/vanderheijden86/widgetboard/pkg/export"
	"github.com/vanderheijden86/widgetboard/pkg/metrics"
	"github.com/vanderheijden86/widgetboard/pkg/model"
	"github.com/vanderheijden86/widgetboard/pkg/store"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Options configures a Model. Zero values fall back to defaults.
type Options struct {
	Store            *store.Store
	Theme            *Theme
	CardWidth        int
	SidebarWidth     int
	DefaultChartType model.ChartType
	ExportDir        string
	Export           export.Options
	// Clipboard writes copied text; nil uses the system clipboard.
	Clipboard func(string) error
}

// Model is the top-level Bubble Tea model.
type Model struct {
	state dashboard.State
	store *store.Store
	ctx   context.Context
	stop  context.CancelFunc

	theme Theme
	keys  keyMap
	help  help.Model
	form  DraftForm

	width        int
	height       int
	cardWidth    int
	sidebarWidth int
	defaultChart model.ChartType

	// grid cursor
	cursorCat int
	cursorIdx int
	// sidebar checklist cursor
	listCursor int

	showHelp bool
	helpView string

	exporting  bool
	exportDir  string
	exportOpts export.Options
	copyText   func(string) error

	statusMsg     string
	statusIsError bool
}

// NewModel wraps state in a runnable model.
func NewModel(state dashboard.State, opts Options) Model {
	theme := DefaultTheme(lipgloss.DefaultRenderer())
	if opts.Theme != nil {
		theme = *opts.Theme
	}
	s := opts.Store
	if s == nil {
		s = store.New()
	}
	copyText := opts.Clipboard
	if copyText == nil {
		copyText = clipboard.WriteAll
	}
	chartType := opts.DefaultChartType
	ctx, stop := context.WithCancel(context.Background())

	h := help.New()
	h.Styles.ShortKey = theme.Renderer.NewStyle().Foreground(ColorPrimary).Bold(true)
	h.Styles.ShortDesc = theme.Renderer.NewStyle().Foreground(ColorSubtext)
	h.Styles.ShortSeparator = theme.MutedText

	m := Model{
		state:    state,
		store:    s,
		ctx:      ctx,
		stop:     stop,
		theme:    theme,
		keys:     defaultKeyMap(),
		help:     h,
		width:    120,
		height:   40,
		copyText: copyText,
	}
	m.applySettings(SettingsMsg{
		CardWidth:        opts.CardWidth,
		SidebarWidth:     opts.SidebarWidth,
		DefaultChartType: chartType,
		ExportDir:        opts.ExportDir,
		Export:           opts.Export,
	})
	m.form = NewDraftForm(state.Draft(), theme)
	m.clampCursor()
	return m
}

// State returns the current dashboard state.
func (m Model) State() dashboard.State { return m.state }

// Store returns the action store the widget cells dispatch to.
func (m Model) Store() *store.Store { return m.store }

// StatusMessage returns the footer status text and whether it is an error.
func (m Model) StatusMessage() (string, bool) { return m.statusMsg, m.statusIsError }

// ShowingHelp reports whether the help overlay is visible.
func (m Model) ShowingHelp() bool { return m.showHelp }

// Form returns the draft form.
func (m Model) Form() DraftForm { return m.form }

func (m Model) Init() tea.Cmd {
	return WaitForActionCmd(m.ctx, m.store)
}

// applySettings takes the reloadable display and export settings. Zero
// widths fall back to the defaults.
func (m *Model) applySettings(s SettingsMsg) {
	m.cardWidth = 34
	if s.CardWidth > 0 {
		m.cardWidth = max(s.CardWidth, 20)
	}
	m.sidebarWidth = 44
	if s.SidebarWidth > 0 {
		m.sidebarWidth = max(s.SidebarWidth, 32)
	}
	m.defaultChart = s.DefaultChartType
	if !m.defaultChart.IsValid() {
		m.defaultChart = model.DefaultChartType
	}
	m.exportDir = s.ExportDir
	m.exportOpts = s.Export
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusIsError = isErr
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.stop()
	m.store.Close()
	return m, tea.Quit
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if m.showHelp {
			m.helpView = renderHelp(m.theme, m.width, m.bodyHeight())
		}
		return m, nil

	case ActionMsg:
		before := m.state.CardCount()
		m.state = store.Reduce(m.state, msg.Action)
		if m.state.CardCount() < before {
			m.setStatus(fmt.Sprintf("Removed %s", msg.Action.Payload.WidgetID), false)
		}
		m.clampCursor()
		m.clampListCursor()
		return m, WaitForActionCmd(m.ctx, m.store)

	case ExportDoneMsg:
		m.exporting = false
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("Export failed: %v", msg.Err), true)
		} else {
			m.setStatus(fmt.Sprintf("Exported %d files to %s", len(msg.Paths), msg.Dir), false)
		}
		return m, nil

	case SettingsMsg:
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("Config reload failed: %v", msg.Err), true)
			return m, nil
		}
		m.applySettings(msg)
		m.clampCursor()
		m.setStatus("Config reloaded", false)
		return m, nil

	case CopyDoneMsg:
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("Clipboard error: %v", msg.Err), true)
		} else {
			m.setStatus(fmt.Sprintf("Copied %s chart data to clipboard", msg.Card), false)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		m.statusMsg = ""
		if m.showHelp {
			if key.Matches(msg, m.keys.Help, m.keys.Close, m.keys.Quit) {
				m.showHelp = false
			}
			return m, nil
		}
		switch m.state.Phase() {
		case dashboard.PhaseDraft:
			return m.handleDraftKeys(msg)
		case dashboard.PhaseBrowsing, dashboard.PhaseCategorySelected:
			return m.handleSidebarKeys(msg)
		default:
			return m.handleGridKeys(msg)
		}
	}

	if m.state.IsAddingCard() {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		mm, cmd := m.quit()
		return mm, cmd, true
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		m.helpView = renderHelp(m.theme, m.width, m.bodyHeight())
		return m, nil, true
	case key.Matches(msg, m.keys.Export):
		if m.exporting {
			m.setStatus("Export already running", false)
			return m, nil, true
		}
		m.exporting = true
		m.setStatus("Exporting…", false)
		debug.Log("ui: export to %s", m.exportDir)
		return m, ExportCmd(m.ctx, m.exportDir, m.state.Snapshot(), m.exportOpts), true
	}
	return m, nil, false
}

func (m Model) handleGridKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if mm, cmd, ok := m.handleGlobalKeys(msg); ok {
		return mm, cmd
	}
	switch {
	case key.Matches(msg, m.keys.Sidebar):
		m.state = m.state.ToggleSidebar()
		m.listCursor = 0
	case key.Matches(msg, m.keys.Left):
		m.moveCursor(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.moveCursor(1, 0)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(0, 1)
	case key.Matches(msg, m.keys.Remove):
		if cell, ok := m.focusedCell(); ok {
			cell.Remove()
		}
	case key.Matches(msg, m.keys.Copy):
		if cell, ok := m.focusedCell(); ok {
			return m, CopyCardCmd(cell.Card(), m.copyText)
		}
	}
	return m, nil
}

func (m Model) handleSidebarKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if mm, cmd, ok := m.handleGlobalKeys(msg); ok {
		return mm, cmd
	}
	cats := m.state.Categories()
	switch {
	case key.Matches(msg, m.keys.Sidebar, m.keys.Close):
		m.state = m.state.ToggleSidebar()
	case key.Matches(msg, m.keys.NextCategory):
		next := 0
		for i, c := range cats {
			if c == m.state.SelectedCategory() {
				next = (i + 1) % len(cats)
			}
		}
		m.selectCategory(cats[next])
	case isCategoryDigit(msg):
		if i := int(msg.Runes[0] - '1'); i < len(cats) {
			m.selectCategory(cats[i])
		}
	case m.state.Phase() != dashboard.PhaseCategorySelected:
	case key.Matches(msg, m.keys.Up):
		m.listCursor--
		m.clampListCursor()
	case key.Matches(msg, m.keys.Down):
		m.listCursor++
		m.clampListCursor()
	case key.Matches(msg, m.keys.Toggle):
		cards := m.state.Cards(m.state.SelectedCategory())
		if m.listCursor < len(cards) {
			m.state = m.state.ToggleCardSelection(cards[m.listCursor].ID)
		}
	case key.Matches(msg, m.keys.Delete):
		n := len(m.state.Selection())
		m.state = m.state.DeleteSelected()
		if n > 0 {
			debug.Log("ui: deleted %d cards from %s", n, m.state.SelectedCategory())
			m.setStatus(fmt.Sprintf("Deleted %d card(s)", n), false)
		}
		m.clampListCursor()
		m.clampCursor()
	case key.Matches(msg, m.keys.NewCard):
		m.state = m.state.StartAddCard().SetChartType(m.defaultChart)
		m.form = NewDraftForm(m.state.Draft(), m.theme)
	}
	return m, nil
}

// draftTouched reports whether the draft differs from a fresh one, where a
// fresh draft starts on the configured chart type.
func (m Model) draftTouched() bool {
	d := m.state.Draft()
	if d.ChartType == m.defaultChart {
		d.ChartType = model.DefaultChartType
	}
	return !d.IsEmpty()
}

func isCategoryDigit(msg tea.KeyMsg) bool {
	return len(msg.Runes) == 1 && msg.Runes[0] >= '1' && msg.Runes[0] <= '9'
}

func (m *Model) selectCategory(c model.CategoryID) {
	m.state = m.state.SelectCategory(c)
	m.listCursor = 0
}

func (m *Model) clampListCursor() {
	n := len(m.state.Cards(m.state.SelectedCategory()))
	m.listCursor = clamp(m.listCursor, 0, max(n-1, 0))
}

func (m Model) handleDraftKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Close):
		if m.draftTouched() {
			m.setStatus("Draft discarded", false)
		}
		m.state = m.state.ToggleSidebar()
		return m, nil
	case m.form.OnChartSelector() && isCategoryDigit(msg):
		cats := m.state.Categories()
		if i := int(msg.Runes[0] - '1'); i < len(cats) {
			if m.draftTouched() {
				m.setStatus("Draft discarded", false)
			}
			m.selectCategory(cats[i])
			m.form = NewDraftForm(m.state.Draft(), m.theme)
		}
		return m, nil
	case key.Matches(msg, m.keys.Commit):
		before := m.state.CardCount()
		m.state = m.form.Apply(m.state).CommitCard()
		if m.state.CardCount() == before {
			return m, nil
		}
		cards := m.state.Cards(m.state.SelectedCategory())
		debug.Log("ui: committed %s to %s", cards[len(cards)-1].ID, m.state.SelectedCategory())
		m.setStatus(fmt.Sprintf("Added %s to %s", cards[len(cards)-1].Name, m.state.SelectedCategory()), false)
		m.listCursor = len(cards) - 1
		m.form = NewDraftForm(m.state.Draft(), m.theme)
		return m, nil
	case key.Matches(msg, m.keys.NextInput):
		m.form.NextInput()
		return m, nil
	case key.Matches(msg, m.keys.PrevInput):
		m.form.PrevInput()
		return m, nil
	case key.Matches(msg, m.keys.AddField):
		m.state = m.state.AddField()
		m.form.AddRow()
		return m, nil
	case key.Matches(msg, m.keys.RemoveField):
		if row := m.form.FocusedRow(); row >= 0 {
			m.state = m.state.RemoveField(row)
			m.form.RemoveRow(row)
		}
		return m, nil
	case m.form.OnChartSelector() && key.Matches(msg, m.keys.ChartPrev):
		m.form.CycleChart(-1)
		m.state = m.state.SetChartType(m.form.ChartType())
		return m, nil
	case m.form.OnChartSelector() && key.Matches(msg, m.keys.ChartNext):
		m.form.CycleChart(1)
		m.state = m.state.SetChartType(m.form.ChartType())
		return m, nil
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	m.state = m.form.Apply(m.state)
	return m, cmd
}

func (m Model) bodyHeight() int {
	return max(m.height-1, 1)
}

func (m Model) gridWidth() int {
	if m.state.IsSidebarOpen() {
		return max(m.width-m.sidebarWidth, m.cardWidth)
	}
	return m.width
}

func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	var body string
	if m.showHelp {
		body = m.helpView
	} else {
		body = m.renderGrid(m.gridWidth(), m.bodyHeight())
		if m.state.IsSidebarOpen() {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderSidebar(m.bodyHeight()))
		}
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		MaxHeight(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, body, m.renderFooter()))
}

func (m Model) renderFooter() string {
	if m.statusMsg != "" {
		var msgStyle lipgloss.Style
		prefix := "✓ "
		if m.statusIsError {
			prefix = "✗ "
			msgStyle = lipgloss.NewStyle().Background(ColorDangerBg).Foreground(ColorDanger).Bold(true).Padding(0, 2)
		} else {
			msgStyle = lipgloss.NewStyle().Background(ColorSuccessBg).Foreground(ColorSuccess).Bold(true).Padding(0, 2)
		}
		return msgStyle.Render(truncateRunesHelper(prefix+m.statusMsg, max(m.width-4, 1), "…"))
	}

	var km help.KeyMap
	switch m.state.Phase() {
	case dashboard.PhaseDraft:
		km = m.keys.draftHelp()
	case dashboard.PhaseCategorySelected:
		km = m.keys.categoryHelp()
	case dashboard.PhaseBrowsing:
		km = m.keys.browseHelp()
	default:
		km = m.keys.gridHelp()
	}
	summary := m.theme.MutedText.Render(fmt.Sprintf(" %d cards ", m.state.CardCount()))
	return summary + strings.TrimRight(m.help.View(km), " ")
}
