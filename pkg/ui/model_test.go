package ui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/widgetboard/pkg/dashboard"
	"github.com/vanderheijden86/widgetboard/pkg/export"
	"github.com/vanderheijden86/widgetboard/pkg/model"
	"github.com/vanderheijden86/widgetboard/pkg/store"

	tea "github.com/charmbracelet/bubbletea"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = press(t, m, keyRunes(string(r)))
	}
	return m
}

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	theme := TestTheme()
	opts.Theme = &theme
	m := NewModel(dashboard.New(), opts)
	return press(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
}

func seeded(t *testing.T, names ...string) Model {
	t.Helper()
	state := dashboard.New()
	for _, n := range names {
		state = state.Seed(model.CategoryCSPM, model.Card{Name: n, Fields: []model.Field{{Name: "a", Color: "#ff0000", Percentage: 60}}})
	}
	theme := TestTheme()
	m := NewModel(state, Options{Theme: &theme, Clipboard: func(string) error { return nil }})
	return press(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
}

func TestSidebarPhases(t *testing.T) {
	m := newTestModel(t, Options{})
	if m.State().Phase() != dashboard.PhaseClosed {
		t.Fatalf("expected closed, got %v", m.State().Phase())
	}

	m = press(t, m, keyRunes("a"))
	if m.State().Phase() != dashboard.PhaseBrowsing {
		t.Fatalf("expected browsing after a, got %v", m.State().Phase())
	}

	m = press(t, m, keyRunes("2"))
	if m.State().SelectedCategory() != model.CategoryCWPP {
		t.Errorf("2 should pick CWPP, got %q", m.State().SelectedCategory())
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.State().SelectedCategory() != model.CategoryRegistry {
		t.Errorf("tab should advance to Registry, got %q", m.State().SelectedCategory())
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.State().SelectedCategory() != model.CategoryCSPM {
		t.Errorf("tab should wrap to CSPM, got %q", m.State().SelectedCategory())
	}
	m = press(t, m, keyRunes("9"))
	if m.State().SelectedCategory() != model.CategoryCSPM {
		t.Errorf("out-of-range digit should be ignored")
	}

	m = press(t, m, keyRunes("n"))
	if m.State().Phase() != dashboard.PhaseDraft {
		t.Fatalf("expected draft after n, got %v", m.State().Phase())
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.State().IsSidebarOpen() || m.State().SelectedCategory() != "" || m.State().IsAddingCard() {
		t.Errorf("esc should close the sidebar and reset, got phase %v", m.State().Phase())
	}
}

func TestDraftCommitFlow(t *testing.T) {
	m := newTestModel(t, Options{})
	m = press(t, m, keyRunes("a"), keyRunes("1"), keyRunes("n"))

	m = typeText(t, m, "Cloud")
	if got := m.State().Draft().Name; got != "Cloud" {
		t.Fatalf("draft name = %q, want Cloud", got)
	}

	// chart selector
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyRight})
	if m.State().Draft().ChartType != model.ChartBar {
		t.Errorf("right on chart selector should pick bar, got %q", m.State().Draft().ChartType)
	}

	// first row: name, keep color, percentage
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "Connected")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "40")

	// a second, unnamed row is dropped on commit
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	if n := len(m.State().Draft().Fields); n != 2 {
		t.Fatalf("ctrl+n should add a row, got %d", n)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	cards := m.State().Cards(model.CategoryCSPM)
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	card := cards[0]
	if card.Name != "Cloud" || card.ChartType != model.ChartBar {
		t.Errorf("unexpected card %+v", card)
	}
	if len(card.Fields) != 1 || card.Fields[0].Name != "Connected" || card.Fields[0].Percentage != 40 || card.Fields[0].Color != model.DefaultFieldColor {
		t.Errorf("unexpected fields %+v", card.Fields)
	}
	if m.State().Phase() != dashboard.PhaseCategorySelected {
		t.Errorf("commit should return to the category, got %v", m.State().Phase())
	}
	if msg, isErr := m.StatusMessage(); isErr || !strings.Contains(msg, "Added Cloud") {
		t.Errorf("status = %q (err=%v)", msg, isErr)
	}
}

func TestDraftBlankNameDoesNotCommit(t *testing.T) {
	m := newTestModel(t, Options{})
	m = press(t, m, keyRunes("a"), keyRunes("1"), keyRunes("n"))
	m = typeText(t, m, "   ")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	if m.State().CardCount() != 0 {
		t.Errorf("blank name should not commit")
	}
	if !m.State().IsAddingCard() {
		t.Errorf("draft should stay open")
	}
	if msg, isErr := m.StatusMessage(); msg != "" || isErr {
		t.Errorf("blank commit should be silent, status = %q (err=%v)", msg, isErr)
	}
}

func TestDraftRemoveField(t *testing.T) {
	m := newTestModel(t, Options{})
	m = press(t, m, keyRunes("a"), keyRunes("1"), keyRunes("n"), tea.KeyMsg{Type: tea.KeyCtrlN})
	m = typeText(t, m, "second")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	m = typeText(t, m, "third")

	// focus is on row 2; move back to row 1 and remove it
	for i := 0; i < slotsPerRow; i++ {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	}
	if m.Form().FocusedRow() != 1 {
		t.Fatalf("focused row = %d, want 1", m.Form().FocusedRow())
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})

	fields := m.State().Draft().Fields
	if len(fields) != 2 || fields[1].Name != "third" {
		t.Errorf("unexpected fields after remove: %+v", fields)
	}
	if m.Form().Rows() != 2 {
		t.Errorf("form rows = %d, want 2", m.Form().Rows())
	}

	// ctrl+d on the header inputs is a no-op
	for m.Form().FocusedRow() != -1 {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	if len(m.State().Draft().Fields) != 2 {
		t.Errorf("ctrl+d outside a row should not remove fields, got %d", len(m.State().Draft().Fields))
	}
}

func TestSelectAndDelete(t *testing.T) {
	m := seeded(t, "X", "Y", "Z")
	m = press(t, m, keyRunes("a"), keyRunes("1"), keyRunes("j"), tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})

	sel := m.State().Selection()
	if len(sel) != 1 {
		t.Fatalf("expected one selected card, got %v", sel)
	}

	m = press(t, m, keyRunes("d"))
	names := []string{}
	for _, c := range m.State().Cards(model.CategoryCSPM) {
		names = append(names, c.Name)
	}
	if strings.Join(names, ",") != "X,Z" {
		t.Errorf("cards after delete = %v, want X,Z", names)
	}
	if len(m.State().Selection()) != 0 {
		t.Errorf("selection should be empty after delete")
	}
}

func TestRemoveThroughStore(t *testing.T) {
	m := seeded(t, "X", "Y", "Z")
	m = press(t, m, keyRunes("l"))
	m = press(t, m, keyRunes("x"))

	if m.Store().Pending() != 1 {
		t.Fatalf("x should dispatch one action, pending=%d", m.Store().Pending())
	}
	msg := m.Init()()
	action, ok := msg.(ActionMsg)
	if !ok {
		t.Fatalf("expected ActionMsg, got %T", msg)
	}
	if action.Action.Payload.WidgetID != 2 {
		t.Errorf("dispatched widget = %s, want w-2", action.Action.Payload.WidgetID)
	}

	updated, cmd := m.Update(action)
	m = updated.(Model)
	if cmd == nil {
		t.Error("expected the store wait loop to continue")
	}
	if got := len(m.State().Cards(model.CategoryCSPM)); got != 2 {
		t.Errorf("cards after remove = %d, want 2", got)
	}
}

func TestCopyFocusedCard(t *testing.T) {
	var copied string
	theme := TestTheme()
	state := dashboard.New().Seed(model.CategoryCWPP, model.Card{Name: "Alerts", ChartType: model.ChartBar,
		Fields: []model.Field{{Name: "high", Color: "#ff0000", Percentage: 70}}})
	m := NewModel(state, Options{Theme: &theme, Clipboard: func(s string) error { copied = s; return nil }})

	// cursor starts on CSPM, which is empty
	m = press(t, m, keyRunes("j"))
	_, cmd := m.Update(keyRunes("y"))
	if cmd == nil {
		t.Fatal("expected copy command")
	}
	m = press(t, m, cmd())
	if !strings.Contains(copied, `"labels"`) || !strings.Contains(copied, `"high"`) || !strings.Contains(copied, `"max": 100`) {
		t.Errorf("unexpected clipboard payload: %s", copied)
	}
	if msg, _ := m.StatusMessage(); !strings.Contains(msg, "Alerts") {
		t.Errorf("status = %q", msg)
	}

	failing := NewModel(state, Options{Theme: &theme, Clipboard: func(string) error { return errors.New("no clipboard") }})
	failing = press(t, failing, keyRunes("j"))
	_, cmd = failing.Update(keyRunes("y"))
	failing = press(t, failing, cmd())
	if _, isErr := failing.StatusMessage(); !isErr {
		t.Error("expected error status when clipboard fails")
	}
}

func TestExportKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	theme := TestTheme()
	state := dashboard.New().Seed(model.CategoryCSPM, model.Card{Name: "A"})
	m := NewModel(state, Options{
		Theme:     &theme,
		ExportDir: dir,
		Export:    export.Options{Formats: []export.Format{export.FormatJSON}},
	})

	updated, cmd := m.Update(keyRunes("e"))
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected export command")
	}
	m = press(t, m, cmd())
	if msg, isErr := m.StatusMessage(); isErr || !strings.Contains(msg, "Exported 1 files") {
		t.Errorf("status = %q (err=%v)", msg, isErr)
	}
	if _, err := os.Stat(filepath.Join(dir, "dashboard.json")); err != nil {
		t.Errorf("expected dashboard.json: %v", err)
	}
}

func TestExportEmptyDashboardReportsError(t *testing.T) {
	m := newTestModel(t, Options{ExportDir: t.TempDir()})
	_, cmd := m.Update(keyRunes("e"))
	m = press(t, m, cmd())
	if _, isErr := m.StatusMessage(); !isErr {
		t.Error("expected error status for empty export")
	}
}

func TestHelpOverlay(t *testing.T) {
	m := newTestModel(t, Options{})
	m = press(t, m, keyRunes("?"))
	if !m.ShowingHelp() {
		t.Fatal("expected help overlay")
	}
	m = press(t, m, keyRunes("a"))
	if m.State().IsSidebarOpen() {
		t.Error("keys other than close should be swallowed by the help overlay")
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.ShowingHelp() {
		t.Error("esc should close help")
	}
}

func TestQuitClosesStore(t *testing.T) {
	s := store.New()
	theme := TestTheme()
	m := NewModel(dashboard.New(), Options{Theme: &theme, Store: s})
	_, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if msg := m.Init()(); msg != nil {
		t.Errorf("wait loop should stop after quit, got %T", msg)
	}
}

func TestQuitKeyTypesIntoDraft(t *testing.T) {
	m := newTestModel(t, Options{})
	m = press(t, m, keyRunes("a"), keyRunes("1"), keyRunes("n"))
	m = press(t, m, keyRunes("q"))
	if m.State().Phase() != dashboard.PhaseDraft || m.State().Draft().Name != "q" {
		t.Errorf("q inside the draft form should be typed, got phase %v name %q", m.State().Phase(), m.State().Draft().Name)
	}
}

func TestGridCursor(t *testing.T) {
	m := seeded(t, "A", "B", "C", "D", "E")
	m = press(t, m, tea.WindowSizeMsg{Width: 70, Height: 40}) // two cells per row

	if got := m.cardsPerRow(m.gridWidth()); got != 2 {
		t.Fatalf("cardsPerRow = %d, want 2", got)
	}
	m = press(t, m, keyRunes("j"))
	if m.cursorIdx != 2 {
		t.Errorf("j should move one row down, idx=%d", m.cursorIdx)
	}
	m = press(t, m, keyRunes("l"), keyRunes("l"))
	if m.cursorIdx != 4 {
		t.Errorf("l should stop at the last card, idx=%d", m.cursorIdx)
	}
	m = press(t, m, keyRunes("j"))
	if m.cursorCat != 0 {
		t.Errorf("j past the last row with empty categories below should stay, cat=%d", m.cursorCat)
	}
	m = press(t, m, keyRunes("k"), keyRunes("k"), keyRunes("h"))
	if m.cursorIdx != 0 {
		t.Errorf("expected first card, idx=%d", m.cursorIdx)
	}
}

func TestViewRendersGridAndSidebar(t *testing.T) {
	m := seeded(t, "Cloud Accounts")
	view := m.View()
	for _, want := range []string{"CSPM (1)", "Cloud Accounts", "No widgets yet", "cards"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = press(t, m, keyRunes("a"), keyRunes("1"))
	view = m.View()
	for _, want := range []string{"Add Widget", "[ ]", "add to CSPM"} {
		if !strings.Contains(view, want) {
			t.Errorf("sidebar view missing %q", want)
		}
	}

	m = press(t, m, keyRunes("n"))
	if view = m.View(); !strings.Contains(view, "Add to CSPM") || !strings.Contains(view, "Pie Chart") {
		t.Errorf("draft form not rendered")
	}
}

func TestSettingsReload(t *testing.T) {
	m := newTestModel(t, Options{})
	m = press(t, m, SettingsMsg{CardWidth: 50, SidebarWidth: 10, DefaultChartType: model.ChartBar, ExportDir: "/tmp/out"})

	if m.cardWidth != 50 {
		t.Errorf("cardWidth = %d, want 50", m.cardWidth)
	}
	if m.sidebarWidth != 32 {
		t.Errorf("sidebarWidth = %d, want minimum 32", m.sidebarWidth)
	}
	if m.exportDir != "/tmp/out" {
		t.Errorf("exportDir = %q", m.exportDir)
	}
	if msg, isErr := m.StatusMessage(); msg != "Config reloaded" || isErr {
		t.Errorf("status = %q (err=%v)", msg, isErr)
	}

	m = press(t, m, keyRunes("a"), keyRunes("1"), keyRunes("n"))
	if got := m.State().Draft().ChartType; got != model.ChartBar {
		t.Errorf("new draft chart type = %v, want bar", got)
	}
}

func TestSettingsReloadError(t *testing.T) {
	m := newTestModel(t, Options{CardWidth: 40})
	m = press(t, m, SettingsMsg{Err: errors.New("parsing config: bad")})
	if m.cardWidth != 40 {
		t.Errorf("failed reload should keep settings, cardWidth = %d", m.cardWidth)
	}
	if msg, isErr := m.StatusMessage(); !isErr || !strings.Contains(msg, "parsing config") {
		t.Errorf("status = %q (err=%v)", msg, isErr)
	}
}

func TestEscDiscardsDraft(t *testing.T) {
	m := newTestModel(t, Options{})
	m = press(t, m, keyRunes("a"), keyRunes("1"), keyRunes("n"))
	m = typeText(t, m, "Half")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.State().Phase() != dashboard.PhaseClosed {
		t.Errorf("esc should close the sidebar, got %v", m.State().Phase())
	}
	if msg, _ := m.StatusMessage(); msg != "Draft discarded" {
		t.Errorf("status = %q", msg)
	}

	// an untouched draft closes quietly
	m = press(t, m, keyRunes("a"), keyRunes("1"), keyRunes("n"), tea.KeyMsg{Type: tea.KeyEsc})
	if msg, _ := m.StatusMessage(); msg != "" {
		t.Errorf("status = %q, want none", msg)
	}
}

func TestEscUntouchedDraftWithBarDefault(t *testing.T) {
	m := newTestModel(t, Options{DefaultChartType: model.ChartBar})
	m = press(t, m, keyRunes("a"), keyRunes("1"), keyRunes("n"))
	if got := m.State().Draft().ChartType; got != model.ChartBar {
		t.Fatalf("draft chart type = %q, want bar", got)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if msg, _ := m.StatusMessage(); msg != "" {
		t.Errorf("untouched draft should close quietly, status = %q", msg)
	}
}

func TestDraftCategorySwitchFromChartSelector(t *testing.T) {
	m := newTestModel(t, Options{})
	m = press(t, m, keyRunes("a"), keyRunes("1"), keyRunes("n"))
	m = typeText(t, m, "Half")

	// on the name input a digit is text
	m = press(t, m, keyRunes("2"))
	if got := m.State().Draft().Name; got != "Half2" {
		t.Fatalf("draft name = %q, want Half2", got)
	}
	if m.State().SelectedCategory() != model.CategoryCSPM {
		t.Fatal("typing a digit into the name must not switch category")
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if !m.Form().OnChartSelector() {
		t.Fatal("expected focus on the chart selector")
	}
	m = press(t, m, keyRunes("2"))
	if m.State().SelectedCategory() != model.CategoryCWPP {
		t.Errorf("selected = %q, want CWPP", m.State().SelectedCategory())
	}
	if m.State().Phase() != dashboard.PhaseCategorySelected {
		t.Errorf("switching category should discard the draft, phase = %v", m.State().Phase())
	}
	if !m.State().Draft().IsEmpty() {
		t.Errorf("draft not reset: %+v", m.State().Draft())
	}
	if msg, _ := m.StatusMessage(); msg != "Draft discarded" {
		t.Errorf("status = %q", msg)
	}
}
