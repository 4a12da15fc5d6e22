package ui

import (
	"context"

	"github.com/vanderheijden86/widgetboard/pkg/chart"
	"github.com/vanderheijden86/widgetboard/pkg/export"
	"github.com/vanderheijden86/widgetboard/pkg/model"
	"github.com/vanderheijden86/widgetboard/pkg/store"
	"github.com/vanderheijden86/widgetboard/pkg/widget"

	tea "github.com/charmbracelet/bubbletea"
	json "github.com/goccy/go-json"
)

// ActionMsg carries one action pulled from the store.
type ActionMsg struct {
	Action widget.Action
}

// ExportDoneMsg reports the result of a background export.
type ExportDoneMsg struct {
	Dir   string
	Paths []string
	Err   error
}

// CopyDoneMsg reports the result of a clipboard copy.
type CopyDoneMsg struct {
	Card string
	Err  error
}

// SettingsMsg carries reloaded display and export settings. Categories and
// seeded cards are fixed for the session and never reload.
type SettingsMsg struct {
	CardWidth        int
	SidebarWidth     int
	DefaultChartType model.ChartType
	ExportDir        string
	Export           export.Options
	Err              error
}

// WaitForActionCmd blocks until the store yields an action. It returns nil
// once the store is closed or ctx ends, which stops the loop.
func WaitForActionCmd(ctx context.Context, s *store.Store) tea.Cmd {
	return func() tea.Msg {
		if s == nil {
			return nil
		}
		a, err := s.Next(ctx)
		if err != nil {
			return nil
		}
		return ActionMsg{Action: a}
	}
}

// ExportCmd writes d to dir in the background.
func ExportCmd(ctx context.Context, dir string, d model.Dashboard, opts export.Options) tea.Cmd {
	return func() tea.Msg {
		paths, err := export.ExportAll(ctx, dir, d, opts)
		return ExportDoneMsg{Dir: dir, Paths: paths, Err: err}
	}
}

// CopyCardCmd copies a card's chart data as JSON using write.
func CopyCardCmd(card model.Card, write func(string) error) tea.Cmd {
	return func() tea.Msg {
		data, err := json.MarshalIndent(chart.Derive(card), "", "  ")
		if err == nil {
			err = write(string(data))
		}
		return CopyDoneMsg{Card: card.Name, Err: err}
	}
}
