package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// WizardConfig is what the export wizard collects.
type WizardConfig struct {
	Dir     string
	Title   string
	Formats []Format
}

// Wizard asks which formats to write and where.
type Wizard struct {
	config *WizardConfig
	out    io.Writer
}

// NewWizard creates a wizard preloaded with defaults.
func NewWizard(defaults WizardConfig) *Wizard {
	if len(defaults.Formats) == 0 {
		defaults.Formats = DefaultFormats()
	}
	return &Wizard{config: &defaults, out: os.Stdout}
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// formatOptions lists every format, preselecting the ones in selected.
func formatOptions(selected []Format) []huh.Option[string] {
	on := make(map[Format]bool, len(selected))
	for _, f := range selected {
		on[f] = true
	}
	opts := make([]huh.Option[string], 0, len(Formats()))
	for _, f := range Formats() {
		opts = append(opts, huh.NewOption(string(f), string(f)).Selected(on[f]))
	}
	return opts
}

func validateDir(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("directory is required")
	}
	return nil
}

// Run shows the form and returns the confirmed configuration.
// huh.ErrUserAborted is returned when the user cancels.
func (w *Wizard) Run() (*WizardConfig, error) {
	fmt.Fprintln(w.out, "Export dashboard")
	fmt.Fprintln(w.out, "────────────────")

	var names []string
	dir := w.config.Dir
	title := w.config.Title
	confirm := true

	form := newForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Formats").
				Description("Images are written once per card").
				Options(formatOptions(w.config.Formats)...).
				Value(&names),
			huh.NewInput().
				Title("Output directory").
				Value(&dir).
				Validate(validateDir),
			huh.NewInput().
				Title("Report title").
				Value(&title).
				Placeholder("Dashboard"),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Write export now?").
				Value(&confirm).
				Affirmative("Export").
				Negative("Cancel"),
		),
	)
	if err := form.Run(); err != nil {
		return nil, err
	}
	if !confirm {
		return nil, huh.ErrUserAborted
	}
	return w.apply(names, dir, title)
}

// apply validates the raw form values into the wizard config.
func (w *Wizard) apply(names []string, dir, title string) (*WizardConfig, error) {
	formats, err := ParseFormats(names)
	if err != nil {
		return nil, err
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("select at least one format")
	}
	if err := validateDir(dir); err != nil {
		return nil, err
	}
	w.config.Formats = formats
	w.config.Dir = strings.TrimSpace(dir)
	w.config.Title = strings.TrimSpace(title)
	return w.config, nil
}
