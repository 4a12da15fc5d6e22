package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"syscall"
	"time"

	"github.com/vanderheijden86/widgetboard/pkg/config"
	"github.com/vanderheijden86/widgetboard/pkg/dashboard"
	"github.com/vanderheijden86/widgetboard/pkg/debug"
	"github.com/vanderheijden86/widgetboard/pkg/export"
	"github.com/vanderheijden86/widgetboard/pkg/metrics"
	"github.com/vanderheijden86/widgetboard/pkg/store"
	"github.com/vanderheijden86/widgetboard/pkg/ui"
	"github.com/vanderheijden86/widgetboard/pkg/version"
	"github.com/vanderheijden86/widgetboard/pkg/watcher"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

type options struct {
	configPath   string
	seedPath     string
	exportDir    string
	exportWizard bool
	initConfig   bool
	cpuProfile   string
	help         bool
	version      bool
}

func parseFlags(args []string, stderr io.Writer) (options, *flag.FlagSet, error) {
	var o options
	fs := flag.NewFlagSet("wb", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/wb/config.yaml)")
	fs.StringVar(&o.seedPath, "seed", "", "YAML file of cards to preload")
	fs.StringVar(&o.exportDir, "export", "", "Export the dashboard to DIR and exit")
	fs.BoolVar(&o.exportWizard, "export-wizard", false, "Choose export formats interactively and exit")
	fs.BoolVar(&o.initConfig, "init-config", false, "Write the default config file and exit")
	fs.StringVar(&o.cpuProfile, "cpu-profile", "", "Write CPU profile to file")
	fs.BoolVar(&o.help, "help", false, "Show help")
	fs.BoolVar(&o.version, "version", false, "Show version")
	err := fs.Parse(args)
	return o, fs, err
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if opts.help {
		fmt.Fprintln(stdout, "Usage: wb [options]")
		fmt.Fprintln(stdout, "\nA terminal dashboard of chart widgets grouped by category.")
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		return 0
	}
	if opts.version {
		fmt.Fprintf(stdout, "wb %s\n", version.Version)
		return 0
	}

	if opts.initConfig {
		path, err := initConfig(opts.configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Wrote %s\n", path)
		return 0
	}

	// CPU profiling support
	if opts.cpuProfile != "" {
		f, err := os.Create(opts.cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "Could not create CPU profile: %v\n", err)
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(stderr, "Could not start CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	closeLog := openDebugLog()
	defer closeLog()

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		// Non-fatal: continue with defaults
		fmt.Fprintf(stderr, "Warning: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}

	state, err := loadDashboard(cfg, opts.seedPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	exportOpts, err := exportOptions(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	switch {
	case opts.exportWizard:
		w := export.NewWizard(export.WizardConfig{Dir: cfg.ExportDir(), Title: cfg.Export.Title, Formats: exportOpts.Formats})
		wc, err := w.Run()
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Fprintln(stdout, "Export cancelled")
				return 0
			}
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		exportOpts.Formats, exportOpts.Title = wc.Formats, wc.Title
		return runExport(stdout, stderr, wc.Dir, state, exportOpts)

	case opts.exportDir != "":
		return runExport(stdout, stderr, opts.exportDir, state, exportOpts)
	}

	m := ui.NewModel(state, ui.Options{
		Store:            store.New(),
		CardWidth:        cfg.UI.CardWidth,
		SidebarWidth:     cfg.UI.SidebarWidth,
		DefaultChartType: cfg.ChartType(),
		ExportDir:        cfg.ExportDir(),
		Export:           exportOpts,
	})
	configPath := opts.configPath
	if configPath == "" {
		configPath = config.ConfigPath()
	}
	if err := runTUIProgram(m, configPath); err != nil {
		fmt.Fprintf(stderr, "Error running wb: %v\n", err)
		return 1
	}
	if metrics.Enabled() {
		for _, s := range metrics.AllTimingStats() {
			debug.Log("metrics: %s", s)
		}
	}
	return 0
}

// openDebugLog sends debug output to $XDG_STATE_HOME/wb/debug.log while the
// TUI owns the terminal.
func openDebugLog() func() {
	if !debug.Enabled() {
		return func() {}
	}
	dir := config.StateDir()
	if dir == "" {
		return func() {}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return func() {}
	}
	debug.SetOutput(f)
	return func() {
		debug.SetOutput(os.Stderr)
		f.Close()
	}
}

// initConfig writes the defaults to path (or the XDG config path) and
// refuses to overwrite an existing file.
func initConfig(path string) (string, error) {
	save := func() error { return config.SaveTo(config.DefaultConfig(), path) }
	if path == "" {
		path = config.ConfigPath()
		save = func() error { return config.Save(config.DefaultConfig()) }
	}
	if path == "" {
		return "", errors.New("cannot determine config directory")
	}
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	}
	return path, save()
}

func loadConfig(path string) (config.Config, error) {
	defer metrics.Timer(metrics.ConfigLoad)()
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func loadDashboard(cfg config.Config, seedPath string) (dashboard.State, error) {
	if seedPath == "" {
		return cfg.NewDashboard(), nil
	}
	seed, err := config.LoadSeed(seedPath)
	if err != nil {
		return dashboard.State{}, err
	}
	return cfg.NewDashboard(seed...), nil
}

func exportOptions(cfg config.Config) (export.Options, error) {
	formats, err := export.ParseFormats(cfg.Export.Formats)
	if err != nil {
		return export.Options{}, fmt.Errorf("config export.formats: %w", err)
	}
	return export.Options{Title: cfg.Export.Title, Formats: formats}, nil
}

// settingsFor extracts the settings that can change while wb runs.
func settingsFor(cfg config.Config) ui.SettingsMsg {
	msg := ui.SettingsMsg{
		CardWidth:        cfg.UI.CardWidth,
		SidebarWidth:     cfg.UI.SidebarWidth,
		DefaultChartType: cfg.ChartType(),
		ExportDir:        cfg.ExportDir(),
	}
	msg.Export, msg.Err = exportOptions(cfg)
	return msg
}

func reloadSettings(path string) ui.SettingsMsg {
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return ui.SettingsMsg{Err: err}
	}
	debug.Log("config: reloaded %s", path)
	return settingsFor(cfg)
}

// watchConfig forwards config.yaml edits to the running program.
func watchConfig(path string, p *tea.Program) func() {
	if path == "" {
		return func() {}
	}
	w, err := watcher.NewWatcher(path,
		watcher.WithOnChange(func() { p.Send(reloadSettings(path)) }),
		watcher.WithOnError(func(err error) { debug.Log("config watcher: %v", err) }),
	)
	if err != nil {
		debug.Log("config watcher: %v", err)
		return func() {}
	}
	if err := w.Start(); err != nil {
		debug.Log("config watcher: %v", err)
		return func() {}
	}
	return w.Stop
}

func runExport(stdout, stderr io.Writer, dir string, state dashboard.State, opts export.Options) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	paths, err := export.ExportAll(ctx, dir, state.Snapshot(), opts)
	debug.LogTiming("export", time.Since(start))
	if err != nil {
		fmt.Fprintf(stderr, "Export failed: %v\n", err)
		return 1
	}
	for _, p := range paths {
		fmt.Fprintln(stdout, p)
	}
	return 0
}

func runTUIProgram(m ui.Model, configPath string) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)
	stopWatch := watchConfig(configPath, p)
	defer stopWatch()

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set WB_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("WB_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	final, err := p.Run()
	if fm, ok := final.(ui.Model); ok {
		fm.Store().Close()
	}
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
