package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vanderheijden86/widgetboard/pkg/debug"
	"github.com/vanderheijden86/widgetboard/pkg/metrics"
	"github.com/vanderheijden86/widgetboard/pkg/model"

	"golang.org/x/sync/errgroup"
)

// Options controls ExportAll.
type Options struct {
	Title   string
	Formats []Format  // nil means Markdown, JSON, SQLite and SVG
	Now     time.Time // zero means time.Now()
	Workers int       // zero means 4
}

// DefaultFormats is what ExportAll writes when no format is requested.
func DefaultFormats() []Format {
	return []Format{FormatMarkdown, FormatJSON, FormatSQLite, FormatSVG}
}

type job struct {
	path string
	run  func(path string) error
}

// ExportAll writes every requested format for d into dir concurrently and
// returns the written paths in a stable order. Image formats produce one file
// per card under dir/charts.
func ExportAll(ctx context.Context, dir string, d model.Dashboard, opts Options) ([]string, error) {
	if d.CardCount() == 0 {
		return nil, ErrNoCards
	}
	formats := opts.Formats
	if len(formats) == 0 {
		formats = DefaultFormats()
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	title := opts.Title
	if title == "" {
		title = "Dashboard"
	}
	generated := now.UTC().Format(time.RFC3339)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	defer metrics.Timer(metrics.Export)()

	var jobs []job
	for _, f := range formats {
		switch f {
		case FormatMarkdown:
			jobs = append(jobs, job{filepath.Join(dir, "dashboard.md"), func(p string) error {
				return os.WriteFile(p, []byte(generateMarkdown(d, title, now)), 0o644)
			}})
		case FormatJSON:
			jobs = append(jobs, job{filepath.Join(dir, "dashboard.json"), func(p string) error {
				out, err := os.Create(p)
				if err != nil {
					return err
				}
				if err := WriteJSON(out, NewDocument(d, title, generated)); err != nil {
					out.Close()
					return err
				}
				return out.Close()
			}})
		case FormatSQLite:
			jobs = append(jobs, job{filepath.Join(dir, "dashboard.sqlite3"), func(p string) error {
				exp := NewSQLiteExporter(d)
				exp.Title, exp.Generated = title, generated
				return exp.Export(p)
			}})
		case FormatSVG, FormatPNG:
			for _, cc := range d.Categories {
				for _, card := range cc.Cards {
					snap := SnapshotOptions{Format: string(f), Category: cc.Category, Card: card}
					jobs = append(jobs, job{filepath.Join(dir, "charts", cardFileName(cc.Category, card, string(f))), func(p string) error {
						snap.Path = p
						return SaveCardSnapshot(snap)
					}})
				}
			}
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
		}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := j.run(j.path); err != nil {
				return fmt.Errorf("export %s: %w", filepath.Base(j.path), err)
			}
			debug.Log("export: wrote %s", j.path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	paths := make([]string, len(jobs))
	for i, j := range jobs {
		paths[i] = j.path
	}
	return paths, nil
}
