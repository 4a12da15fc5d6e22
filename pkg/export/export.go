// Package export writes one-way reports of a dashboard snapshot.
//
// Every exporter takes a model.Dashboard produced by dashboard.State.Snapshot,
// so exports never observe a transition in progress.
package export

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/vanderheijden86/widgetboard/pkg/model"
)

var (
	// ErrUnsupportedFormat is returned for an export format wb cannot write.
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrNoCards is returned when a snapshot has nothing to export.
	ErrNoCards = errors.New("no cards to export")
)

// Format names one export output.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatSQLite   Format = "sqlite"
	FormatSVG      Format = "svg"
	FormatPNG      Format = "png"
)

// Formats lists every supported format in the order ExportAll writes them.
func Formats() []Format {
	return []Format{FormatMarkdown, FormatJSON, FormatSQLite, FormatSVG, FormatPNG}
}

// ParseFormat accepts a format name or a common alias ("md", "db").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "sqlite", "sqlite3", "db":
		return FormatSQLite, nil
	case "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ParseFormats parses a list of names, dropping duplicates.
func ParseFormats(names []string) ([]Format, error) {
	seen := make(map[Format]bool, len(names))
	var out []Format
	for _, n := range names {
		f, err := ParseFormat(n)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

var slugNonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)

func createSlug(text string) string {
	slug := strings.ToLower(text)
	slug = slugNonAlphanumericRegex.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// cardFileName is unique per card: the slug alone may collide.
func cardFileName(c model.CategoryID, card model.Card, ext string) string {
	slug := createSlug(card.Name)
	if slug == "" {
		slug = "card"
	}
	return fmt.Sprintf("%s-%s-%s.%s", createSlug(string(c)), card.ID, slug, ext)
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "|", "\\|")
}
