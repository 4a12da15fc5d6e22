package model

import (
	"fmt"
	"regexp"
	"strings"
)

// CategoryID identifies one of the fixed top-level card groups.
type CategoryID string

// Default category set shown on a fresh dashboard.
const (
	CategoryCSPM     CategoryID = "CSPM"
	CategoryCWPP     CategoryID = "CWPP"
	CategoryRegistry CategoryID = "Registry"
)

// DefaultCategories returns the built-in category order.
func DefaultCategories() []CategoryID {
	return []CategoryID{CategoryCSPM, CategoryCWPP, CategoryRegistry}
}

// CardID is the durable key assigned to a card when it is committed.
// IDs come from a per-dashboard counter and are never reused.
type CardID uint64

// String renders the ID in the form used by the UI and exports ("w-12").
func (id CardID) String() string {
	return fmt.Sprintf("w-%d", uint64(id))
}

// ChartType selects how a card's fields are drawn
type ChartType string

const (
	ChartPie ChartType = "pie"
	ChartBar ChartType = "bar"
)

// DefaultChartType is the chart type of a freshly reset draft.
const DefaultChartType = ChartPie

// ChartTypes returns the selectable chart types in display order.
func ChartTypes() []ChartType {
	return []ChartType{ChartPie, ChartBar}
}

// IsValid returns true if the chart type is a recognized value
func (c ChartType) IsValid() bool {
	switch c {
	case ChartPie, ChartBar:
		return true
	}
	return false
}

// Label returns the human-facing name ("Pie Chart", "Bar Chart").
func (c ChartType) Label() string {
	switch c {
	case ChartPie:
		return "Pie Chart"
	case ChartBar:
		return "Bar Chart"
	default:
		return string(c)
	}
}

// ParseChartType accepts either the short form ("pie") or the display label
// ("Pie Chart"), case-insensitively.
func ParseChartType(s string) (ChartType, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.TrimSuffix(norm, " chart")
	switch norm {
	case "pie":
		return ChartPie, nil
	case "bar":
		return ChartBar, nil
	}
	return "", fmt.Errorf("unknown chart type %q", s)
}

// DefaultFieldColor is the color of a newly added field row.
const DefaultFieldColor = "#000000"

// Field is one labeled, colored data point of a card.
type Field struct {
	Name       string  `json:"name" yaml:"name"`
	Color      string  `json:"color" yaml:"color"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// DefaultField returns the blank row appended by "add field".
func DefaultField() Field {
	return Field{Name: "", Color: DefaultFieldColor, Percentage: 0}
}

// IsBlank reports whether the field has no name once whitespace is trimmed.
// Blank fields are dropped when a card is committed.
func (f Field) IsBlank() bool {
	return strings.TrimSpace(f.Name) == ""
}

// Card is a named, chart-typed group of fields rendered as one widget.
type Card struct {
	ID        CardID    `json:"id" yaml:"-"`
	Name      string    `json:"name" yaml:"name"`
	ChartType ChartType `json:"chart_type" yaml:"chart_type"`
	Fields    []Field   `json:"fields" yaml:"fields"`
}

// Clone creates a deep copy of the card
func (c Card) Clone() Card {
	clone := c
	if c.Fields != nil {
		clone.Fields = make([]Field, len(c.Fields))
		copy(clone.Fields, c.Fields)
	}
	return clone
}

// Total returns the sum of all field percentages. Nothing requires it to be 100.
func (c Card) Total() float64 {
	var sum float64
	for _, f := range c.Fields {
		sum += f.Percentage
	}
	return sum
}

var hexColorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// IsHexColor reports whether s is a #rgb or #rrggbb color.
func IsHexColor(s string) bool {
	return hexColorRegex.MatchString(s)
}

// CategoryCards is one category and its cards, in display order.
type CategoryCards struct {
	Category CategoryID `json:"category"`
	Cards    []Card     `json:"cards"`
}

// Dashboard is an immutable snapshot of every category, used by exports.
type Dashboard struct {
	Categories []CategoryCards `json:"categories"`
}

// CardCount returns the number of cards across all categories.
func (d Dashboard) CardCount() int {
	n := 0
	for _, c := range d.Categories {
		n += len(c.Cards)
	}
	return n
}
