package export

import (
	"fmt"
	"io"

	"github.com/vanderheijden86/widgetboard/pkg/chart"
	"github.com/vanderheijden86/widgetboard/pkg/model"

	json "github.com/goccy/go-json"
)

// Document is the JSON export envelope.
type Document struct {
	Title      string          `json:"title"`
	Generated  string          `json:"generated"`
	CardCount  int             `json:"card_count"`
	Categories []CategoryEntry `json:"categories"`
}

// CategoryEntry is one category with its cards and their derived charts.
type CategoryEntry struct {
	Category model.CategoryID `json:"category"`
	Cards    []CardEntry      `json:"cards"`
}

// CardEntry pairs a card with its chart data.
type CardEntry struct {
	model.Card
	Chart chart.Data `json:"chart"`
}

// NewDocument builds the JSON export document for d.
func NewDocument(d model.Dashboard, title, generated string) Document {
	doc := Document{
		Title:      title,
		Generated:  generated,
		CardCount:  d.CardCount(),
		Categories: make([]CategoryEntry, 0, len(d.Categories)),
	}
	for _, cc := range d.Categories {
		entry := CategoryEntry{Category: cc.Category, Cards: make([]CardEntry, 0, len(cc.Cards))}
		for _, card := range cc.Cards {
			entry.Cards = append(entry.Cards, CardEntry{Card: card, Chart: chart.Derive(card)})
		}
		doc.Categories = append(doc.Categories, entry)
	}
	return doc
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
