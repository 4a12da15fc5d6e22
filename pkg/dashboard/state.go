// Package dashboard holds the category board state and its transitions.
//
// State is a value. Every transition has a value receiver and returns a new
// State; slices and maps reachable from the receiver are never written, so a
// previous snapshot stays valid after any transition. Guarded transitions
// whose preconditions do not hold return the receiver unchanged.
package dashboard

import (
	"slices"
	"strings"

	"github.com/vanderheijden86/widgetboard/pkg/model"
)

// Phase is the sidebar state derived from a State.
type Phase int

const (
	// PhaseClosed: sidebar hidden.
	PhaseClosed Phase = iota
	// PhaseBrowsing: sidebar open, no category chosen.
	PhaseBrowsing
	// PhaseCategorySelected: a category is active, no draft.
	PhaseCategorySelected
	// PhaseDraft: a new card is being edited.
	PhaseDraft
)

func (p Phase) String() string {
	switch p {
	case PhaseClosed:
		return "closed"
	case PhaseBrowsing:
		return "browsing"
	case PhaseCategorySelected:
		return "category"
	case PhaseDraft:
		return "draft"
	default:
		return "unknown"
	}
}

// Draft is the in-progress card shown in the "add card" form.
type Draft struct {
	Name      string
	ChartType model.ChartType
	Fields    []model.Field
}

// NewDraft returns a reset draft: no name, default chart type and a single
// blank field row.
func NewDraft() Draft {
	return Draft{
		ChartType: model.DefaultChartType,
		Fields:    []model.Field{model.DefaultField()},
	}
}

// IsEmpty reports whether the draft equals a freshly reset one.
func (d Draft) IsEmpty() bool {
	if d.Name != "" || d.ChartType != model.DefaultChartType || len(d.Fields) != 1 {
		return false
	}
	return d.Fields[0] == model.DefaultField()
}

func (d Draft) clone() Draft {
	d.Fields = slices.Clone(d.Fields)
	return d
}

// State is the full dashboard: the category map plus sidebar, selection and
// draft state.
type State struct {
	order    []model.CategoryID
	cards    map[model.CategoryID][]model.Card
	nextID   model.CardID
	open     bool
	active   model.CategoryID
	selected []model.CardID
	adding   bool
	draft    Draft
}

// New creates a closed dashboard with one empty list per category. Empty and
// duplicate IDs are skipped; with no usable categories the default set is used.
func New(categories ...model.CategoryID) State {
	var order []model.CategoryID
	seen := make(map[model.CategoryID]bool, len(categories))
	for _, c := range categories {
		if strings.TrimSpace(string(c)) == "" || seen[c] {
			continue
		}
		seen[c] = true
		order = append(order, c)
	}
	if len(order) == 0 {
		order = model.DefaultCategories()
	}

	cards := make(map[model.CategoryID][]model.Card, len(order))
	for _, c := range order {
		cards[c] = nil
	}

	return State{
		order:  order,
		cards:  cards,
		nextID: 1,
		draft:  NewDraft(),
	}
}

// --- queries ---------------------------------------------------------------

// Categories returns the category IDs in display order.
func (s State) Categories() []model.CategoryID {
	return slices.Clone(s.order)
}

// HasCategory reports whether c is one of the dashboard's categories.
func (s State) HasCategory(c model.CategoryID) bool {
	_, ok := s.cards[c]
	return ok
}

// Cards returns a copy of the cards in category c.
func (s State) Cards(c model.CategoryID) []model.Card {
	return slices.Clone(s.cards[c])
}

// Card looks up a card by ID within category c.
func (s State) Card(c model.CategoryID, id model.CardID) (model.Card, bool) {
	for _, card := range s.cards[c] {
		if card.ID == id {
			return card.Clone(), true
		}
	}
	return model.Card{}, false
}

// CardCount returns the number of cards across all categories.
func (s State) CardCount() int {
	n := 0
	for _, cards := range s.cards {
		n += len(cards)
	}
	return n
}

// IsSidebarOpen reports whether the sidebar is visible.
func (s State) IsSidebarOpen() bool { return s.open }

// SelectedCategory returns the active category, or "" when none is selected.
func (s State) SelectedCategory() model.CategoryID { return s.active }

// IsAddingCard reports whether the draft form is active.
func (s State) IsAddingCard() bool { return s.adding }

// Draft returns a copy of the current draft.
func (s State) Draft() Draft { return s.draft.clone() }

// Selection returns the selected card IDs in the order they were selected.
func (s State) Selection() []model.CardID { return slices.Clone(s.selected) }

// IsSelected reports whether the card is in the current selection.
func (s State) IsSelected(id model.CardID) bool {
	return slices.Contains(s.selected, id)
}

// Phase derives the sidebar state.
func (s State) Phase() Phase {
	switch {
	case !s.open:
		return PhaseClosed
	case s.active == "":
		return PhaseBrowsing
	case s.adding:
		return PhaseDraft
	default:
		return PhaseCategorySelected
	}
}

// Snapshot returns a deep copy of every category and card for export.
func (s State) Snapshot() model.Dashboard {
	d := model.Dashboard{Categories: make([]model.CategoryCards, 0, len(s.order))}
	for _, c := range s.order {
		cc := model.CategoryCards{Category: c, Cards: make([]model.Card, 0, len(s.cards[c]))}
		for _, card := range s.cards[c] {
			cc.Cards = append(cc.Cards, card.Clone())
		}
		d.Categories = append(d.Categories, cc)
	}
	return d
}

// --- internal copy-on-write helpers ----------------------------------------

// withCards returns s with category c's list replaced. The map is copied so
// the receiver's map is left intact.
func (s State) withCards(c model.CategoryID, cards []model.Card) State {
	next := make(map[model.CategoryID][]model.Card, len(s.cards))
	for k, v := range s.cards {
		next[k] = v
	}
	next[c] = cards
	s.cards = next
	return s
}

// reset clears selection and draft state.
func (s State) reset() State {
	s.selected = nil
	s.adding = false
	s.draft = NewDraft()
	return s
}

// editField applies fn to a copy of draft row i. No-op outside Draft or for
// out-of-range indices.
func (s State) editField(i int, fn func(*model.Field)) State {
	if !s.adding || i < 0 || i >= len(s.draft.Fields) {
		return s
	}
	s.draft = s.draft.clone()
	fn(&s.draft.Fields[i])
	return s
}
