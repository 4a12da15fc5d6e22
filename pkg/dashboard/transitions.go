package dashboard

import (
	"slices"
	"strings"

	"github.com/vanderheijden86/widgetboard/pkg/model"
)

// ToggleSidebar flips the sidebar and clears the active category, selection
// and draft in both directions.
func (s State) ToggleSidebar() State {
	s.open = !s.open
	s.active = ""
	return s.reset()
}

// SelectCategory makes c the active category and clears selection and draft.
// Categories the dashboard does not know are ignored.
func (s State) SelectCategory(c model.CategoryID) State {
	if !s.HasCategory(c) {
		return s
	}
	s.active = c
	return s.reset()
}

// StartAddCard enters the draft form. Requires an open sidebar, an active
// category and no draft already in progress.
func (s State) StartAddCard() State {
	if !s.open || s.active == "" || s.adding {
		return s
	}
	s.adding = true
	s.draft = NewDraft()
	return s
}

// SetCardName sets the draft card name as typed.
func (s State) SetCardName(name string) State {
	if !s.adding {
		return s
	}
	s.draft.Name = name
	return s
}

// SetChartType sets the draft chart type. Unknown types are ignored.
func (s State) SetChartType(t model.ChartType) State {
	if !s.adding || !t.IsValid() {
		return s
	}
	s.draft.ChartType = t
	return s
}

// SetFieldName sets the name of draft row i.
func (s State) SetFieldName(i int, name string) State {
	return s.editField(i, func(f *model.Field) { f.Name = name })
}

// SetFieldColor sets the color of draft row i. The value is not validated.
func (s State) SetFieldColor(i int, color string) State {
	return s.editField(i, func(f *model.Field) { f.Color = color })
}

// SetFieldPercentage sets the percentage of draft row i. Values outside
// [0,100] are stored as given.
func (s State) SetFieldPercentage(i int, pct float64) State {
	return s.editField(i, func(f *model.Field) { f.Percentage = pct })
}

// AddField appends a default field row to the draft.
func (s State) AddField() State {
	if !s.adding {
		return s
	}
	fields := make([]model.Field, len(s.draft.Fields), len(s.draft.Fields)+1)
	copy(fields, s.draft.Fields)
	s.draft.Fields = append(fields, model.DefaultField())
	return s
}

// RemoveField drops draft row i, keeping the rest in order.
func (s State) RemoveField(i int) State {
	if !s.adding || i < 0 || i >= len(s.draft.Fields) {
		return s
	}
	fields := make([]model.Field, 0, len(s.draft.Fields)-1)
	fields = append(fields, s.draft.Fields[:i]...)
	fields = append(fields, s.draft.Fields[i+1:]...)
	s.draft.Fields = fields
	return s
}

// CommitCard appends the draft as a new card in the active category and
// returns to category browsing. Requires a non-blank name and an active
// category. Fields with blank names are dropped.
func (s State) CommitCard() State {
	if strings.TrimSpace(s.draft.Name) == "" || s.active == "" {
		return s
	}

	card := model.Card{
		ID:        s.nextID,
		Name:      s.draft.Name,
		ChartType: s.draft.ChartType,
		Fields:    keepNamedFields(s.draft.Fields),
	}
	s.nextID++

	existing := s.cards[s.active]
	cards := make([]model.Card, len(existing), len(existing)+1)
	copy(cards, existing)
	s = s.withCards(s.active, append(cards, card))

	s.adding = false
	s.draft = NewDraft()
	return s
}

// ToggleCardSelection adds the card to the selection if absent and removes
// it if present. Cards outside the active category are ignored.
func (s State) ToggleCardSelection(id model.CardID) State {
	if s.active == "" {
		return s
	}
	if _, ok := s.Card(s.active, id); !ok {
		return s
	}
	if idx := slices.Index(s.selected, id); idx >= 0 {
		s.selected = slices.Delete(slices.Clone(s.selected), idx, idx+1)
		return s
	}
	selected := make([]model.CardID, len(s.selected), len(s.selected)+1)
	copy(selected, s.selected)
	s.selected = append(selected, id)
	return s
}

// DeleteSelected removes every selected card from the active category and
// clears the selection. Requires an active category and a non-empty selection.
func (s State) DeleteSelected() State {
	if s.active == "" || len(s.selected) == 0 {
		return s
	}
	drop := make(map[model.CardID]bool, len(s.selected))
	for _, id := range s.selected {
		drop[id] = true
	}
	var kept []model.Card
	for _, card := range s.cards[s.active] {
		if !drop[card.ID] {
			kept = append(kept, card)
		}
	}
	s = s.withCards(s.active, kept)
	s.selected = nil
	return s
}

// RemoveCard removes a single card from category c and drops it from the
// selection. Unknown categories or IDs are ignored.
func (s State) RemoveCard(c model.CategoryID, id model.CardID) State {
	existing, ok := s.cards[c]
	if !ok {
		return s
	}
	idx := slices.IndexFunc(existing, func(card model.Card) bool { return card.ID == id })
	if idx < 0 {
		return s
	}
	s = s.withCards(c, slices.Delete(slices.Clone(existing), idx, idx+1))
	if sel := slices.Index(s.selected, id); sel >= 0 {
		s.selected = slices.Delete(slices.Clone(s.selected), sel, sel+1)
	}
	return s
}

// Seed appends a pre-built card to category c without touching sidebar,
// selection or draft state. The card gets a fresh ID; blank fields are
// dropped and cards with a blank name or unknown chart type are ignored.
// The chart type may be given as a display label such as "Bar Chart".
func (s State) Seed(c model.CategoryID, card model.Card) State {
	if !s.HasCategory(c) || strings.TrimSpace(card.Name) == "" {
		return s
	}
	if strings.TrimSpace(string(card.ChartType)) == "" {
		card.ChartType = model.DefaultChartType
	}
	t, err := model.ParseChartType(string(card.ChartType))
	if err != nil {
		return s
	}
	card.ChartType = t
	card.ID = s.nextID
	card.Fields = keepNamedFields(card.Fields)
	s.nextID++

	existing := s.cards[c]
	cards := make([]model.Card, len(existing), len(existing)+1)
	copy(cards, existing)
	return s.withCards(c, append(cards, card))
}

func keepNamedFields(fields []model.Field) []model.Field {
	kept := make([]model.Field, 0, len(fields))
	for _, f := range fields {
		if !f.IsBlank() {
			kept = append(kept, f)
		}
	}
	return kept
}
