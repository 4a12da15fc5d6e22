// Package widget implements the dashboard's leaf card cell and the action it
// emits when the user asks to remove it.
package widget

import (
	"github.com/vanderheijden86/widgetboard/pkg/model"
)

// ActionType names an action understood by the store.
type ActionType string

// ActionRemoveWidget asks the store to drop one card from a category.
const ActionRemoveWidget ActionType = "REMOVE_WIDGET"

// RemovePayload identifies the card to remove.
type RemovePayload struct {
	CategoryID model.CategoryID `json:"categoryId"`
	WidgetID   model.CardID     `json:"widgetId"`
}

// Action is a message sent to the store.
type Action struct {
	Type    ActionType    `json:"type"`
	Payload RemovePayload `json:"payload"`
}

// RemoveWidget builds a REMOVE_WIDGET action.
func RemoveWidget(category model.CategoryID, id model.CardID) Action {
	return Action{
		Type:    ActionRemoveWidget,
		Payload: RemovePayload{CategoryID: category, WidgetID: id},
	}
}

// Dispatcher receives actions. Implementations own how and when the action
// is applied; Dispatch must not block the caller.
type Dispatcher interface {
	Dispatch(Action)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(Action)

// Dispatch calls f(a).
func (f DispatcherFunc) Dispatch(a Action) { f(a) }

// Cell is a card bound to its owning category. It never changes the card;
// removal is requested from the dispatcher and applied elsewhere.
type Cell struct {
	card     model.Card
	category model.CategoryID
	dispatch Dispatcher
}

// NewCell binds a card and its category to a dispatcher.
func NewCell(card model.Card, category model.CategoryID, d Dispatcher) Cell {
	return Cell{card: card, category: category, dispatch: d}
}

// Card returns the bound card.
func (c Cell) Card() model.Card { return c.card }

// Category returns the owning category.
func (c Cell) Category() model.CategoryID { return c.category }

// Remove emits a REMOVE_WIDGET action for the bound card. There is no
// result: the owner of the card list applies the removal and re-renders.
func (c Cell) Remove() {
	if c.dispatch == nil {
		return
	}
	c.dispatch.Dispatch(RemoveWidget(c.category, c.card.ID))
}
