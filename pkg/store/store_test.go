package store

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/vanderheijden86/widgetboard/pkg/dashboard"
	"github.com/vanderheijden86/widgetboard/pkg/model"
	"github.com/vanderheijden86/widgetboard/pkg/widget"
)

func seeded() dashboard.State {
	s := dashboard.New()
	for _, name := range []string{"X", "Y", "Z"} {
		s = s.Seed(model.CategoryCSPM, model.Card{Name: name})
	}
	return s
}

func TestStore_FIFO(t *testing.T) {
	s := New()
	s.Dispatch(widget.RemoveWidget(model.CategoryCSPM, 1))
	s.Dispatch(widget.RemoveWidget(model.CategoryCWPP, 2))

	if s.Pending() != 2 {
		t.Fatalf("Pending() = %d, want 2", s.Pending())
	}

	ctx := context.Background()
	first, err := s.Next(ctx)
	if err != nil || first.Payload.WidgetID != 1 {
		t.Fatalf("first = %+v, err %v", first, err)
	}
	second, err := s.Next(ctx)
	if err != nil || second.Payload.WidgetID != 2 {
		t.Fatalf("second = %+v, err %v", second, err)
	}
	if len(s.History()) != 2 {
		t.Errorf("History() len = %d, want 2", len(s.History()))
	}
}

func TestStore_NextWaitsForDispatch(t *testing.T) {
	s := New()
	got := make(chan widget.Action, 1)
	go func() {
		a, err := s.Next(context.Background())
		if err == nil {
			got <- a
		}
	}()

	time.Sleep(10 * time.Millisecond)
	s.Dispatch(widget.RemoveWidget(model.CategoryRegistry, 9))

	select {
	case a := <-got:
		if a.Payload.WidgetID != 9 {
			t.Errorf("got %+v", a)
		}
	case <-time.After(time.Second):
		t.Fatal("Next did not wake up")
	}
}

func TestStore_NextHonorsContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := s.Next(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestStore_CloseDrainsThenErrors(t *testing.T) {
	s := New()
	s.Dispatch(widget.RemoveWidget(model.CategoryCSPM, 1))
	s.Close()
	s.Close() // idempotent
	s.Dispatch(widget.RemoveWidget(model.CategoryCSPM, 2))

	a, err := s.Next(context.Background())
	if err != nil || a.Payload.WidgetID != 1 {
		t.Fatalf("queued action lost: %+v %v", a, err)
	}
	if _, err := s.Next(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
	if len(s.History()) != 1 {
		t.Errorf("action after close recorded: %v", s.History())
	}
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Dispatch(widget.RemoveWidget(model.CategoryCSPM, model.CardID(i)))
		}(i)
	}
	wg.Wait()
	if s.Pending() != 50 {
		t.Errorf("Pending() = %d, want 50", s.Pending())
	}
}

func TestReduce_RemoveWidget(t *testing.T) {
	state := seeded()
	cards := state.Cards(model.CategoryCSPM)

	next := Reduce(state, widget.RemoveWidget(model.CategoryCSPM, cards[1].ID))
	var names []string
	for _, c := range next.Cards(model.CategoryCSPM) {
		names = append(names, c.Name)
	}
	if !reflect.DeepEqual(names, []string{"X", "Z"}) {
		t.Errorf("cards = %v, want [X Z]", names)
	}
	if len(state.Cards(model.CategoryCSPM)) != 3 {
		t.Error("Reduce mutated its input")
	}
}

func TestReduce_UnknownActionIgnored(t *testing.T) {
	state := seeded()
	next := Reduce(state, widget.Action{Type: "RENAME_WIDGET"})
	if next.CardCount() != 3 {
		t.Errorf("unknown action changed state")
	}
}

func TestCellToReduceRoundTrip(t *testing.T) {
	s := New()
	state := seeded()
	card := state.Cards(model.CategoryCSPM)[0]

	widget.NewCell(card, model.CategoryCSPM, s).Remove()

	a, err := s.Next(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	state = Reduce(state, a)
	if _, ok := state.Card(model.CategoryCSPM, card.ID); ok {
		t.Error("card still present after round trip")
	}
}
