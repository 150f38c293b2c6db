package search

import (
	"errors"

	"github.com/LuanAssis01/sgi-maraba/internal/model"
)

// Navigator re-centres the map on a selection
type Navigator interface {
	SetHighlighted(id *int64) bool
	FocusPlace(c model.Coordinates)
}

// DetailOpener shows a request's detail view
type DetailOpener interface {
	OpenDetail(id int64)
}

// ErrNoSuggestion is returned when selecting outside the current list
var ErrNoSuggestion = errors.New("no such suggestion")

// Box is the state of the search field and its suggestion list
type Box struct {
	ranker  *Ranker
	visible func() []model.Request
	nav     Navigator
	detail  DetailOpener

	query       string
	suggestions []Suggestion
	open        bool
}

// NewBox wires a search field. visible supplies the requests currently on the map.
func NewBox(ranker *Ranker, visible func() []model.Request, nav Navigator, detail DetailOpener) *Box {
	return &Box{ranker: ranker, visible: visible, nav: nav, detail: detail}
}

// SetQuery updates the text and re-ranks
func (b *Box) SetQuery(q string) {
	b.query = q
	b.suggestions = b.ranker.Suggest(q, b.visible())
	b.open = len(b.suggestions) > 0
}

func (b *Box) Query() string { return b.query }

// Suggestions returns the open list, or nil once dismissed
func (b *Box) Suggestions() []Suggestion {
	if !b.open {
		return nil
	}
	return b.suggestions
}

func (b *Box) Open() bool { return b.open }

// Dismiss closes the list, e.g. on a click outside it
func (b *Box) Dismiss() {
	b.open = false
	b.suggestions = nil
}

// Select acts on the i-th open suggestion and closes the list. A request opens
// its detail and is highlighted on the map; a place re-centres the map and
// its name replaces the query.
func (b *Box) Select(i int) error {
	if !b.open || i < 0 || i >= len(b.suggestions) {
		return ErrNoSuggestion
	}
	s := b.suggestions[i]
	b.Dismiss()

	switch {
	case s.Request != nil:
		id := s.Request.ID
		b.detail.OpenDetail(id)
		b.nav.SetHighlighted(&id)
	case s.Place != nil:
		b.query = s.Place.Name
		b.nav.FocusPlace(s.Place.Coordinates)
	}
	return nil
}
