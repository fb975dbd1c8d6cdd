// Package views turns notes into cards and renders them as HTML fragments.
// The mapping in this file is pure; rendering lives in render.go.
package views

import (
	"time"

	"github.com/oliverisaac/stickies/types"
)

const DateLayout = "Jan 2, 2006"

var swatchHex = map[types.Color]string{
	types.ColorWhite:  "#fff",
	types.ColorRed:    "#ffb3b3",
	types.ColorGreen:  "#b8ffb8",
	types.ColorBlue:   "#b3d9ff",
	types.ColorYellow: "#ffffb3",
}

type Swatch struct {
	Color    types.Color
	Hex      string
	Selected bool
}

type Card struct {
	ID         string
	Content    string
	DateLabel  string
	ColorClass string
	Swatches   []Swatch
}

type Board struct {
	Query string
	Cards []Card
}

func NewCard(n types.Note, loc *time.Location) Card {
	if loc == nil {
		loc = time.Local
	}
	color := n.Color
	if _, ok := types.ParseColor(string(color)); !ok {
		color = types.DefaultColor
	}

	swatches := make([]Swatch, 0, len(types.Palette))
	for _, c := range types.Palette {
		swatches = append(swatches, Swatch{
			Color:    c,
			Hex:      swatchHex[c],
			Selected: c == color,
		})
	}

	return Card{
		ID:         n.ID,
		Content:    n.Content,
		DateLabel:  n.Date.In(loc).Format(DateLayout),
		ColorClass: string(color),
		Swatches:   swatches,
	}
}

func NewCards(notes []types.Note, loc *time.Location) []Card {
	cards := make([]Card, 0, len(notes))
	for _, n := range notes {
		cards = append(cards, NewCard(n, loc))
	}
	return cards
}

func NewBoard(data types.BoardPageData, loc *time.Location) Board {
	return Board{
		Query: data.Query,
		Cards: NewCards(data.Notes, loc),
	}
}
