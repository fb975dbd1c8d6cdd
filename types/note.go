package types

import (
	"time"
)

type Color string

const (
	ColorWhite  Color = "color-white"
	ColorRed    Color = "color-red"
	ColorGreen  Color = "color-green"
	ColorBlue   Color = "color-blue"
	ColorYellow Color = "color-yellow"

	DefaultColor = ColorWhite
)

// Palette is the fixed set of note colors, in the order the swatches are shown.
var Palette = []Color{ColorWhite, ColorRed, ColorGreen, ColorBlue, ColorYellow}

func ParseColor(s string) (Color, bool) {
	for _, c := range Palette {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

type Note struct {
	ID      string    `json:"id"`
	Content string    `json:"content"`
	Date    time.Time `json:"date"`
	Color   Color     `json:"color"`
}

func NewNote(id string, created time.Time) Note {
	return Note{
		ID:    id,
		Date:  created.UTC().Truncate(time.Millisecond),
		Color: DefaultColor,
	}
}
