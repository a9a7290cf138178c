// internal/models/card.go
package models

// Color is a card face color. CurrentColor in a running game is always one
// of the four real colors; ColorWild only ever appears on a card itself.
type Color string

const (
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorWild   Color = "wild"
)

// Colors lists the four playable colors in canonical order.
var Colors = []Color{ColorRed, ColorBlue, ColorGreen, ColorYellow}

// Kind partitions the card vocabulary into its three closed categories.
type Kind string

const (
	KindNumber  Kind = "number"
	KindSpecial Kind = "special"
	KindWild    Kind = "wild"
)

// Card values for the non-number cards.
const (
	ValueSkip      = "skip"
	ValueReverse   = "reverse"
	ValueDrawTwo   = "draw2"
	ValueWild      = "wild"
	ValueWildDraw4 = "wild-draw4"
)

// Card is an immutable value; duplicates are expected and equality is by
// value only. A standard deck carries 108 of them.
type Card struct {
	Color Color  `json:"color"`
	Value string `json:"value"`
	Kind  Kind   `json:"type"`
}

// IsWild reports whether the card is one of the two wild cards.
func (c Card) IsWild() bool {
	return c.Kind == KindWild
}

// ParseColor maps a client-supplied color string onto one of the four
// playable colors. The bool is false for anything else, including "wild".
func ParseColor(s string) (Color, bool) {
	switch Color(s) {
	case ColorRed, ColorBlue, ColorGreen, ColorYellow:
		return Color(s), true
	}
	return "", false
}
