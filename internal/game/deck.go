// internal/game/deck.go
package game

import (
	"math/rand"
	"strconv"

	"github.com/quattroplay/quattro/internal/models"
)

// DeckSize is the number of physical cards in a standard deck. Outside the
// atomic reshuffle step, deck + discard pile + all hands always sum to this.
const DeckSize = 108

// BuildStandardDeck produces the canonical 108-card multiset in a
// deterministic order: per color one "0", two each of "1".."9" and of
// skip/reverse/draw2, plus four wilds and four wild-draw-fours.
func BuildStandardDeck() []models.Card {
	deck := make([]models.Card, 0, DeckSize)

	for _, color := range models.Colors {
		deck = append(deck, models.Card{Color: color, Value: "0", Kind: models.KindNumber})
		for i := 1; i <= 9; i++ {
			num := models.Card{Color: color, Value: strconv.Itoa(i), Kind: models.KindNumber}
			deck = append(deck, num, num)
		}
		for _, special := range []string{models.ValueSkip, models.ValueReverse, models.ValueDrawTwo} {
			sp := models.Card{Color: color, Value: special, Kind: models.KindSpecial}
			deck = append(deck, sp, sp)
		}
	}

	for i := 0; i < 4; i++ {
		deck = append(deck,
			models.Card{Color: models.ColorWild, Value: models.ValueWild, Kind: models.KindWild},
			models.Card{Color: models.ColorWild, Value: models.ValueWildDraw4, Kind: models.KindWild},
		)
	}

	return deck
}

// Shuffle performs an unbiased in-place Fisher-Yates permutation using the
// supplied source.
func Shuffle(deck []models.Card, rng *rand.Rand) {
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}
