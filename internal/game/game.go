// internal/game/game.go
package game

import (
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/quattroplay/quattro/internal/models"
)

// Recoverable rule violations. Both are reported only to the originating
// session; neither leaves any state mutation behind.
var (
	// ErrUnknownPlayer means the acting session holds no seat in this game.
	ErrUnknownPlayer = errors.New("player is not part of this game")

	// ErrInvalidPlay covers every rejected move: out of turn, stale hand
	// index, a card that fails the color/value match, or a wild played
	// without naming a color.
	ErrInvalidPlay = errors.New("invalid play")

	// ErrNoCardsLeft means deck and discard pile together cannot supply a
	// card, which only happens when nearly everything is held in hands.
	ErrNoCardsLeft = errors.New("no cards left to draw")
)

// InitialHandSize is the number of cards dealt to each seat.
const InitialHandSize = 7

// Player is one seat inside a running game. The seat set is copied from the
// room roster at start time and never changes afterward; a player leaving
// the room mid-game only flips Connected off.
type Player struct {
	ID        uuid.UUID
	Name      string
	Hand      []models.Card
	Position  int
	Connected bool
}

// Game holds the entire state for a single game instance in memory. It lives
// for exactly one game: once Winner is set it is discarded, never reused.
//
// The engine carries no lock of its own. All methods assume the owning
// room's lock is held; the session router enforces that.
type Game struct {
	ID       uuid.UUID
	RoomCode string

	Players     []*Player
	Deck        []models.Card
	DiscardPile []models.Card

	CurrentPlayerIndex int
	Direction          int // +1 clockwise, -1 counter-clockwise
	CurrentColor       models.Color

	Started   bool
	Winner    uuid.UUID // uuid.Nil until a hand empties
	StartedAt time.Time

	rng *rand.Rand
}

// New builds a game for the given roster with a freshly shuffled deck.
// Seats are assigned in roster (join) order and are fixed for the whole game.
func New(roomCode string, roster []*models.Session) *Game {
	g := &Game{
		ID:        uuid.New(),
		RoomCode:  roomCode,
		Direction: 1,
		Deck:      BuildStandardDeck(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for i, s := range roster {
		g.Players = append(g.Players, &Player{
			ID:        s.ID,
			Name:      s.Name,
			Hand:      make([]models.Card, 0, InitialHandSize),
			Position:  i,
			Connected: true,
		})
	}
	Shuffle(g.Deck, g.rng)
	return g
}

// DealInitialHands deals seven cards to each seat in seat order, then seeds
// the discard pile with the first non-wild card off the deck and sets the
// active color from it. Wilds popped while seeding go back to the bottom of
// the deck, so the 108-card conservation holds from the very first turn.
func (g *Game) DealInitialHands() {
	for _, p := range g.Players {
		for i := 0; i < InitialHandSize; i++ {
			card, _ := g.popDeck()
			p.Hand = append(p.Hand, card)
		}
	}

	var setAside []models.Card
	for {
		card, _ := g.popDeck()
		if !card.IsWild() {
			g.DiscardPile = append(g.DiscardPile, card)
			g.CurrentColor = card.Color
			break
		}
		setAside = append(setAside, card)
	}
	if len(setAside) > 0 {
		g.Deck = append(setAside, g.Deck...)
	}

	g.Started = true
	g.StartedAt = time.Now()
}

// TopDiscard returns the card that dictates legal plays.
func (g *Game) TopDiscard() (models.Card, bool) {
	if len(g.DiscardPile) == 0 {
		return models.Card{}, false
	}
	return g.DiscardPile[len(g.DiscardPile)-1], true
}

// CanPlay reports whether playerID may legally play the given card right
// now. Wilds are always legal on the player's own turn; anything else must
// match the active color or the discard top's value.
func (g *Game) CanPlay(card models.Card, playerID uuid.UUID) bool {
	if g.Players[g.CurrentPlayerIndex].ID != playerID {
		return false
	}
	if card.IsWild() {
		return true
	}
	top, ok := g.TopDiscard()
	if !ok {
		return false
	}
	return card.Color == g.CurrentColor || card.Value == top.Value
}

// PlayResult reports a successful play back to the session router.
type PlayResult struct {
	Card   models.Card
	Winner uuid.UUID // uuid.Nil unless this play ended the game
}

// Play validates and resolves one card play. Validation runs to completion
// before any mutation, so a rejected intent can be retried or replayed
// without side effects and yields the identical error every time.
//
// A play that empties the acting hand is terminal: the winner is recorded
// and no effect resolution or turn advance happens afterward.
func (g *Game) Play(playerID uuid.UUID, handIndex int, chosenColor string) (PlayResult, error) {
	if g.Winner != uuid.Nil {
		return PlayResult{}, ErrInvalidPlay
	}
	p := g.playerByID(playerID)
	if p == nil {
		return PlayResult{}, ErrUnknownPlayer
	}
	if handIndex < 0 || handIndex >= len(p.Hand) {
		return PlayResult{}, ErrInvalidPlay
	}
	card := p.Hand[handIndex]
	if !g.CanPlay(card, playerID) {
		return PlayResult{}, ErrInvalidPlay
	}

	nextColor := card.Color
	if card.IsWild() {
		c, ok := models.ParseColor(chosenColor)
		if !ok {
			// Strict variant: a wild must name its color up front.
			return PlayResult{}, ErrInvalidPlay
		}
		nextColor = c
	}

	p.Hand = append(p.Hand[:handIndex], p.Hand[handIndex+1:]...)
	g.DiscardPile = append(g.DiscardPile, card)
	g.CurrentColor = nextColor

	if len(p.Hand) == 0 {
		g.Winner = p.ID
		return PlayResult{Card: card, Winner: p.ID}, nil
	}

	g.applyEffect(card)
	return PlayResult{Card: card}, nil
}

// applyEffect resolves the played card's effect. The card vocabulary is
// closed, so the switch is exhaustive; every branch ends with exactly one
// trailing turn advance beyond whatever the effect itself performed.
func (g *Game) applyEffect(card models.Card) {
	switch card.Value {
	case models.ValueSkip:
		g.advanceTurn()
	case models.ValueReverse:
		g.Direction = -g.Direction
		if len(g.Players) == 2 {
			// Two-handed reverse acts as a skip.
			g.advanceTurn()
		}
	case models.ValueDrawTwo:
		g.advanceTurn()
		g.forceDraw(g.Players[g.CurrentPlayerIndex], 2)
	case models.ValueWildDraw4:
		g.advanceTurn()
		g.forceDraw(g.Players[g.CurrentPlayerIndex], 4)
	}
	g.advanceTurn()
}

// Draw is the router-facing draw: it validates that the requester holds the
// turn, draws one card into their hand (reshuffling the discard history if
// the deck ran dry) and passes the turn.
func (g *Game) Draw(playerID uuid.UUID) (models.Card, error) {
	p := g.playerByID(playerID)
	if p == nil {
		return models.Card{}, ErrUnknownPlayer
	}
	if g.Players[g.CurrentPlayerIndex].ID != playerID {
		return models.Card{}, ErrInvalidPlay
	}
	card, ok := g.drawInto(p)
	if !ok {
		return models.Card{}, ErrNoCardsLeft
	}
	g.advanceTurn()
	return card, nil
}

// drawInto moves one card from the deck into p's hand, replenishing the
// deck from the discard pile first if needed. Returns false only in the
// degenerate case where no card can be produced at all.
func (g *Game) drawInto(p *Player) (models.Card, bool) {
	card, ok := g.popDeck()
	if !ok {
		return models.Card{}, false
	}
	p.Hand = append(p.Hand, card)
	return card, true
}

// forceDraw pushes n penalty cards into the seat's hand regardless of turn.
func (g *Game) forceDraw(p *Player, n int) {
	for i := 0; i < n; i++ {
		if _, ok := g.drawInto(p); !ok {
			return
		}
	}
}

// popDeck removes the top deck card, reshuffling first when the deck is
// empty: the current discard top is set aside, the rest of the discard
// history becomes the new deck, and the top is restored as the sole discard
// entry. The whole step is atomic under the room lock.
func (g *Game) popDeck() (models.Card, bool) {
	if len(g.Deck) == 0 {
		if len(g.DiscardPile) < 2 {
			return models.Card{}, false
		}
		top := g.DiscardPile[len(g.DiscardPile)-1]
		g.Deck = append(g.Deck, g.DiscardPile[:len(g.DiscardPile)-1]...)
		g.DiscardPile = []models.Card{top}
		Shuffle(g.Deck, g.rng)
	}
	card := g.Deck[len(g.Deck)-1]
	g.Deck = g.Deck[:len(g.Deck)-1]
	return card, true
}

// advanceTurn steps the turn pointer one seat in the active direction.
func (g *Game) advanceTurn() {
	n := len(g.Players)
	g.CurrentPlayerIndex = (g.CurrentPlayerIndex + g.Direction + n) % n
}

// MarkDisconnected flips a seat offline without removing it; the seat keeps
// its turn-order slot for the remainder of the game.
func (g *Game) MarkDisconnected(playerID uuid.UUID) {
	if p := g.playerByID(playerID); p != nil {
		p.Connected = false
	}
}

func (g *Game) playerByID(id uuid.UUID) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Summary assembles the finished-game record handed to the result sink.
// Total turns counts the discard pile, matching how long the game ran.
func (g *Game) Summary() models.GameResult {
	players := make([]models.ResultPlayer, 0, len(g.Players))
	for _, p := range g.Players {
		players = append(players, models.ResultPlayer{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Position:   p.Position,
		})
	}
	played := make([]models.Card, len(g.DiscardPile))
	copy(played, g.DiscardPile)

	now := time.Now()
	return models.GameResult{
		GameID:      g.ID,
		RoomID:      g.RoomCode,
		Players:     players,
		Winner:      g.Winner,
		TotalTurns:  len(g.DiscardPile),
		PlayedCards: played,
		Duration:    now.Sub(g.StartedAt),
		FinishedAt:  now,
	}
}
