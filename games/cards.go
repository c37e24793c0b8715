package games

import (
	"errors"
	"strings"

	"wagerbot/models"
)

// ErrShoeEmpty is returned when drawing from an exhausted shoe
var ErrShoeEmpty = errors.New("shoe is empty")

type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Spades
	Clubs
)

var suits = []Suit{Hearts, Diamonds, Spades, Clubs}

func (s Suit) String() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Spades:
		return "♠"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

type Rank int

// The house shoe carries a low "1" card next to the ace, giving 14 ranks per suit.
const (
	One Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

var ranks = []Rank{One, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

// ShoeSize is the number of cards in a fresh shoe
const ShoeSize = 56

// Value returns the face value of the rank. Aces count 11 until softened.
func (r Rank) Value() int {
	switch {
	case r == Ace:
		return 11
	case r >= Jack:
		return 10
	default:
		return int(r)
	}
}

func (r Rank) String() string {
	switch r {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		if r >= One && r <= Ten {
			return [...]string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}[r-1]
		}
		return "?"
	}
}

type Card struct {
	Rank Rank
	Suit Suit
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Shoe is a single-use pool of undrawn cards owned by one session
type Shoe struct {
	cards []Card
	rng   Rand
}

// NewShoe builds a full shoe of every rank in every suit
func NewShoe(rng Rand) *Shoe {
	cards := make([]Card, 0, ShoeSize)
	for _, r := range ranks {
		for _, s := range suits {
			cards = append(cards, Card{Rank: r, Suit: s})
		}
	}
	return &Shoe{cards: cards, rng: rng}
}

type topOfShoe struct{}

func (topOfShoe) IntN(n int) int { return n - 1 }

// NewStackedShoe builds a shoe that deals exactly the given cards, in order
func NewStackedShoe(cards ...Card) *Shoe {
	stacked := make([]Card, len(cards))
	for i, c := range cards {
		stacked[len(cards)-1-i] = c
	}
	return &Shoe{cards: stacked, rng: topOfShoe{}}
}

// Draw removes a uniformly chosen card. The chosen slot is filled with the
// last card and the pool is truncated.
func (s *Shoe) Draw() (Card, error) {
	if len(s.cards) == 0 {
		return Card{}, ErrShoeEmpty
	}
	i := s.rng.IntN(len(s.cards))
	last := len(s.cards) - 1
	c := s.cards[i]
	s.cards[i] = s.cards[last]
	s.cards = s.cards[:last]
	return c, nil
}

// Remaining returns the number of undrawn cards
func (s *Shoe) Remaining() int {
	return len(s.cards)
}

type handCard struct {
	card  Card
	value int
}

// Hand is an ordered set of cards with an incrementally maintained total
type Hand struct {
	cards []handCard
	total int
}

// Add appends a card and softens aces if the total went over 21
func (h *Hand) Add(c Card) {
	v := c.Rank.Value()
	h.cards = append(h.cards, handCard{card: c, value: v})
	h.total += v
	h.soften()
}

// soften revalues the earliest 11-point ace to 1 until the hand is at most 21
func (h *Hand) soften() {
	for h.total > 21 {
		i := h.firstSoftAce()
		if i < 0 {
			return
		}
		h.cards[i].value = 1
		h.total -= 10
	}
}

func (h *Hand) firstSoftAce() int {
	for i, hc := range h.cards {
		if hc.card.Rank == Ace && hc.value == 11 {
			return i
		}
	}
	return -1
}

func (h *Hand) Total() int {
	return h.total
}

// Soft reports whether an ace is still counted as 11
func (h *Hand) Soft() bool {
	return h.firstSoftAce() >= 0
}

func (h *Hand) Busted() bool {
	return h.total > 21
}

func (h *Hand) Len() int {
	return len(h.cards)
}

// Cards returns a copy of the cards in draw order
func (h *Hand) Cards() []Card {
	out := make([]Card, len(h.cards))
	for i, hc := range h.cards {
		out[i] = hc.card
	}
	return out
}

// View renders the hand. A masked view exposes only the first card and
// replaces the rest with placeholders.
func (h *Hand) View(masked bool) *models.HandView {
	view := &models.HandView{Cards: make([]string, len(h.cards)), Masked: masked}
	for i, hc := range h.cards {
		if masked && i > 0 {
			view.Cards[i] = "#"
			continue
		}
		view.Cards[i] = hc.card.String()
	}
	if !masked {
		view.Total = h.total
	}
	return view
}

func (h *Hand) String() string {
	parts := make([]string, len(h.cards))
	for i, hc := range h.cards {
		parts[i] = hc.card.String()
	}
	return strings.Join(parts, " ")
}
