package baloot

import "math/rand"

// Deck is a shuffleable 32-card Baloot deck. The rng is injected so callers
// (tests, --seed fast-forward runs) can get deterministic deals.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewShuffledDeck returns a freshly shuffled 32-card deck using rng.
func NewShuffledDeck(rng *rand.Rand) *Deck {
	d := &Deck{cards: NewDeck(), rng: rng}
	d.Shuffle()
	return d
}

// Shuffle randomizes the deck in place via Fisher-Yates.
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns the top card.
func (d *Deck) Deal() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, true
}

// DealN deals up to n cards from the top of the deck.
func (d *Deck) DealN(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	cards := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		c, ok := d.Deal()
		if !ok {
			break
		}
		cards = append(cards, c)
	}
	return cards
}

// Remaining reports how many cards are left undealt.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
