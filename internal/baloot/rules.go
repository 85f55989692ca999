package baloot

// Partner returns the teammate seat for a given seat: {0,2} and {1,3} pair up.
func Partner(seat int) int {
	return (seat + 2) % 4
}

// trickLeaderWinner returns the seat currently winning a partial or complete
// trick, and false if the trick is empty.
func trickLeaderWinner(trick Trick, mode Mode, trumpSuit Suit) (int, bool) {
	if len(trick) == 0 {
		return 0, false
	}
	ledSuit, _ := trick.LedSuit()
	best := trick[0]
	bestIsTrump := mode == ModeHokum && best.Card.Suit == trumpSuit
	for _, play := range trick[1:] {
		isTrump := mode == ModeHokum && play.Card.Suit == trumpSuit
		switch {
		case isTrump && !bestIsTrump:
			best, bestIsTrump = play, true
		case isTrump == bestIsTrump && play.Card.Suit == best.Card.Suit && play.Card.Beats(best.Card, mode, trumpSuit):
			best = play
		case !isTrump && !bestIsTrump && play.Card.Suit == ledSuit && best.Card.Suit != ledSuit:
			best = play
		}
	}
	return best.PlayedBy, true
}

// TrickWinner returns the seat that wins a completed (4-play) trick: highest
// trump present, else highest card of the led suit.
func TrickWinner(trick Trick, mode Mode, trumpSuit Suit) int {
	seat, _ := trickLeaderWinner(trick, mode, trumpSuit)
	return seat
}

// IsLegalPlay reports whether card may legally be played by seat, holding
// hand, onto trick. isLocked reflects the round's doubling lock (Round
// §3/data model): a locked Hokum round exempts the over-trump obligation,
// mirroring the Qayd "No-Overtrump" violation's own locked-round exception.
func IsLegalPlay(card Card, hand Hand, trick Trick, seat int, mode Mode, trumpSuit Suit, isLocked bool) bool {
	if !containsCard(hand, card) {
		return false
	}
	ledSuit, led := trick.LedSuit()
	if !led {
		return true
	}

	if hand.HasSuit(ledSuit) {
		if card.Suit != ledSuit {
			return false
		}
		if mode == ModeSun {
			return mustBeatWithinSuit(card, hand, trick, ledSuit, mode, trumpSuit)
		}
		if mode == ModeHokum && ledSuit == trumpSuit {
			return mustOvertrumpWithinTrump(card, hand, trick, mode, trumpSuit, isLocked)
		}
		return true
	}

	if mode == ModeSun {
		return true
	}

	winner, ok := trickLeaderWinner(trick, mode, trumpSuit)
	partnerWinning := ok && winner == Partner(seat)
	if partnerWinning {
		return true
	}

	trumpsInHand := filterSuit(hand, trumpSuit)
	if len(trumpsInHand) == 0 {
		return true
	}
	if card.Suit != trumpSuit {
		return false
	}
	return mustOvertrumpWithinTrump(card, hand, trick, mode, trumpSuit, isLocked)
}

// mustBeatWithinSuit implements the Sun-mode obligation: when following
// suit, if the hand holds a suited card that beats the current highest of
// that suit on the trick, only such cards are legal.
func mustBeatWithinSuit(card Card, hand Hand, trick Trick, ledSuit Suit, mode Mode, trumpSuit Suit) bool {
	highest, any := highestOfSuit(trick, ledSuit, mode, trumpSuit)
	if !any {
		return true
	}
	suited := filterSuit(hand, ledSuit)
	hasBeater := false
	for _, c := range suited {
		if c.Beats(highest, mode, trumpSuit) {
			hasBeater = true
			break
		}
	}
	if !hasBeater {
		return true
	}
	return card.Beats(highest, mode, trumpSuit)
}

// mustOvertrumpWithinTrump implements the Hokum trump obligation: if a
// trump is already on the trick, a forced-to-trump (or following-trump)
// player must overtrump when able, unless isLocked exempts it.
func mustOvertrumpWithinTrump(card Card, hand Hand, trick Trick, mode Mode, trumpSuit Suit, isLocked bool) bool {
	highestTrump, any := highestOfSuit(trick, trumpSuit, mode, trumpSuit)
	if !any {
		return true
	}
	if isLocked {
		return true
	}
	trumps := filterSuit(hand, trumpSuit)
	hasOvertrump := false
	for _, c := range trumps {
		if c.Beats(highestTrump, mode, trumpSuit) {
			hasOvertrump = true
			break
		}
	}
	if !hasOvertrump {
		return true
	}
	return card.Beats(highestTrump, mode, trumpSuit)
}

func highestOfSuit(trick Trick, suit Suit, mode Mode, trumpSuit Suit) (Card, bool) {
	var best Card
	found := false
	for _, play := range trick {
		if play.Card.Suit != suit {
			continue
		}
		if !found || play.Card.Beats(best, mode, trumpSuit) {
			best = play.Card
			found = true
		}
	}
	return best, found
}

func filterSuit(hand Hand, suit Suit) []Card {
	out := make([]Card, 0, len(hand))
	for _, c := range hand {
		if c.Suit == suit {
			out = append(out, c)
		}
	}
	return out
}

func containsCard(hand Hand, card Card) bool {
	for _, c := range hand {
		if c == card {
			return true
		}
	}
	return false
}
