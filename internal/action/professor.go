package action

import "github.com/lox/pokerforbots/internal/baloot"

// ProfessorSuggestion is the alternative offered when an intercept fires.
type ProfessorSuggestion struct {
	CardIndex int
	Reasoning string
}

// professorIntercept offers an alternative before finalizing a human PLAY
// action: if the room enabled it, compare the proposed card's point value
// to the best legal alternative's. If the delta exceeds a threshold and
// the caller hasn't set SkipProfessor, returns a suggestion and the caller
// must not mutate state.
func professorIntercept(game *baloot.Game, seat int, cardIndex int) (ProfessorSuggestion, bool) {
	const deltaThreshold = 4

	r := game.CurrentRound
	if r == nil {
		return ProfessorSuggestion{}, false
	}
	hand := game.Seats[seat].Hand
	if cardIndex < 0 || cardIndex >= len(hand) {
		return ProfessorSuggestion{}, false
	}
	trump := trumpSuitOf(r)
	proposed := hand[cardIndex]

	bestIdx, bestValue := -1, -1
	proposedValue := -1
	for i, c := range hand {
		if !baloot.IsLegalPlay(c, hand, r.CurrentTrick, seat, r.Mode, trump, r.IsLocked) {
			continue
		}
		v := baloot.CardPoints(c, r.Mode, trump)
		if c == proposed {
			proposedValue = v
		}
		if v > bestValue {
			bestValue, bestIdx = v, i
		}
	}
	if bestIdx < 0 || bestIdx == cardIndex {
		return ProfessorSuggestion{}, false
	}
	if bestValue-proposedValue <= deltaThreshold {
		return ProfessorSuggestion{}, false
	}
	return ProfessorSuggestion{CardIndex: bestIdx, Reasoning: "a higher-value legal card is available"}, true
}

// trumpSuitOf mirrors baloot.trumpSuitOf, duplicated here since that helper
// is unexported across package boundaries.
func trumpSuitOf(r *baloot.Round) baloot.Suit {
	if r.Bid.TrumpSuit != nil {
		return *r.Bid.TrumpSuit
	}
	return baloot.Spades
}
