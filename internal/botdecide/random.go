// Package botdecide provides a default BotScheduler.Decider implementation.
// Strategic decision-making is treated as an external, swappable
// collaborator; RandomDecider exists only so the server runs end-to-end
// without a real bot brain wired in, picking uniformly among legal card
// plays and among the bid kinds offered in the current bidding round.
package botdecide

import (
	"context"
	"math/rand"

	"github.com/lox/pokerforbots/internal/baloot"
)

// RandomDecider picks a uniformly random legal card play, or a uniformly
// random bid kind for the current bidding round. Bids are not checked
// against the bidding rules: a dealer pass, a round-2 Sun or a round-2
// Hokum in the floor card's suit can be drawn and is then rejected.
type RandomDecider struct {
	rng *rand.Rand
}

// NewRandomDecider constructs a decider backed by the given RNG, injectable
// so callers can pass a seeded source for deterministic test runs.
func NewRandomDecider(rng *rand.Rand) *RandomDecider {
	return &RandomDecider{rng: rng}
}

func (d *RandomDecider) Decide(ctx context.Context, game *baloot.Game, seat int) (baloot.Action, error) {
	if game.CurrentPhase == baloot.PhaseBidding {
		return d.decideBid(game, seat), nil
	}
	return d.decidePlay(game, seat), nil
}

func (d *RandomDecider) decideBid(game *baloot.Game, seat int) baloot.Action {
	actions := []baloot.BidAction{baloot.BidPass, baloot.BidSun, baloot.BidHokum}
	if r := game.CurrentRound; r != nil && r.Bidding != nil && r.Bidding.Round == baloot.BiddingRoundFirst {
		actions = append(actions, baloot.BidAshkal, baloot.BidKawesh)
	}
	choice := actions[d.rng.Intn(len(actions))]
	act := baloot.Action{Type: baloot.ActionBid, Seat: seat, BidAction: choice}
	if choice == baloot.BidHokum {
		act.Suit = baloot.Suit(d.rng.Intn(4))
	}
	return act
}

func (d *RandomDecider) decidePlay(game *baloot.Game, seat int) baloot.Action {
	r := game.CurrentRound
	if r == nil {
		return baloot.Action{Type: baloot.ActionBid, Seat: seat, BidAction: baloot.BidPass}
	}
	trump := baloot.Spades
	if r.Bid.TrumpSuit != nil {
		trump = *r.Bid.TrumpSuit
	}
	hand := game.Seats[seat].Hand
	var legal []int
	for i, c := range hand {
		if baloot.IsLegalPlay(c, hand, r.CurrentTrick, seat, r.Mode, trump, r.IsLocked) {
			legal = append(legal, i)
		}
	}
	if len(legal) == 0 {
		return baloot.Action{Type: baloot.ActionPlay, Seat: seat, CardIndex: 0}
	}
	return baloot.Action{Type: baloot.ActionPlay, Seat: seat, CardIndex: legal[d.rng.Intn(len(legal))]}
}
