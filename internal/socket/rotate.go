package socket

import (
	"encoding/json"

	"github.com/lox/pokerforbots/internal/baloot"
)

// rotateSeat maps a server-side seat index onto the viewer's perspective:
// the recipient's own seat is always presented as position 0 (Bottom).
func rotateSeat(serverIdx, viewerSeat int) int {
	return ((serverIdx-viewerSeat)%4 + 4) % 4
}

// RotateGame returns a deep copy of game with every position-bearing field
// rotated so viewerSeat appears at index 0, and every other seat's hand
// hidden unless the room has IsDebug enabled.
func RotateGame(game *baloot.Game, viewerSeat int) (*baloot.Game, error) {
	raw, err := json.Marshal(game)
	if err != nil {
		return nil, err
	}
	var g baloot.Game
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, err
	}

	rotateSeats(&g, viewerSeat)
	g.DealerSeat = rotateSeat(g.DealerSeat, viewerSeat)
	if g.CurrentTurnSeat >= 0 && g.CurrentTurnSeat <= 3 {
		g.CurrentTurnSeat = rotateSeat(g.CurrentTurnSeat, viewerSeat)
	}
	if g.CurrentRound != nil {
		rotateRound(g.CurrentRound, viewerSeat)
	}
	if !g.Settings.IsDebug {
		hideOtherHands(&g)
	}
	return &g, nil
}

func rotateSeats(g *baloot.Game, viewerSeat int) {
	var rotated [4]baloot.Seat
	for i, s := range g.Seats {
		s.Index = rotateSeat(i, viewerSeat)
		rotated[s.Index] = s
	}
	g.Seats = rotated
}

func rotateTrick(trick baloot.Trick, viewerSeat int) {
	for i := range trick {
		trick[i].PlayedBy = rotateSeat(trick[i].PlayedBy, viewerSeat)
	}
}

func rotateRound(r *baloot.Round, viewerSeat int) {
	rotateTrick(r.CurrentTrick, viewerSeat)
	for _, trick := range r.TrickHistory {
		rotateTrick(trick, viewerSeat)
	}

	if r.Declarations != nil {
		rotated := map[int][]baloot.Project{}
		for seat, projects := range r.Declarations {
			for i := range projects {
				projects[i].Seat = rotateSeat(projects[i].Seat, viewerSeat)
			}
			rotated[rotateSeat(seat, viewerSeat)] = projects
		}
		r.Declarations = rotated
	}

	if r.Baloot != nil {
		rotated := map[int]*baloot.BalootState{}
		for seat, state := range r.Baloot {
			if state != nil {
				state.Owner = rotateSeat(state.Owner, viewerSeat)
			}
			rotated[rotateSeat(seat, viewerSeat)] = state
		}
		r.Baloot = rotated
	}

	if r.Bid.Bidder != nil {
		rotated := rotateSeat(*r.Bid.Bidder, viewerSeat)
		r.Bid.Bidder = &rotated
	}

	if r.Bidding != nil {
		r.Bidding.SpeakerSeat = rotateSeat(r.Bidding.SpeakerSeat, viewerSeat)
		if r.Bidding.SeatsSpokenR2 != nil {
			rotated := map[int]bool{}
			for seat, v := range r.Bidding.SeatsSpokenR2 {
				rotated[rotateSeat(seat, viewerSeat)] = v
			}
			r.Bidding.SeatsSpokenR2 = rotated
		}
	}

	if r.Akka != nil {
		if r.Akka.Claimed != nil {
			rotated := map[int]bool{}
			for seat, v := range r.Akka.Claimed {
				rotated[rotateSeat(seat, viewerSeat)] = v
			}
			r.Akka.Claimed = rotated
		}
		for i := range r.Akka.History {
			r.Akka.History[i].PlayedBy = rotateSeat(r.Akka.History[i].PlayedBy, viewerSeat)
		}
	}

	if r.Sawa != nil {
		r.Sawa.ClaimSeat = rotateSeat(r.Sawa.ClaimSeat, viewerSeat)
		if r.Sawa.Responses != nil {
			rotated := map[int]bool{}
			for seat, v := range r.Sawa.Responses {
				rotated[rotateSeat(seat, viewerSeat)] = v
			}
			r.Sawa.Responses = rotated
		}
	}

	if r.Qayd != nil {
		r.Qayd.Reporter = rotateSeat(r.Qayd.Reporter, viewerSeat)
		r.Qayd.Suspect = rotateSeat(r.Qayd.Suspect, viewerSeat)
		if r.Qayd.CrimeCard != nil {
			r.Qayd.CrimeCard.PlayedBy = rotateSeat(r.Qayd.CrimeCard.PlayedBy, viewerSeat)
		}
		if r.Qayd.ProofCard != nil {
			r.Qayd.ProofCard.PlayedBy = rotateSeat(r.Qayd.ProofCard.PlayedBy, viewerSeat)
		}
	}
}

func hideOtherHands(g *baloot.Game) {
	for i := range g.Seats {
		if i != 0 {
			g.Seats[i].Hand = nil
		}
	}
}
