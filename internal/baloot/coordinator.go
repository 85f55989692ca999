package baloot

// ActionType identifies an incoming game_action's kind.
type ActionType string

const (
	ActionPlay            ActionType = "PLAY"
	ActionBid             ActionType = "BID"
	ActionDouble          ActionType = "DOUBLE"
	ActionAkka            ActionType = "AKKA"
	ActionSawaClaim       ActionType = "SAWA_CLAIM"
	ActionSawaResponse    ActionType = "SAWA_RESPONSE"
	ActionDeclareProject  ActionType = "DECLARE_PROJECT"
	ActionBaloot          ActionType = "BALOOT"
	ActionRebaloot        ActionType = "RE_BALOOT"
	ActionNextRound       ActionType = "NEXT_ROUND"
	ActionQaydStart       ActionType = "QAYD_START"
	ActionQaydSelectViolation ActionType = "QAYD_SELECT_VIOLATION"
	ActionQaydSelectCard  ActionType = "QAYD_SELECT_CARD"
	ActionQaydConfirm     ActionType = "QAYD_CONFIRM"
	ActionQaydCancel      ActionType = "QAYD_CANCEL"
	ActionUpdateSettings  ActionType = "UPDATE_SETTINGS"
)

// Action is one dispatched game_action payload, already schema-validated by
// the ActionHandler.
type Action struct {
	Type      ActionType
	Seat      int
	CardIndex int
	BidAction BidAction
	Suit      Suit
	Accept    bool
	Settings  *RoomSettings
	Violation QaydViolation
	QaydRole  QaydRole
	QaydCard  PlayedCard
	ProjectRef int
	SkipProfessor bool
}

// offTurnAllowed lists the action types legal regardless of whose turn it
// is: Qayd claims by non-turn seats, Sawa responses, and Baloot/Re-baloot
// declarations (the turn has already advanced past the declaring seat by
// the time the client announces the card it just played).
func offTurnAllowed(t ActionType) bool {
	switch t {
	case ActionQaydStart, ActionQaydSelectViolation, ActionQaydSelectCard, ActionQaydConfirm, ActionQaydCancel,
		ActionSawaResponse, ActionUpdateSettings, ActionBaloot, ActionRebaloot:
		return true
	}
	return false
}

// Dispatch routes an action through the phase state machine. On success the
// Game has been mutated and the caller should persist + broadcast. On
// failure, no mutation occurred.
func (g *Game) Dispatch(action Action) error {
	if action.Type != ActionSawaClaim && action.Type != ActionAkka && !offTurnAllowed(action.Type) && action.Type != ActionBid && action.Type != ActionPlay && action.Type != ActionDouble && action.Type != ActionDeclareProject && action.Type != ActionNextRound && action.Type != ActionBaloot && action.Type != ActionRebaloot {
		return NewGameError(ErrInvalidPayload, "unrecognized action type")
	}

	switch action.Type {
	case ActionUpdateSettings:
		return g.handleUpdateSettings(action)
	case ActionQaydStart, ActionQaydSelectViolation, ActionQaydSelectCard, ActionQaydConfirm, ActionQaydCancel:
		return g.handleQayd(action)
	case ActionSawaResponse:
		return g.handleSawaResponse(action)
	}

	switch g.CurrentPhase {
	case PhaseWaiting:
		return NewGameError(ErrWrongPhase, "room is still waiting for players")
	case PhaseBidding:
		return g.handleBiddingPhase(action)
	case PhasePlaying:
		return g.handlePlayingPhase(action)
	case PhaseRoundOver:
		if action.Type == ActionNextRound {
			return g.startNextRound()
		}
		return NewGameError(ErrWrongPhase, "round is over; only NEXT_ROUND is accepted")
	case PhaseGameOver:
		return NewGameError(ErrWrongPhase, "game is over")
	case PhaseQaydActive:
		return NewGameError(ErrWrongPhase, "qayd is active; only qayd actions are accepted")
	}
	return NewGameError(ErrWrongPhase, "unknown phase")
}

func (g *Game) requireTurn(action Action) error {
	if offTurnAllowed(action.Type) {
		return nil
	}
	if action.Seat != g.CurrentTurnSeat {
		return NewGameError(ErrNotYourTurn, "it is not this seat's turn")
	}
	return nil
}

func (g *Game) handleUpdateSettings(action Action) error {
	if action.Settings == nil {
		return NewGameError(ErrInvalidPayload, "missing settings")
	}
	if err := action.Settings.Validate(); err != nil {
		return NewGameError(ErrInvalidPayload, err.Error())
	}
	g.Settings = *action.Settings
	return nil
}

func (g *Game) handleBiddingPhase(action Action) error {
	if action.Type != ActionBid {
		return NewGameError(ErrWrongPhase, "only BID is accepted during bidding")
	}
	if err := g.requireTurn(action); err != nil {
		return err
	}
	if g.CurrentRound == nil || g.CurrentRound.Bidding == nil {
		return NewGameError(ErrWrongPhase, "no active auction")
	}

	outcome, err := g.CurrentRound.Bidding.Speak(action.Seat, action.BidAction, action.Suit, g.DealerSeat)
	if err != nil {
		return NewGameError(ErrInvalidBidKind, err.Error())
	}

	switch {
	case outcome.Gash:
		g.DealerSeat = (g.DealerSeat + 1) % 4
		g.startRound()
		return nil
	case outcome.Kawesh:
		g.startRound() // same dealer: startRound doesn't advance DealerSeat itself
		return nil
	case outcome.Settled:
		g.settleBid()
		return nil
	default:
		g.CurrentTurnSeat = outcome.NextSeat
		return nil
	}
}

// settleBid distributes the remaining deck, detects projects, and
// transitions Bidding -> Playing.
func (g *Game) settleBid() {
	round := g.CurrentRound
	bid := round.Bidding.LastBid
	round.Bid = bid
	round.Mode = *bid.Type
	if bid.Type != nil && *bid.Type == ModeHokum {
		round.Mode = ModeHokum
	}

	hands := map[int]Hand{}
	for i, s := range g.Seats {
		hands[i] = s.Hand
	}
	dealt := DealHands(deckFromRound(round), round.FloorCard, *bid.Bidder, hands)
	round.FloorCardDealt = true
	for i := range g.Seats {
		g.Seats[i].Hand = sortHand(dealt[i], round.Mode, trumpSuitOf(round))
	}

	projects := NewProjectManager()
	for i := range g.Seats {
		projects.Declare(i, g.Seats[i].Hand, round.Mode)
	}
	round.Declarations = projects.Resolve(round.Mode)
	round.Akka = NewAkkaManager()
	round.Bidding = nil

	g.CurrentPhase = PhasePlaying
	g.CurrentTurnSeat = (g.DealerSeat + 1) % 4
	for i := range g.Seats {
		g.Seats[i].IsActiveTurn = i == g.CurrentTurnSeat
	}
}

func trumpSuitOf(r *Round) Suit {
	if r.Bid.TrumpSuit != nil {
		return *r.Bid.TrumpSuit
	}
	return Spades
}

func deckFromRound(r *Round) *Deck {
	return &Deck{cards: append([]Card{}, r.DeckSnapshot...)}
}

// sortHand orders a hand for display using the round's adopted mode.
func sortHand(hand Hand, mode Mode, trumpSuit Suit) Hand {
	out := append(Hand{}, hand...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			a, b := out[j-1], out[j]
			if a.Suit == b.Suit && b.Order(mode, trumpSuit) > a.Order(mode, trumpSuit) {
				out[j-1], out[j] = out[j], out[j-1]
				continue
			}
			if a.Suit != b.Suit && a.Suit > b.Suit {
				out[j-1], out[j] = out[j], out[j-1]
				continue
			}
			break
		}
	}
	return out
}

func (g *Game) handlePlayingPhase(action Action) error {
	switch action.Type {
	case ActionPlay:
		return g.handlePlay(action)
	case ActionAkka:
		return g.handleAkka(action)
	case ActionSawaClaim:
		return g.handleSawaClaim(action)
	case ActionDeclareProject:
		return nil // projects are auto-declared at round start; explicit re-declare is a no-op ack
	case ActionDouble:
		return g.handleDouble(action)
	case ActionBaloot, ActionRebaloot:
		return g.handleBaloot(action)
	default:
		return NewGameError(ErrWrongPhase, "action not legal during play")
	}
}

func (g *Game) handleDouble(action Action) error {
	if err := g.requireTurn(action); err != nil {
		return err
	}
	r := g.CurrentRound
	if r.IsLocked {
		return NewGameError(ErrIllegalMove, "round is locked; no further doubling")
	}
	switch r.DoublingLevel {
	case DoublingNone:
		r.DoublingLevel = DoublingDobl
	case DoublingDobl:
		r.DoublingLevel = DoublingKhamsin
	case DoublingKhamsin:
		r.DoublingLevel = DoublingRabaa
	case DoublingRabaa:
		r.DoublingLevel = DoublingGahwa
		r.IsLocked = true
	default:
		return NewGameError(ErrIllegalMove, "doubling already at maximum")
	}
	return nil
}

func (g *Game) handlePlay(action Action) error {
	if err := g.requireTurn(action); err != nil {
		return err
	}
	r := g.CurrentRound
	seat := action.Seat
	hand := g.Seats[seat].Hand
	if action.CardIndex < 0 || action.CardIndex >= len(hand) {
		return NewGameError(ErrInvalidPayload, "card index out of range")
	}
	card := hand[action.CardIndex]
	trump := trumpSuitOf(r)
	if !IsLegalPlay(card, hand, r.CurrentTrick, seat, r.Mode, trump, r.IsLocked) {
		return NewGameError(ErrIllegalMove, "card is not a legal play")
	}

	g.Seats[seat].Hand = hand.Remove(card)
	r.CurrentTrick = append(r.CurrentTrick, Play{Card: card, PlayedBy: seat})
	r.Akka.RecordPlay(len(r.TrickHistory), card, seat)

	if len(r.CurrentTrick) < 4 {
		g.CurrentTurnSeat = (seat + 1) % 4
		for i := range g.Seats {
			g.Seats[i].IsActiveTurn = i == g.CurrentTurnSeat
		}
		return nil
	}

	return g.completeTrick()
}

// lastPlayBySeat returns the most recent card seat has played this round,
// searching the current (possibly incomplete) trick before trick history.
func (g *Game) lastPlayBySeat(r *Round, seat int) (Card, bool) {
	for i := len(r.CurrentTrick) - 1; i >= 0; i-- {
		if r.CurrentTrick[i].PlayedBy == seat {
			return r.CurrentTrick[i].Card, true
		}
	}
	for i := len(r.TrickHistory) - 1; i >= 0; i-- {
		trick := r.TrickHistory[i]
		for j := len(trick) - 1; j >= 0; j-- {
			if trick[j].PlayedBy == seat {
				return trick[j].Card, true
			}
		}
	}
	return Card{}, false
}

// handleBaloot records a Baloot/Re-baloot declaration against the trump
// King or Queen the declaring seat most recently played. Phase 1 (Baloot,
// the King) and phase 2 (Re-baloot, the Queen) are both routed here; which
// phase applies is determined by the rank of that last card, not by the
// wire action name, since a declaring client always announces against
// whichever trump honor it just played.
func (g *Game) handleBaloot(action Action) error {
	r := g.CurrentRound
	if r == nil || r.Mode != ModeHokum {
		return NewGameError(ErrIllegalMove, "baloot can only be declared in Hokum")
	}
	trump := trumpSuitOf(r)
	seat := action.Seat
	card, ok := g.lastPlayBySeat(r, seat)
	if !ok || card.Suit != trump {
		return NewGameError(ErrIllegalMove, "baloot requires the trump King or Queen just played")
	}

	if r.Baloot == nil {
		r.Baloot = map[int]*BalootState{}
	}
	state := r.Baloot[seat]

	switch card.Rank {
	case King:
		if state != nil {
			return NewGameError(ErrIllegalMove, "baloot already declared by this seat")
		}
		r.Baloot[seat] = DeclareKing(seat)
		return nil
	case Queen:
		if state == nil || !state.Phase1 {
			return NewGameError(ErrIllegalMove, "re-baloot requires a prior baloot declaration")
		}
		suppressed := AbsorbedByHundredProject(r.Declarations[seat], trump)
		completed, err := state.DeclareQueen(seat, suppressed)
		if err != nil {
			return NewGameError(ErrIllegalMove, err.Error())
		}
		if !completed && !suppressed {
			return NewGameError(ErrIllegalMove, "re-baloot declaration rejected")
		}
		return nil
	default:
		return NewGameError(ErrIllegalMove, "baloot requires the trump King or Queen just played")
	}
}

// completeTrick resolves a full trick: computes the winner, accumulates raw
// points, and either advances to the next trick or ends the round at trick
// 8.
func (g *Game) completeTrick() error {
	r := g.CurrentRound
	r.TrickTransitioning = true
	trump := trumpSuitOf(r)
	winner := TrickWinner(r.CurrentTrick, r.Mode, trump)

	points := 0
	for _, play := range r.CurrentTrick {
		points += CardPoints(play.Card, r.Mode, trump)
	}
	isLastTrick := len(r.TrickHistory) == 7
	if isLastTrick {
		points += 10
	}
	if r.RawPoints == nil {
		r.RawPoints = map[Team]int{}
	}
	r.RawPoints[TeamOf(winner)] += points

	r.TrickHistory = append(r.TrickHistory, r.CurrentTrick)
	r.CurrentTrick = nil
	r.TrickTransitioning = false

	g.CurrentTurnSeat = winner
	for i := range g.Seats {
		g.Seats[i].IsActiveTurn = false
	}

	if isLastTrick {
		return g.finishRound()
	}
	g.Seats[winner].IsActiveTurn = true
	return nil
}

func (g *Game) finishRound() error {
	r := g.CurrentRound

	var usProjects, themProjects []Project
	for seat, projects := range r.Declarations {
		if TeamOf(seat) == TeamUs {
			usProjects = append(usProjects, projects...)
		} else {
			themProjects = append(themProjects, projects...)
		}
	}

	baloot := BalootFlags{}
	for seat, b := range r.Baloot {
		if b != nil && b.AwardsBonus() {
			if TeamOf(seat) == TeamUs {
				baloot.Us = true
			} else {
				baloot.Them = true
			}
		}
	}

	bidderTeam := TeamUs
	if r.Bid.Bidder != nil {
		bidderTeam = TeamOf(*r.Bid.Bidder)
	}

	result := CalculateRound(r.RawPoints[TeamUs], r.RawPoints[TeamThem], usProjects, themProjects, r.Mode, r.DoublingLevel, bidderTeam, baloot)
	g.Match.CompletedRounds = append(g.Match.CompletedRounds, result)
	g.Match.UsScore += result.UsGP
	g.Match.ThemScore += result.ThemGP

	g.CurrentPhase = PhaseRoundOver
	for i := range g.Seats {
		g.Seats[i].IsActiveTurn = false
	}

	if g.Match.UsScore >= MatchTargetGP || g.Match.ThemScore >= MatchTargetGP {
		g.CurrentPhase = PhaseGameOver
	}
	return nil
}

// startNextRound advances the dealer and begins a fresh round after
// RoundOver, when no team has reached the match target.
func (g *Game) startNextRound() error {
	g.DealerSeat = (g.DealerSeat + 1) % 4
	g.startRound()
	return nil
}

// startRound deals a fresh round and opens a new auction. Callers that
// need the dealer to rotate must do so before calling this (Gash,
// NEXT_ROUND); Kawesh and the very first round intentionally do not.
func (g *Game) startRound() {
	deck := NewShuffledDeck(g.rng)
	hands := map[int]Hand{}
	for i := 0; i < 4; i++ {
		hands[i] = deck.DealN(5)
	}
	floorCard, _ := deck.Deal()

	for i := range g.Seats {
		g.Seats[i].Hand = hands[i]
		g.Seats[i].IsDealer = i == g.DealerSeat
		g.Seats[i].IsActiveTurn = false
	}

	g.CurrentRound = &Round{
		Declarations:  map[int][]Project{},
		RawPoints:     map[Team]int{},
		DeckSnapshot:  append([]Card{}, deck.cards...),
		FloorCard:     floorCard,
		Baloot:        map[int]*BalootState{},
		DoublingLevel: DoublingNone,
		Bidding:       NewBiddingState(g.DealerSeat, floorCard),
	}
	g.CurrentPhase = PhaseBidding
	g.CurrentTurnSeat = g.CurrentRound.Bidding.SpeakerSeat
}
