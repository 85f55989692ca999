package baloot

import "math/rand"

// Phase is a Game's top-level state-machine phase.
type Phase string

const (
	PhaseWaiting    Phase = "Waiting"
	PhaseBidding    Phase = "Bidding"
	PhasePlaying    Phase = "Playing"
	PhaseRoundOver  Phase = "RoundOver"
	PhaseGameOver   Phase = "GameOver"
	PhaseQaydActive Phase = "QaydActive"
)

// MatchTargetGP is the game point total a team must reach to win the match.
const MatchTargetGP = 152

// Position is the clockwise seating label relative to a fixed server
// orientation. Client-bound rotation is applied on broadcast, not stored
// here.
type Position int

const (
	Bottom Position = iota
	Right
	Top
	Left
)

// Seat is one player's slot at the table.
type Seat struct {
	Index         int    `json:"index"`
	DisplayName   string `json:"displayName"`
	IsBot         bool   `json:"isBot"`
	BotDifficulty BotDifficulty `json:"botDifficulty,omitempty"`
	Hand          Hand   `json:"hand"`
	IsActiveTurn  bool   `json:"isActiveTurn"`
	IsDealer      bool   `json:"isDealer"`
	LastAction    string `json:"lastAction,omitempty"`
	Connected     bool   `json:"connected"`
}

// Round is the aggregate state of one hand of play.
type Round struct {
	TrickHistory      []Trick                `json:"trickHistory"`
	CurrentTrick      Trick                  `json:"currentTrick"`
	TrickTransitioning bool                  `json:"trickTransitioning"`
	Declarations      map[int][]Project      `json:"declarations"`
	RawPoints         map[Team]int           `json:"rawPoints"`
	DeckSnapshot      []Card                 `json:"deckSnapshot"`
	FloorCard         Card                   `json:"floorCard"`
	FloorCardDealt    bool                   `json:"floorCardDealt"`
	Baloot            map[int]*BalootState   `json:"baloot"`
	Akka              *AkkaManager           `json:"akka"`
	Sawa              *SawaState             `json:"sawa,omitempty"`
	Qayd              *QaydEngine            `json:"qayd,omitempty"`
	DoublingLevel     DoublingLevel          `json:"doublingLevel"`
	IsLocked          bool                   `json:"isLocked"`
	Bidding           *BiddingState          `json:"bidding,omitempty"`
	Bid               Bid                    `json:"bid"`
	Mode              Mode                   `json:"mode"`
	Epoch             int                    `json:"epoch"`
}

// Match is the list of completed rounds plus the running score.
type Match struct {
	CompletedRounds []RoundResult `json:"completedRounds"`
	UsScore         int           `json:"usScore"`
	ThemScore       int           `json:"themScore"`
}

// Game is the root aggregate and the unit of serialization.
type Game struct {
	RoomID         string       `json:"roomId"`
	Seats          [4]Seat      `json:"seats"`
	Match          Match        `json:"match"`
	CurrentRound   *Round       `json:"currentRound"`
	CurrentPhase   Phase        `json:"currentPhase"`
	CurrentTurnSeat int         `json:"currentTurnSeat"`
	DealerSeat     int          `json:"dealerSeat"`
	Settings       RoomSettings `json:"settings"`
	Restarting     bool         `json:"restarting"`

	rng *rand.Rand
}

// NewGame creates an empty, Waiting-phase room.
func NewGame(roomID string, rng *rand.Rand) *Game {
	return &Game{
		RoomID:       roomID,
		CurrentPhase: PhaseWaiting,
		Settings:     DefaultRoomSettings(),
		DealerSeat:   0,
		rng:          rng,
	}
}

// SetRNG rebinds the deterministic source of randomness, used after
// deserializing from Redis (the *rand.Rand itself is not serialized).
func (g *Game) SetRNG(rng *rand.Rand) {
	g.rng = rng
}

// SeatedCount returns how many of the 4 seats are occupied (bot or human).
func (g *Game) SeatedCount() int {
	n := 0
	for _, s := range g.Seats {
		if s.DisplayName != "" {
			n++
		}
	}
	return n
}

// TeamOf returns which team a seat belongs to: {0,2}=Us, {1,3}=Them.
func TeamOf(seat int) Team {
	if seat%2 == 0 {
		return TeamUs
	}
	return TeamThem
}

// AllCardsInPlay returns the full multiset of cards currently accounted
// for across hands, the current trick, trick history, and an undealt floor
// card. Used to confirm no card is ever duplicated or lost across a round.
func (g *Game) AllCardsInPlay() []Card {
	var cards []Card
	for _, s := range g.Seats {
		cards = append(cards, s.Hand...)
	}
	if g.CurrentRound != nil {
		for _, play := range g.CurrentRound.CurrentTrick {
			cards = append(cards, play.Card)
		}
		for _, trick := range g.CurrentRound.TrickHistory {
			for _, play := range trick {
				cards = append(cards, play.Card)
			}
		}
		if !g.CurrentRound.FloorCardDealt {
			cards = append(cards, g.CurrentRound.FloorCard)
		}
	}
	return cards
}

// JoinSeat seats a human player in the first open seat, or reclaims their
// existing seat on reconnect (matched by displayName). Returns the seat
// index.
func (g *Game) JoinSeat(displayName string) (int, error) {
	if g.CurrentPhase != PhaseWaiting {
		for i, s := range g.Seats {
			if s.DisplayName == displayName {
				g.Seats[i].Connected = true
				return i, nil
			}
		}
	}
	for i, s := range g.Seats {
		if s.DisplayName == "" {
			g.Seats[i] = Seat{Index: i, DisplayName: displayName, Connected: true}
			g.maybeStart()
			return i, nil
		}
	}
	return -1, NewGameError(ErrWrongPhase, "room is full")
}

// AddBot seats a bot in the first open seat at the given difficulty.
func (g *Game) AddBot(difficulty BotDifficulty) (int, error) {
	for i, s := range g.Seats {
		if s.DisplayName == "" {
			g.Seats[i] = Seat{Index: i, DisplayName: "Bot " + string(rune('A'+i)), IsBot: true, BotDifficulty: difficulty, Connected: true}
			g.maybeStart()
			return i, nil
		}
	}
	return -1, NewGameError(ErrWrongPhase, "room is full")
}

// maybeStart transitions Waiting -> Bidding once all four seats are filled.
func (g *Game) maybeStart() {
	if g.CurrentPhase == PhaseWaiting && g.SeatedCount() == 4 {
		g.startRound()
	}
}
