package baloot

import "errors"

// ErrInvalidBid is returned for a malformed bid payload; state is never
// mutated when this is returned.
var ErrInvalidBid = errors.New("baloot: invalid bid")

// BidAction identifies what a seat chose to do during an auction turn.
type BidAction int

const (
	BidPass BidAction = iota
	BidSun
	BidHokum
	BidAshkal
	BidKawesh
)

// ParseBidAction decodes the wire string for a BID action's "action" field.
func ParseBidAction(s string) (BidAction, error) {
	switch s {
	case "PASS":
		return BidPass, nil
	case "SUN":
		return BidSun, nil
	case "HOKUM":
		return BidHokum, nil
	case "ASHKAL":
		return BidAshkal, nil
	case "KAWESH":
		return BidKawesh, nil
	default:
		return 0, ErrInvalidBid
	}
}

// Bid is the settled outcome of an auction: the adopted mode, trump suit
// (Hokum only), the buying seat, and the current doubling level.
type Bid struct {
	Type          *Mode `json:"type"`
	TrumpSuit     *Suit `json:"trumpSuit"`
	Bidder        *int  `json:"bidder"`
	DoublingLevel DoublingLevel `json:"doublingLevel"`
}

// BiddingRound identifies which of the two auction rounds is in progress.
type BiddingRound int

const (
	BiddingRoundFirst BiddingRound = 1
	BiddingRoundSecond BiddingRound = 2
)

// BiddingState is the BiddingEngine's full state. SpeakerSeat is the seat
// whose turn it is to bid; Passes counts consecutive passes seen this
// round; FloorCard is the face-up 21st card informing the R1 Hokum option,
// and its suit is the only trump a round-1 Hokum buy can take.
type BiddingState struct {
	Round         BiddingRound
	SpeakerSeat   int
	Passes        int
	Settled       bool
	LastBid       Bid
	FloorCard     Card
	SeatsSpokenR2 map[int]bool
}

// NewBiddingState starts an auction with the first speaker = dealer + 1.
func NewBiddingState(dealerSeat int, floorCard Card) *BiddingState {
	return &BiddingState{
		Round:         BiddingRoundFirst,
		SpeakerSeat:   (dealerSeat + 1) % 4,
		FloorCard:     floorCard,
		SeatsSpokenR2: map[int]bool{},
	}
}

// BidOutcome reports what happened to the auction after one seat's turn.
type BidOutcome struct {
	Settled  bool // an auction-ending bid (Sun/Hokum/Ashkal) was made
	Gash     bool // both rounds passed: redeal with dealer rotated
	Kawesh   bool // worthless-hand claim: redeal with the same dealer
	NextSeat int  // the next seat to speak, if not Settled/Gash/Kawesh
}

// Speak advances the auction by one seat's turn. suit is the chosen trump
// suit for a Hokum buy in round 2 (ignored otherwise; round 1's Hokum trump
// is always the floor card's suit). dealerSeat is needed to detect the
// "last speaker must bid" edge case.
func (b *BiddingState) Speak(seat int, action BidAction, suit Suit, dealerSeat int) (BidOutcome, error) {
	if b.Settled {
		return BidOutcome{}, ErrInvalidBid
	}
	if seat != b.SpeakerSeat {
		return BidOutcome{}, ErrInvalidBid
	}

	isLastToSpeak := b.isLastSpeaker(seat, dealerSeat)
	if action == BidPass && isLastToSpeak {
		return BidOutcome{}, ErrInvalidBid
	}

	switch action {
	case BidPass:
		b.Passes++
		if b.Round == BiddingRoundFirst && b.Passes == 4 {
			b.Round = BiddingRoundSecond
			b.Passes = 0
			b.SpeakerSeat = (dealerSeat + 1) % 4
			return BidOutcome{NextSeat: b.SpeakerSeat}, nil
		}
		if b.Round == BiddingRoundSecond && b.Passes == 4 {
			return BidOutcome{Gash: true}, nil
		}
		b.SpeakerSeat = (b.SpeakerSeat + 1) % 4
		return BidOutcome{NextSeat: b.SpeakerSeat}, nil

	case BidKawesh:
		if b.Round != BiddingRoundFirst {
			return BidOutcome{}, ErrInvalidBid
		}
		return BidOutcome{Kawesh: true}, nil

	case BidHokum:
		mode := ModeHokum
		trump := b.FloorCard.Suit
		if b.Round == BiddingRoundSecond {
			trump = suit
			if trump == b.FloorCard.Suit {
				return BidOutcome{}, ErrInvalidBid
			}
		}
		bidder := seat
		b.LastBid = Bid{Type: &mode, TrumpSuit: &trump, Bidder: &bidder, DoublingLevel: DoublingNone}
		b.Settled = true
		return BidOutcome{Settled: true}, nil

	case BidSun, BidAshkal:
		if b.Round != BiddingRoundFirst {
			return BidOutcome{}, ErrInvalidBid
		}
		mode := ModeSun
		bidder := seat
		if action == BidAshkal {
			bidder = Partner(seat)
		}
		b.LastBid = Bid{Type: &mode, Bidder: &bidder, DoublingLevel: DoublingNone}
		b.Settled = true
		return BidOutcome{Settled: true}, nil

	default:
		return BidOutcome{}, ErrInvalidBid
	}
}

// isLastSpeaker reports whether seat is the final seat to speak in the
// current round's rotation starting from dealer+1.
func (b *BiddingState) isLastSpeaker(seat, dealerSeat int) bool {
	return seat == dealerSeat
}

// DealHands distributes the remaining deck after a settled bid: the floor
// card goes to the bidder (or partner for Ashkal, already reflected in
// LastBid.Bidder), the bidder receives 2 additional cards from the deck and
// the other three seats receive 3 each, so every seat ends with 8 cards.
func DealHands(deck *Deck, floorCard Card, bidderSeat int, currentHands map[int]Hand) map[int]Hand {
	out := map[int]Hand{}
	for seat, h := range currentHands {
		out[seat] = append(Hand{}, h...)
	}
	out[bidderSeat] = append(out[bidderSeat], floorCard)
	for seat := 0; seat < 4; seat++ {
		n := 3
		if seat == bidderSeat {
			n = 2
		}
		out[seat] = append(out[seat], deck.DealN(n)...)
	}
	return out
}
