package baloot

import "testing"

func TestParseBidAction(t *testing.T) {
	cases := map[string]BidAction{
		"PASS": BidPass, "SUN": BidSun, "HOKUM": BidHokum,
		"ASHKAL": BidAshkal, "KAWESH": BidKawesh,
	}
	for s, want := range cases {
		got, err := ParseBidAction(s)
		if err != nil {
			t.Fatalf("ParseBidAction(%q): %v", s, err)
		}
		if got != want {
			t.Errorf("ParseBidAction(%q) = %v, want %v", s, got, want)
		}
	}
	if _, err := ParseBidAction("bogus"); err == nil {
		t.Error("expected an error for an unrecognized bid string")
	}
}

func TestBiddingState_SpeakerStartsAtDealerPlusOne(t *testing.T) {
	b := NewBiddingState(2, NewCard(Spades, Ace))
	if b.SpeakerSeat != 3 {
		t.Errorf("SpeakerSeat = %d, want 3", b.SpeakerSeat)
	}
	if b.Round != BiddingRoundFirst {
		t.Errorf("Round = %v, want BiddingRoundFirst", b.Round)
	}
}

func TestBiddingState_RejectsOutOfTurnSpeak(t *testing.T) {
	b := NewBiddingState(0, NewCard(Spades, Ace))
	_, err := b.Speak(2, BidPass, Spades, 0)
	if err == nil {
		t.Fatal("expected an error for a seat speaking out of turn")
	}
}

func TestBiddingState_HokumRoundOneUsesFloorCardSuit(t *testing.T) {
	b := NewBiddingState(0, NewCard(Hearts, King))
	outcome, err := b.Speak(1, BidHokum, Spades, 0)
	if err != nil {
		t.Fatalf("Speak: %v", err)
	}
	if !outcome.Settled {
		t.Fatal("expected the auction to settle on a Hokum bid")
	}
	if *b.LastBid.TrumpSuit != Hearts {
		t.Errorf("trump suit = %v, want Hearts (the floor card's suit)", *b.LastBid.TrumpSuit)
	}
	if *b.LastBid.Bidder != 1 {
		t.Errorf("bidder = %d, want 1", *b.LastBid.Bidder)
	}
}

func TestBiddingState_HokumRoundTwoRejectsFloorCardSuit(t *testing.T) {
	b := NewBiddingState(0, NewCard(Hearts, King))
	// Run round 1 to exhaustion via 4 passes.
	for i := 0; i < 4; i++ {
		if _, err := b.Speak(b.SpeakerSeat, BidPass, Spades, 0); err != nil {
			t.Fatalf("Speak pass %d: %v", i, err)
		}
	}
	if b.Round != BiddingRoundSecond {
		t.Fatalf("expected round 2 after 4 first-round passes, got %v", b.Round)
	}
	_, err := b.Speak(b.SpeakerSeat, BidHokum, Hearts, 0)
	if err == nil {
		t.Fatal("expected round 2 Hokum to reject the floor card's own suit as trump")
	}
}

func TestBiddingState_RoundOneFourPassesAdvancesToRoundTwo(t *testing.T) {
	b := NewBiddingState(0, NewCard(Hearts, King))
	var last BidOutcome
	for i := 0; i < 4; i++ {
		outcome, err := b.Speak(b.SpeakerSeat, BidPass, Spades, 0)
		if err != nil {
			t.Fatalf("pass %d: %v", i, err)
		}
		last = outcome
	}
	if b.Round != BiddingRoundSecond {
		t.Errorf("Round = %v, want BiddingRoundSecond", b.Round)
	}
	if last.NextSeat != 1 {
		t.Errorf("round 2 should restart speaking at dealer+1, got %d", last.NextSeat)
	}
}

func TestBiddingState_KaweshOnlyInRoundOne(t *testing.T) {
	b := NewBiddingState(0, NewCard(Hearts, King))
	outcome, err := b.Speak(1, BidKawesh, Spades, 0)
	if err != nil {
		t.Fatalf("Speak: %v", err)
	}
	if !outcome.Kawesh {
		t.Fatal("expected a round-1 Kawesh to report Kawesh: true")
	}
}

func TestBiddingState_AshkalAssignsBidToPartner(t *testing.T) {
	b := NewBiddingState(0, NewCard(Hearts, King))
	outcome, err := b.Speak(1, BidAshkal, Spades, 0)
	if err != nil {
		t.Fatalf("Speak: %v", err)
	}
	if !outcome.Settled {
		t.Fatal("expected Ashkal to settle the auction")
	}
	if *b.LastBid.Bidder != Partner(1) {
		t.Errorf("bidder = %d, want partner of seat 1 (%d)", *b.LastBid.Bidder, Partner(1))
	}
}

func TestBiddingState_LastSpeakerCannotPass(t *testing.T) {
	b := NewBiddingState(0, NewCard(Hearts, King))
	for i := 0; i < 3; i++ {
		if _, err := b.Speak(b.SpeakerSeat, BidPass, Spades, 0); err != nil {
			t.Fatalf("pass %d: %v", i, err)
		}
	}
	if !b.isLastSpeaker(b.SpeakerSeat, 0) {
		t.Fatal("expected the 4th seat to speak to be the forced bidder")
	}
	_, err := b.Speak(b.SpeakerSeat, BidPass, Spades, 0)
	if err == nil {
		t.Fatal("the dealer's own seat must not be allowed to pass the hand to redeal")
	}
}

func TestBiddingState_SettledAuctionRejectsFurtherSpeak(t *testing.T) {
	b := NewBiddingState(0, NewCard(Hearts, King))
	if _, err := b.Speak(1, BidSun, Spades, 0); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	_, err := b.Speak(2, BidPass, Spades, 0)
	if err == nil {
		t.Fatal("expected an error speaking after the auction settled")
	}
}
