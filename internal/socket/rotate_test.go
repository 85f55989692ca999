package socket

import (
	"math/rand"
	"testing"

	"github.com/lox/pokerforbots/internal/baloot"
)

func TestRotateSeat(t *testing.T) {
	cases := []struct {
		serverIdx, viewerSeat, want int
	}{
		{0, 0, 0},
		{1, 0, 1},
		{2, 1, 1},
		{0, 2, 2},
		{3, 1, 2},
	}
	for _, c := range cases {
		if got := rotateSeat(c.serverIdx, c.viewerSeat); got != c.want {
			t.Errorf("rotateSeat(%d, %d) = %d, want %d", c.serverIdx, c.viewerSeat, got, c.want)
		}
	}
}

func newTestGame() *baloot.Game {
	g := baloot.NewGame("room1", rand.New(rand.NewSource(1)))
	for i := 0; i < 4; i++ {
		g.Seats[i].Index = i
		g.Seats[i].DisplayName = "player"
	}
	g.Seats[0].Hand = baloot.Hand{baloot.NewCard(baloot.Spades, baloot.Ace)}
	g.Seats[1].Hand = baloot.Hand{baloot.NewCard(baloot.Hearts, baloot.King)}
	g.DealerSeat = 1
	g.CurrentTurnSeat = 2
	return g
}

func TestRotateGame_ViewerAlwaysAtZero(t *testing.T) {
	g := newTestGame()
	rotated, err := RotateGame(g, 2)
	if err != nil {
		t.Fatalf("RotateGame: %v", err)
	}
	if rotated.Seats[0].Index != 0 {
		t.Errorf("viewer seat should land at index 0, got %d", rotated.Seats[0].Index)
	}
	if rotated.DealerSeat != rotateSeat(1, 2) {
		t.Errorf("dealer seat not rotated: got %d", rotated.DealerSeat)
	}
	if rotated.CurrentTurnSeat != 0 {
		t.Errorf("current turn seat (the viewer) should rotate to 0, got %d", rotated.CurrentTurnSeat)
	}
}

func TestRotateGame_HidesOtherHandsWhenNotDebug(t *testing.T) {
	g := newTestGame()
	g.Settings.IsDebug = false
	rotated, err := RotateGame(g, 0)
	if err != nil {
		t.Fatalf("RotateGame: %v", err)
	}
	if rotated.Seats[0].Hand == nil {
		t.Error("viewer's own hand should remain visible")
	}
	for i := 1; i < 4; i++ {
		if rotated.Seats[i].Hand != nil {
			t.Errorf("seat %d hand should be hidden, got %v", i, rotated.Seats[i].Hand)
		}
	}
}

func TestRotateGame_ShowsAllHandsWhenDebug(t *testing.T) {
	g := newTestGame()
	g.Settings.IsDebug = true
	rotated, err := RotateGame(g, 0)
	if err != nil {
		t.Fatalf("RotateGame: %v", err)
	}
	found := false
	for i := 1; i < 4; i++ {
		if rotated.Seats[i].Hand != nil {
			found = true
		}
	}
	if !found {
		t.Error("expected at least one other seat's hand to survive in debug mode")
	}
}

func TestRotateGame_DoesNotMutateOriginal(t *testing.T) {
	g := newTestGame()
	origDealer := g.DealerSeat
	if _, err := RotateGame(g, 2); err != nil {
		t.Fatalf("RotateGame: %v", err)
	}
	if g.DealerSeat != origDealer {
		t.Errorf("RotateGame mutated the source game's dealer seat: %d != %d", g.DealerSeat, origDealer)
	}
	if g.Seats[0].Index != 0 {
		t.Errorf("RotateGame mutated the source game's seat indices")
	}
}
