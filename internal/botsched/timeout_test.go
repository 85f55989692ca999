package botsched

import (
	"context"
	"testing"

	"github.com/lox/pokerforbots/internal/baloot"
)

func newTimeoutTestGame(t *testing.T, rooms interface {
	GetGame(ctx context.Context, roomID string) (*baloot.Game, error)
	SaveGame(ctx context.Context, game *baloot.Game) error
}, roomID string) *baloot.Game {
	t.Helper()
	ctx := context.Background()
	game, err := rooms.GetGame(ctx, roomID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, err := game.AddBot(baloot.DifficultyMedium); err != nil {
			t.Fatalf("AddBot: %v", err)
		}
	}
	game.CurrentPhase = baloot.PhasePlaying
	game.CurrentRound = &baloot.Round{Mode: baloot.ModeHokum, RawPoints: map[baloot.Team]int{}}
	if err := rooms.SaveGame(ctx, game); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}
	game, err = rooms.GetGame(ctx, roomID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	return game
}

func TestScheduler_SawaTimeoutAutoRejectsAllBotResponders(t *testing.T) {
	rooms, handler, clock, _ := newTestSetup(t, alwaysPassDecider{})
	ctx := context.Background()

	roomID, err := rooms.CreateRoom(ctx)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	game := newTimeoutTestGame(t, rooms, roomID)
	game.CurrentRound.Epoch = 1
	game.CurrentRound.Sawa = baloot.NewSawaClaim(0, game.CurrentRound.Epoch)
	if err := rooms.SaveGame(ctx, game); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}

	game, err = rooms.GetGame(ctx, roomID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	handler.OnMutated(roomID, game)

	clock.Advance(SawaBotTimeout).MustWait(ctx)

	updated, err := rooms.GetGame(ctx, roomID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if updated.CurrentRound.Sawa.Active {
		t.Fatal("expected the unresolved claim to auto-reject once the all-bot window elapses")
	}
	if updated.CurrentRound.RawPoints[baloot.TeamThem] != baloot.AkkaInvalidPenaltyGP {
		t.Errorf("expected the claimant's opponents to be penalized, got RawPoints=%v", updated.CurrentRound.RawPoints)
	}
}

func TestScheduler_SawaTimeoutSkipsStaleEpoch(t *testing.T) {
	rooms, handler, clock, sched := newTestSetup(t, alwaysPassDecider{})
	ctx := context.Background()

	roomID, err := rooms.CreateRoom(ctx)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	game := newTimeoutTestGame(t, rooms, roomID)
	game.CurrentRound.Epoch = 1
	game.CurrentRound.Sawa = baloot.NewSawaClaim(0, game.CurrentRound.Epoch)
	if err := rooms.SaveGame(ctx, game); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}

	game, err = rooms.GetGame(ctx, roomID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	handler.OnMutated(roomID, game)

	// The round moves on (e.g. resolved by other means) before the timer fires.
	game.CurrentRound.Sawa.Abort()
	sched.BumpEpoch(roomID)
	if err := rooms.SaveGame(ctx, game); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}

	clock.Advance(SawaBotTimeout).MustWait(ctx)

	updated, err := rooms.GetGame(ctx, roomID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if len(updated.CurrentRound.RawPoints) != 0 {
		t.Errorf("a claim resolved before the timer fires must not be touched, got RawPoints=%v", updated.CurrentRound.RawPoints)
	}
}

func TestScheduler_QaydTimeoutCancelsUnconfirmedAccusation(t *testing.T) {
	rooms, handler, clock, _ := newTestSetup(t, alwaysPassDecider{})
	ctx := context.Background()

	roomID, err := rooms.CreateRoom(ctx)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	game := newTimeoutTestGame(t, rooms, roomID)
	game.CurrentRound.Epoch = 1
	qayd := baloot.NewQaydEngine(game.CurrentRound.Epoch)
	if err := qayd.Start(1, 0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	game.CurrentRound.Qayd = qayd
	game.CurrentPhase = baloot.PhaseQaydActive
	if err := rooms.SaveGame(ctx, game); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}

	game, err = rooms.GetGame(ctx, roomID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	handler.OnMutated(roomID, game)

	clock.Advance(QaydBotTimeout).MustWait(ctx)

	updated, err := rooms.GetGame(ctx, roomID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if updated.CurrentRound.Qayd.State != baloot.QaydIdle {
		t.Errorf("expected the unconfirmed accusation to auto-cancel, got state %v", updated.CurrentRound.Qayd.State)
	}
	if updated.CurrentPhase != baloot.PhasePlaying {
		t.Errorf("expected phase to return to Playing after auto-cancel, got %v", updated.CurrentPhase)
	}
}
