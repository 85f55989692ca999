package room

import (
	"context"
	"math/rand"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lox/pokerforbots/internal/baloot"
)

// newTestManager starts an in-process miniredis instance, grounded on the
// same redis/go-redis client the production Manager uses, so these tests
// exercise the real wire protocol without a standalone Redis server.
func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	newRNG := func() *rand.Rand { return rand.New(rand.NewSource(1)) }
	return NewManager(rdb, zerolog.Nop(), newRNG)
}

func TestManager_CreateAndGetRoom(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	roomID, err := m.CreateRoom(ctx)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if roomID == "" {
		t.Fatal("expected a non-empty roomId")
	}

	game, err := m.GetGame(ctx, roomID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if game.RoomID != roomID {
		t.Errorf("game.RoomID = %q, want %q", game.RoomID, roomID)
	}
	if game.CurrentPhase != baloot.PhaseWaiting {
		t.Errorf("new room should start Waiting, got %q", game.CurrentPhase)
	}
}

func TestManager_GetGame_CacheHitAvoidsRedis(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	roomID, err := m.CreateRoom(ctx)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	first, err := m.GetGame(ctx, roomID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	second, err := m.GetGame(ctx, roomID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if first != second {
		t.Error("expected the cached *Game pointer to be reused on a repeat GetGame")
	}
}

func TestManager_GetGame_MissingRoom(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.GetGame(ctx, "does-not-exist")
	if err == nil {
		t.Fatal("expected an error for a missing room")
	}
	lerr, ok := err.(*LoadError)
	if !ok {
		t.Fatalf("expected a *LoadError, got %T", err)
	}
	if lerr.Kind != ErrKindMissing {
		t.Errorf("Kind = %v, want ErrKindMissing", lerr.Kind)
	}
}

func TestManager_SaveGame_PersistsAcrossCacheInvalidation(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	roomID, err := m.CreateRoom(ctx)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	game, err := m.GetGame(ctx, roomID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if _, err := game.JoinSeat("alice"); err != nil {
		t.Fatalf("JoinSeat: %v", err)
	}
	if err := m.SaveGame(ctx, game); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}

	m.InvalidateCache(roomID)

	reloaded, err := m.GetGame(ctx, roomID)
	if err != nil {
		t.Fatalf("GetGame after invalidation: %v", err)
	}
	if reloaded.SeatedCount() != 1 {
		t.Errorf("SeatedCount() = %d, want 1", reloaded.SeatedCount())
	}
	if reloaded.Seats[0].DisplayName != "alice" {
		t.Errorf("Seats[0].DisplayName = %q, want alice", reloaded.Seats[0].DisplayName)
	}
}

func TestManager_DeleteRoom(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	roomID, err := m.CreateRoom(ctx)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if err := m.DeleteRoom(ctx, roomID); err != nil {
		t.Fatalf("DeleteRoom: %v", err)
	}
	if _, err := m.GetGame(ctx, roomID); err == nil {
		t.Fatal("expected GetGame to fail after DeleteRoom")
	}
}

func TestManager_EnumerateRooms(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	ids := map[string]bool{}
	for i := 0; i < 3; i++ {
		id, err := m.CreateRoom(ctx)
		if err != nil {
			t.Fatalf("CreateRoom: %v", err)
		}
		ids[id] = true
	}

	found, err := m.EnumerateRooms(ctx)
	if err != nil {
		t.Fatalf("EnumerateRooms: %v", err)
	}
	if len(found) != len(ids) {
		t.Fatalf("EnumerateRooms returned %d rooms, want %d", len(found), len(ids))
	}
	for _, id := range found {
		if !ids[id] {
			t.Errorf("unexpected roomId %q in EnumerateRooms result", id)
		}
	}
}

func TestManager_Ping(t *testing.T) {
	m := newTestManager(t)
	if err := m.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestManager_ArchiveMatch(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	roomID, err := m.CreateRoom(ctx)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	game, err := m.GetGame(ctx, roomID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if err := m.ArchiveMatch(ctx, "match-1", game); err != nil {
		t.Fatalf("ArchiveMatch: %v", err)
	}
}
