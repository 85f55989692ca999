// Package room implements the Redis-backed store of Game instances: an
// in-process cache fronting authoritative Redis storage, keyed by roomId
// with cache-through persistence on every mutation.
package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokerforbots/internal/baloot"
	"github.com/lox/pokerforbots/internal/gameid"
)

// sweepConcurrency bounds how many rooms Sweep inspects at once, so a
// large keyspace doesn't open an unbounded burst of Redis connections.
const sweepConcurrency = 8

// ErrKind distinguishes load failure categories so callers can decide
// retry vs give-up.
type ErrKind int

const (
	ErrKindDecode ErrKind = iota
	ErrKindMissing
	ErrKindTypeMismatch
	ErrKindBackend
)

// LoadError wraps a load failure with its category.
type LoadError struct {
	Kind ErrKind
	Err  error
}

func (e *LoadError) Error() string { return fmt.Sprintf("room: %v", e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

func roomKey(roomID string) string  { return "game:" + roomID }
func matchKey(matchID string) string { return "match:" + matchID }

// Manager maintains an in-memory cache of Game handles keyed by roomId plus
// authoritative storage in Redis.
type Manager struct {
	rdb    *redis.Client
	logger zerolog.Logger

	mu    sync.RWMutex
	cache map[string]*baloot.Game

	newRNG func() *rand.Rand
}

// NewManager constructs a RoomManager bound to rdb. newRNG is injected so
// callers can supply a seeded source for deterministic test runs.
func NewManager(rdb *redis.Client, logger zerolog.Logger, newRNG func() *rand.Rand) *Manager {
	if newRNG == nil {
		newRNG = func() *rand.Rand { return rand.New(rand.NewSource(1)) }
	}
	return &Manager{
		rdb:    rdb,
		logger: logger.With().Str("component", "room_manager").Logger(),
		cache:  map[string]*baloot.Game{},
		newRNG: newRNG,
	}
}

// CreateRoom allocates a new roomId, writes an empty Game, and returns the
// id.
func (m *Manager) CreateRoom(ctx context.Context) (string, error) {
	roomID := gameid.Generate()
	game := baloot.NewGame(roomID, m.newRNG())
	if err := m.SaveGame(ctx, game); err != nil {
		return "", err
	}
	return roomID, nil
}

// GetGame returns the Game for roomId, loading from Redis on a cache miss
// and reconstructing all sub-engine state. The cache is updated only after
// a successful load, so a failed read never leaves a stale or partial
// cache entry.
func (m *Manager) GetGame(ctx context.Context, roomID string) (*baloot.Game, error) {
	m.mu.RLock()
	if g, ok := m.cache[roomID]; ok {
		m.mu.RUnlock()
		return g, nil
	}
	m.mu.RUnlock()

	raw, err := m.rdb.Get(ctx, roomKey(roomID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, &LoadError{Kind: ErrKindMissing, Err: fmt.Errorf("room %s not found", roomID)}
	}
	if err != nil {
		return nil, &LoadError{Kind: ErrKindBackend, Err: err}
	}

	var game baloot.Game
	if err := json.Unmarshal(raw, &game); err != nil {
		return nil, &LoadError{Kind: ErrKindDecode, Err: err}
	}
	if game.RoomID == "" {
		return nil, &LoadError{Kind: ErrKindTypeMismatch, Err: fmt.Errorf("decoded game missing roomId")}
	}
	game.SetRNG(m.newRNG())

	m.mu.Lock()
	m.cache[roomID] = &game
	m.mu.Unlock()

	return &game, nil
}

// SaveGame serializes game and writes it to Redis, updating the cache only
// on a successful write.
func (m *Manager) SaveGame(ctx context.Context, game *baloot.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return &LoadError{Kind: ErrKindDecode, Err: err}
	}
	if err := m.rdb.Set(ctx, roomKey(game.RoomID), data, 0).Err(); err != nil {
		return &LoadError{Kind: ErrKindBackend, Err: err}
	}

	m.mu.Lock()
	m.cache[game.RoomID] = game
	m.mu.Unlock()
	return nil
}

// InvalidateCache drops a room's cached handle without touching Redis,
// used when a save fails after an in-memory mutation so the cache doesn't
// retain unpersisted state.
func (m *Manager) InvalidateCache(roomID string) {
	m.mu.Lock()
	delete(m.cache, roomID)
	m.mu.Unlock()
}

// ArchiveMatch writes the completed match history under match:<matchId>.
func (m *Manager) ArchiveMatch(ctx context.Context, matchID string, game *baloot.Game) error {
	data, err := json.Marshal(game.Match)
	if err != nil {
		return &LoadError{Kind: ErrKindDecode, Err: err}
	}
	if err := m.rdb.Set(ctx, matchKey(matchID), data, 0).Err(); err != nil {
		return &LoadError{Kind: ErrKindBackend, Err: err}
	}
	return nil
}

// EnumerateRooms returns every active roomId using cursor-based SCAN,
// never a blocking KEYS across the shared Redis keyspace.
func (m *Manager) EnumerateRooms(ctx context.Context) ([]string, error) {
	var roomIDs []string
	var cursor uint64
	for {
		keys, next, err := m.rdb.Scan(ctx, cursor, "game:*", 100).Result()
		if err != nil {
			return nil, &LoadError{Kind: ErrKindBackend, Err: err}
		}
		for _, k := range keys {
			roomIDs = append(roomIDs, k[len("game:"):])
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return roomIDs, nil
}

// DeleteRoom removes a room's Redis key and cache entry.
func (m *Manager) DeleteRoom(ctx context.Context, roomID string) error {
	if err := m.rdb.Del(ctx, roomKey(roomID)).Err(); err != nil {
		return &LoadError{Kind: ErrKindBackend, Err: err}
	}
	m.InvalidateCache(roomID)
	return nil
}

// Ping verifies Redis connectivity, used at startup (a failure here is
// fatal) and by the /health admin endpoint.
func (m *Manager) Ping(ctx context.Context) error {
	return m.rdb.Ping(ctx).Err()
}

// Sweep archives and evicts every GameOver room: the match is written
// under the room's id (match:<roomId>) and the room key is removed, freeing the Redis slot
// and the in-process cache entry. Rooms are inspected concurrently
// (bounded by sweepConcurrency via errgroup) since a load is a network
// round-trip and the sweep is meant to run periodically in the
// background without blocking on a large keyspace one room at a time.
// Returns the number of rooms archived; a single room's load/archive
// failure is logged and skipped rather than aborting the whole sweep.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	roomIDs, err := m.EnumerateRooms(ctx)
	if err != nil {
		return 0, err
	}

	var swept int
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)
	for _, roomID := range roomIDs {
		roomID := roomID
		g.Go(func() error {
			game, err := m.GetGame(gctx, roomID)
			if err != nil {
				m.logger.Warn().Err(err).Str("room_id", roomID).Msg("sweep: failed to load room, skipping")
				return nil
			}
			if game.CurrentPhase != baloot.PhaseGameOver {
				return nil
			}
			if err := m.ArchiveMatch(gctx, game.RoomID, game); err != nil {
				m.logger.Warn().Err(err).Str("room_id", roomID).Msg("sweep: failed to archive, skipping eviction")
				return nil
			}
			if err := m.DeleteRoom(gctx, roomID); err != nil {
				m.logger.Warn().Err(err).Str("room_id", roomID).Msg("sweep: failed to evict room after archiving")
				return nil
			}
			mu.Lock()
			swept++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return swept, err
	}
	return swept, nil
}
