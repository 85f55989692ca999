// Package botsched implements the BotScheduler: after any mutation that
// changes currentTurnSeat, schedule the next bot's turn; guard against
// runaway recursion and double-fired auto-restarts. Built around
// coder/quartz's injectable clock for epoch-tagged scheduled callbacks.
package botsched

import (
	"context"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/lox/pokerforbots/internal/action"
	"github.com/lox/pokerforbots/internal/baloot"
	"github.com/lox/pokerforbots/internal/room"
)

// MaxConcurrentBotTurns bounds how many rooms' bot turns this scheduler
// runs at once: each fired quartz timer spawns its own goroutine, and an
// unbounded fan-out across many simultaneously-busy rooms would otherwise
// hand the Decider and Redis an unbounded concurrent burst.
const MaxConcurrentBotTurns = 32

// MaxRecursionDepth bounds consecutive bot turns without a human action.
const MaxRecursionDepth = 500

// DefaultTurnDelay and FastForwardTurnDelay are the bot-turn scheduling
// delays; fast-forward is used in tests and when balootd runs with --debug.
const (
	DefaultTurnDelay     = 1 * time.Second
	FastForwardTurnDelay = 100 * time.Millisecond
	RoundTransitionDelay = 1500 * time.Millisecond
)

// SawaBotTimeout is the fixed response window used when every seat still
// owed a response is a bot; the human default comes from
// baloot.RoomSettings.SawaTimeoutSeconds instead, since only the human
// side of the ratio is meant to be operator-tunable.
const SawaBotTimeout = 2 * time.Second

// QaydHumanTimeout and QaydBotTimeout bound how long a Qayd reporter has
// to carry an accusation to its conclusion before the engine resolves it
// unattended.
const (
	QaydHumanTimeout = 60 * time.Second
	QaydBotTimeout   = 5 * time.Second
)

// Decider is the bot strategy collaborator: given the rotated game state
// for a seat, decide an action. Failures are caught by the scheduler and
// never corrupt game state.
type Decider interface {
	Decide(ctx context.Context, game *baloot.Game, seat int) (baloot.Action, error)
}

// Scheduler advances bot turns and the round-transition auto-restart.
type Scheduler struct {
	rooms   *room.Manager
	handler *action.Handler
	clock   quartz.Clock
	decider Decider
	logger  zerolog.Logger
	fanout  *semaphore.Weighted

	fastForward bool

	mu            sync.Mutex
	epoch         map[string]int
	restarting    map[string]bool
	sawaScheduled map[string]int
	qaydScheduled map[string]int
}

// New constructs a BotScheduler. Pass quartz.NewMock(t) in tests for
// deterministic, instantly-advanceable timers.
func New(rooms *room.Manager, handler *action.Handler, clock quartz.Clock, decider Decider, logger zerolog.Logger, fastForward bool) *Scheduler {
	s := &Scheduler{
		rooms:         rooms,
		handler:       handler,
		clock:         clock,
		decider:       decider,
		logger:        logger.With().Str("component", "bot_scheduler").Logger(),
		fanout:        semaphore.NewWeighted(MaxConcurrentBotTurns),
		fastForward:   fastForward,
		epoch:         map[string]int{},
		restarting:    map[string]bool{},
		sawaScheduled: map[string]int{},
		qaydScheduled: map[string]int{},
	}
	handler.OnMutated = s.onMutated
	return s
}

func (s *Scheduler) turnDelay() time.Duration {
	if s.fastForward {
		return FastForwardTurnDelay
	}
	return DefaultTurnDelay
}

// onMutated is the ActionHandler's post-mutation hook: if the new
// currentTurnSeat is a bot, schedule its turn; if the room just entered
// RoundOver, schedule the (at-most-once) auto-restart.
func (s *Scheduler) onMutated(roomID string, game *baloot.Game) {
	s.mu.Lock()
	epoch := s.epoch[roomID]
	s.mu.Unlock()

	s.maybeScheduleSawaTimeout(roomID, game)
	s.maybeScheduleQaydTimeout(roomID, game)

	if game.CurrentPhase == baloot.PhaseRoundOver {
		s.scheduleAutoRestart(roomID, epoch)
		return
	}
	if game.CurrentPhase != baloot.PhasePlaying && game.CurrentPhase != baloot.PhaseBidding {
		return
	}
	seat := game.CurrentTurnSeat
	if seat < 0 || seat > 3 || !game.Seats[seat].IsBot {
		return
	}
	s.scheduleBotTurn(roomID, seat, epoch, 0)
}

// scheduleBotTurn schedules one bot turn after the turn delay. depth is
// the consecutive-bot-turn counter, capped at MaxRecursionDepth.
func (s *Scheduler) scheduleBotTurn(roomID string, seat int, epoch int, depth int) {
	if depth >= MaxRecursionDepth {
		s.logger.Error().Str("room_id", roomID).Int("depth", depth).Msg("bot recursion depth exceeded, aborting chain")
		return
	}
	s.clock.AfterFunc(s.turnDelay(), func() {
		s.runBotTurn(roomID, seat, epoch, depth)
	})
}

func (s *Scheduler) runBotTurn(roomID string, seat int, epoch int, depth int) {
	s.mu.Lock()
	current := s.epoch[roomID]
	s.mu.Unlock()
	if current != epoch {
		return // stale timer: the round this callback was scheduled for has ended
	}

	ctx := context.Background()
	if err := s.fanout.Acquire(ctx, 1); err != nil {
		return
	}
	defer s.fanout.Release(1)

	game, err := s.rooms.GetGame(ctx, roomID)
	if err != nil {
		s.logger.Error().Err(err).Str("room_id", roomID).Msg("bot turn: failed to load room")
		return
	}
	if game.CurrentTurnSeat != seat || !game.Seats[seat].IsBot {
		return
	}

	act, err := s.safeDecide(ctx, game, seat)

	frame := action.Frame{RoomID: roomID, ConnID: "bot:" + roomID, Seat: seat, Action: act}
	if err := s.handler.Handle(ctx, frame); err != nil {
		s.logger.Warn().Err(err).Str("room_id", roomID).Int("seat", seat).Msg("bot action rejected")
	}

	s.mu.Lock()
	s.epoch[roomID]++
	nextEpoch := s.epoch[roomID]
	s.mu.Unlock()

	game, err = s.rooms.GetGame(ctx, roomID)
	if err == nil && game.CurrentTurnSeat >= 0 && game.CurrentTurnSeat <= 3 &&
		game.Seats[game.CurrentTurnSeat].IsBot &&
		(game.CurrentPhase == baloot.PhasePlaying || game.CurrentPhase == baloot.PhaseBidding) {
		s.scheduleBotTurn(roomID, game.CurrentTurnSeat, nextEpoch, depth+1)
	}
}

// safeDecide calls the bot's Decide(ctx) collaborator and falls back to a
// safe default on failure: a pass during bidding, else the first legal card. A bot
// failure is logged at CRITICAL and must never corrupt state.
func (s *Scheduler) safeDecide(ctx context.Context, game *baloot.Game, seat int) (act baloot.Action, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("room_id", game.RoomID).Int("seat", seat).Msg("CRITICAL: bot Decide panicked")
			act = s.fallbackAction(game, seat)
			err = nil
		}
	}()

	decided, derr := s.decider.Decide(ctx, game, seat)
	if derr != nil {
		s.logger.Error().Err(derr).Str("room_id", game.RoomID).Int("seat", seat).Msg("CRITICAL: bot Decide failed")
		return s.fallbackAction(game, seat), nil
	}
	return decided, nil
}

func (s *Scheduler) fallbackAction(game *baloot.Game, seat int) baloot.Action {
	if game.CurrentPhase == baloot.PhaseBidding {
		return baloot.Action{Type: baloot.ActionBid, Seat: seat, BidAction: baloot.BidPass}
	}
	r := game.CurrentRound
	if r != nil {
		hand := game.Seats[seat].Hand
		trump := baloot.Spades
		if r.Bid.TrumpSuit != nil {
			trump = *r.Bid.TrumpSuit
		}
		for i, c := range hand {
			if baloot.IsLegalPlay(c, hand, r.CurrentTrick, seat, r.Mode, trump, r.IsLocked) {
				return baloot.Action{Type: baloot.ActionPlay, Seat: seat, CardIndex: i}
			}
		}
	}
	return baloot.Action{Type: baloot.ActionBid, Seat: seat, BidAction: baloot.BidPass}
}

// scheduleAutoRestart schedules the next-round transition after
// RoundTransitionDelay, guarded by a per-room latch so it fires exactly
// once per round transition even if onMutated is invoked again before the
// timer runs.
func (s *Scheduler) scheduleAutoRestart(roomID string, epoch int) {
	s.mu.Lock()
	if s.restarting[roomID] {
		s.mu.Unlock()
		return
	}
	s.restarting[roomID] = true
	s.mu.Unlock()

	s.clock.AfterFunc(RoundTransitionDelay, func() {
		defer func() {
			s.mu.Lock()
			s.restarting[roomID] = false
			s.mu.Unlock()
		}()

		s.mu.Lock()
		current := s.epoch[roomID]
		s.mu.Unlock()
		if current != epoch {
			return
		}

		ctx := context.Background()
		game, err := s.rooms.GetGame(ctx, roomID)
		if err != nil || game.CurrentPhase != baloot.PhaseRoundOver {
			return
		}
		frame := action.Frame{RoomID: roomID, ConnID: "system:" + roomID, Seat: game.DealerSeat, Action: baloot.Action{Type: baloot.ActionNextRound}}
		if err := s.handler.Handle(ctx, frame); err != nil {
			s.logger.Error().Err(err).Str("room_id", roomID).Msg("auto-restart failed")
		}
	})
}

// BumpEpoch invalidates any in-flight timers for roomID, used when the
// game state changes out from under a scheduled callback (disconnect,
// manual reset).
func (s *Scheduler) BumpEpoch(roomID string) {
	s.mu.Lock()
	s.epoch[roomID]++
	s.mu.Unlock()
}

// maybeScheduleSawaTimeout starts the response-window timer the first time
// a given claim's epoch is observed active; later mutations against the
// same claim (each response is itself a mutation) are no-ops here.
func (s *Scheduler) maybeScheduleSawaTimeout(roomID string, game *baloot.Game) {
	r := game.CurrentRound
	if r == nil || r.Sawa == nil || !r.Sawa.Active {
		return
	}
	s.mu.Lock()
	if s.sawaScheduled[roomID] == r.Sawa.Epoch {
		s.mu.Unlock()
		return
	}
	s.sawaScheduled[roomID] = r.Sawa.Epoch
	s.mu.Unlock()

	s.clock.AfterFunc(s.sawaTimeoutDuration(game, r.Sawa.ClaimSeat), func() {
		s.runSawaTimeout(roomID, r.Sawa.Epoch)
	})
}

// sawaTimeoutDuration uses the tighter all-bot window only when every seat
// still owed a response is a bot; a single human responder gets the full
// configured window.
func (s *Scheduler) sawaTimeoutDuration(game *baloot.Game, claimSeat int) time.Duration {
	for seat := 0; seat < 4; seat++ {
		if seat == claimSeat {
			continue
		}
		if !game.Seats[seat].IsBot {
			return time.Duration(game.Settings.SawaTimeoutSeconds) * time.Second
		}
	}
	return SawaBotTimeout
}

// runSawaTimeout auto-rejects any seat that never responded to the claim
// the timer was scheduled for, one at a time through the normal response
// path, so the existing unanimous/penalty bookkeeping applies unchanged.
// A stale epoch (claim already resolved or the round moved on) makes this
// a no-op.
func (s *Scheduler) runSawaTimeout(roomID string, epoch int) {
	ctx := context.Background()
	for {
		game, err := s.rooms.GetGame(ctx, roomID)
		if err != nil {
			return
		}
		r := game.CurrentRound
		if r == nil || r.Sawa == nil || !r.Sawa.Active || r.Sawa.Epoch != epoch {
			return
		}
		seat := -1
		for cand := 0; cand < 4; cand++ {
			if cand == r.Sawa.ClaimSeat {
				continue
			}
			if _, answered := r.Sawa.Responses[cand]; answered {
				continue
			}
			seat = cand
			break
		}
		if seat == -1 {
			return
		}
		frame := action.Frame{RoomID: roomID, ConnID: "system:" + roomID, Seat: seat, Action: baloot.Action{Type: baloot.ActionSawaResponse, Accept: false}}
		if err := s.handler.Handle(ctx, frame); err != nil {
			s.logger.Error().Err(err).Str("room_id", roomID).Msg("sawa timeout: auto-reject failed")
			return
		}
	}
}

// maybeScheduleQaydTimeout starts the reporter's countdown the first time
// an accusation's epoch is observed live; the same engine instance is
// reused across states within one accusation (see QaydEngine.Close), so
// one timer, captured with the reporter seat, covers the whole life of
// the claim it was scheduled for.
func (s *Scheduler) maybeScheduleQaydTimeout(roomID string, game *baloot.Game) {
	r := game.CurrentRound
	if r == nil || r.Qayd == nil || r.Qayd.State == baloot.QaydIdle {
		return
	}
	s.mu.Lock()
	if s.qaydScheduled[roomID] == r.Qayd.Epoch {
		s.mu.Unlock()
		return
	}
	s.qaydScheduled[roomID] = r.Qayd.Epoch
	s.mu.Unlock()

	duration := QaydHumanTimeout
	if game.Seats[r.Qayd.Reporter].IsBot {
		duration = QaydBotTimeout
	}
	reporter := r.Qayd.Reporter
	epoch := r.Qayd.Epoch
	s.clock.AfterFunc(duration, func() {
		s.runQaydTimeout(roomID, reporter, epoch)
	})
}

// runQaydTimeout resolves an accusation the reporter never carried to a
// close: cancel if the reporter never confirmed a verdict, auto-confirm
// (close) if the verdict is sitting Revealed awaiting acknowledgement. A
// stale epoch, a reporter mismatch (a later accusation in the same round),
// or an already-Idle engine all make this a no-op.
func (s *Scheduler) runQaydTimeout(roomID string, reporter int, epoch int) {
	ctx := context.Background()
	game, err := s.rooms.GetGame(ctx, roomID)
	if err != nil {
		return
	}
	r := game.CurrentRound
	if r == nil || r.Qayd == nil || r.Qayd.Epoch != epoch || r.Qayd.Reporter != reporter {
		return
	}

	var act baloot.Action
	switch r.Qayd.State {
	case baloot.QaydReporterChoosing:
		act = baloot.Action{Type: baloot.ActionQaydCancel}
	case baloot.QaydRevealed:
		act = baloot.Action{Type: baloot.ActionQaydConfirm}
	default:
		return
	}

	frame := action.Frame{RoomID: roomID, ConnID: "system:" + roomID, Seat: reporter, Action: act}
	if err := s.handler.Handle(ctx, frame); err != nil {
		s.logger.Error().Err(err).Str("room_id", roomID).Msg("qayd timeout: auto-resolve failed")
	}
}
