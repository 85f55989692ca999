// Package action implements the ingress pipeline: validate -> dispatch ->
// persist -> broadcast, run under a per-room lock so only one action
// mutates a given room's game at a time.
package action

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lox/pokerforbots/internal/baloot"
	"github.com/lox/pokerforbots/internal/room"
)

// Broadcaster pushes the rotated post-state of a room to every seated
// connection. Implemented by the socket layer.
type Broadcaster interface {
	BroadcastGameUpdate(roomID string, game *baloot.Game)
}

// Frame is one incoming action-ingress request.
type Frame struct {
	RoomID   string
	ConnID   string
	Seat     int
	Action   baloot.Action
}

// Handler is the ActionHandler ingress pipeline.
type Handler struct {
	rooms       *room.Manager
	limiter     RateLimiter
	broadcaster Broadcaster
	logger      zerolog.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	// OnMutated is invoked after a successful save+broadcast, letting the
	// BotScheduler react to a currentTurnSeat change without this package
	// importing botsched (which itself depends on Handler to re-enter the
	// pipeline for bot-originated actions).
	OnMutated func(roomID string, game *baloot.Game)
}

// NewHandler constructs an ActionHandler.
func NewHandler(rooms *room.Manager, limiter RateLimiter, broadcaster Broadcaster, logger zerolog.Logger) *Handler {
	return &Handler{
		rooms:       rooms,
		limiter:     limiter,
		broadcaster: broadcaster,
		logger:      logger.With().Str("component", "action_handler").Logger(),
		locks:       map[string]*sync.Mutex{},
	}
}

func (h *Handler) roomLock(roomID string) *sync.Mutex {
	h.locksMu.Lock()
	defer h.locksMu.Unlock()
	l, ok := h.locks[roomID]
	if !ok {
		l = &sync.Mutex{}
		h.locks[roomID] = l
	}
	return l
}

// Handle runs one frame through the full ingress pipeline. On success the
// room has been persisted and broadcast; on failure no broadcast occurs and
// the structured error is returned to the caller only.
func (h *Handler) Handle(ctx context.Context, frame Frame) error {
	if err := validateFrame(frame); err != nil {
		return err
	}

	allowed, err := h.limiter.Allow(frame.ConnID)
	if err != nil {
		// Limiter backend unavailable: fail CLOSED for mutating actions.
		return baloot.NewGameError(baloot.ErrRateLimited, "rate limiter unavailable")
	}
	if !allowed {
		return baloot.NewGameError(baloot.ErrRateLimited, "too many actions")
	}

	lock := h.roomLock(frame.RoomID)
	lock.Lock()
	defer lock.Unlock()

	game, err := h.rooms.GetGame(ctx, frame.RoomID)
	if err != nil {
		if lerr, ok := err.(*room.LoadError); ok && lerr.Kind == room.ErrKindMissing {
			return baloot.NewGameError(baloot.ErrRoomNotFound, "room not found")
		}
		return baloot.NewGameError(baloot.ErrBackendUnavailable, "failed to load room state")
	}

	if err := h.checkOwnership(game, &frame); err != nil {
		return err
	}

	if frame.Action.Type == baloot.ActionPlay && game.Settings.ShowHints &&
		!game.Seats[frame.Seat].IsBot && !frame.Action.SkipProfessor {
		if suggestion, fire := professorIntercept(game, frame.Seat, frame.Action.CardIndex); fire {
			return baloot.NewGameError(baloot.ErrProfessorIntervention, suggestion.Reasoning)
		}
	}

	if err := game.Dispatch(frame.Action); err != nil {
		return err
	}

	if err := h.rooms.SaveGame(ctx, game); err != nil {
		h.rooms.InvalidateCache(frame.RoomID)
		h.logger.Error().Err(err).Str("room_id", frame.RoomID).Msg("failed to persist game after mutation")
		return baloot.NewGameError(baloot.ErrBackendUnavailable, "failed to persist room state")
	}

	h.broadcaster.BroadcastGameUpdate(frame.RoomID, game)
	if h.OnMutated != nil {
		h.OnMutated(frame.RoomID, game)
	}
	return nil
}

// checkOwnership validates the acting seat and binds it to the action.
// Turn order itself (the acting seat must match the current-turn seat, or
// the action type must be one legal for off-turn actors) is then enforced
// by Game.Dispatch against that seat.
func (h *Handler) checkOwnership(game *baloot.Game, frame *Frame) error {
	if frame.Seat < 0 || frame.Seat > 3 {
		return baloot.NewGameError(baloot.ErrInvalidPayload, "seat out of range")
	}
	frame.Action.Seat = frame.Seat
	return nil
}

func validateFrame(frame Frame) error {
	switch frame.Action.Type {
	case baloot.ActionPlay, baloot.ActionBid, baloot.ActionDouble, baloot.ActionAkka,
		baloot.ActionSawaClaim, baloot.ActionSawaResponse, baloot.ActionDeclareProject,
		baloot.ActionNextRound, baloot.ActionQaydStart, baloot.ActionQaydSelectViolation,
		baloot.ActionQaydSelectCard, baloot.ActionQaydConfirm, baloot.ActionQaydCancel,
		baloot.ActionUpdateSettings, baloot.ActionBaloot, baloot.ActionRebaloot:
	default:
		return baloot.NewGameError(baloot.ErrInvalidPayload, "unrecognized action type")
	}
	if frame.RoomID == "" {
		return baloot.NewGameError(baloot.ErrInvalidPayload, "missing roomId")
	}
	return nil
}
