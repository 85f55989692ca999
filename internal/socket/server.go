package socket

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/pokerforbots/internal/action"
	"github.com/lox/pokerforbots/internal/baloot"
	"github.com/lox/pokerforbots/internal/config"
	"github.com/lox/pokerforbots/internal/room"
)

// Validator authenticates a join_room token. Implemented by internal/auth;
// declared locally to avoid a socket->auth->socket import cycle.
type Validator interface {
	Validate(ctx context.Context, token string) (identity string, err error)
}

// Server is the Socket Layer: a WebSocket frontend over the ActionHandler
// and RoomManager, with an upgrader, a /health route, graceful shutdown,
// and per-connection read/write pumps.
type Server struct {
	rooms   *room.Manager
	handler *action.Handler
	auth    Validator
	logger  zerolog.Logger

	upgrader   websocket.Upgrader
	mux        *http.ServeMux
	httpServer *http.Server
	routesOnce sync.Once

	mu          sync.RWMutex
	connsByRoom map[string]map[*Connection]struct{}

	templates []config.RoomTemplate
}

// NewServer constructs the Socket Layer. auth may be nil (OFFLINE_MODE),
// in which case join_room never requires a token. templates
// may be nil; create_room requests naming an unknown or absent template
// fall back to baloot.DefaultRoomSettings().
func NewServer(rooms *room.Manager, handler *action.Handler, auth Validator, logger zerolog.Logger, templates []config.RoomTemplate) *Server {
	s := &Server{
		rooms:       rooms,
		handler:     handler,
		auth:        auth,
		logger:      logger.With().Str("component", "socket_server").Logger(),
		mux:         http.NewServeMux(),
		connsByRoom: map[string]map[*Connection]struct{}{},
		templates:   templates,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	return s
}

// SetHandler binds the ActionHandler after construction, breaking the
// Server<->Handler circular dependency (the Handler needs a Broadcaster,
// and the Server needs a Handler): callers construct the Server with a nil
// handler, build the Handler with the Server as its Broadcaster, then wire
// it back in here before serving.
func (s *Server) SetHandler(handler *action.Handler) {
	s.handler = handler
}

func (s *Server) ensureRoutes() {
	s.routesOnce.Do(func() {
		s.mux.HandleFunc("/ws", s.handleWebSocket)
		s.mux.HandleFunc("/health", s.handleHealth)
		s.mux.HandleFunc("/admin/rooms", s.handleAdminRooms)
		s.mux.HandleFunc("/admin/rooms/", s.handleAdminRoom)
	})
}

// Serve starts the HTTP server on an existing listener.
func (s *Server) Serve(listener net.Listener) error {
	s.ensureRoutes()
	s.httpServer = &http.Server{Handler: s.mux}
	s.logger.Info().Str("addr", listener.Addr().String()).Msg("socket server starting")
	return s.httpServer.Serve(listener)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pongWait)
	defer cancel()
	if err := s.rooms.Ping(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("redis unavailable\n"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

// AdminRoomSummary is one row of the /admin/rooms listing: just enough to
// pick a room to drill into, not the full Game payload.
type AdminRoomSummary struct {
	RoomID      string `json:"roomId"`
	Phase       string `json:"phase"`
	SeatedCount int    `json:"seatedCount"`
}

// handleAdminRooms lists every live room, for the balootctl operator
// console's room picker. Loads are sequential and best-effort: a room
// that fails to load is simply omitted rather than failing the listing.
func (s *Server) handleAdminRooms(w http.ResponseWriter, r *http.Request) {
	roomIDs, err := s.rooms.EnumerateRooms(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	summaries := make([]AdminRoomSummary, 0, len(roomIDs))
	for _, id := range roomIDs {
		game, err := s.rooms.GetGame(r.Context(), id)
		if err != nil {
			continue
		}
		summaries = append(summaries, AdminRoomSummary{
			RoomID:      id,
			Phase:       string(game.CurrentPhase),
			SeatedCount: game.SeatedCount(),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summaries)
}

// handleAdminRoom returns one room's full, un-rotated Game state (every
// seat's hand visible) for operator debugging. Never used on the player
// wire path, which always rotates state per-viewer.
func (s *Server) handleAdminRoom(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Path[len("/admin/rooms/"):]
	if roomID == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	game, err := s.rooms.GetGame(r.Context(), roomID)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(game)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := newConnection(conn, s, s.logger)
	c.start()
}

func (s *Server) join(roomID string, c *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.connsByRoom[roomID]
	if !ok {
		set = map[*Connection]struct{}{}
		s.connsByRoom[roomID] = set
	}
	set[c] = struct{}{}
}

func (s *Server) leave(c *Connection) {
	roomID, _, ok := c.currentSeat()
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok := s.connsByRoom[roomID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(s.connsByRoom, roomID)
		}
	}
}

func (s *Server) connectionsFor(roomID string) []*Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.connsByRoom[roomID]
	out := make([]*Connection, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// BroadcastGameUpdate implements action.Broadcaster: it pushes a
// per-recipient rotated game_update to every connection seated in roomID.
func (s *Server) BroadcastGameUpdate(roomID string, game *baloot.Game) {
	s.push(roomID, game, TypeGameUpdate)
}

func (s *Server) push(roomID string, game *baloot.Game, eventType MessageType) {
	for _, c := range s.connectionsFor(roomID) {
		_, seat, ok := c.currentSeat()
		if !ok {
			continue
		}
		rotated, err := RotateGame(game, seat)
		if err != nil {
			s.logger.Error().Err(err).Str("room_id", roomID).Msg("failed to rotate game state")
			continue
		}
		stateJSON, err := json.Marshal(rotated)
		if err != nil {
			continue
		}
		msg, err := NewMessage(eventType, GameUpdateData{GameState: stateJSON})
		if err != nil {
			continue
		}
		c.sendMessage(msg)
	}
}

func (s *Server) dispatch(c *Connection, msg *Message) {
	switch msg.Type {
	case TypeCreateRoom:
		s.handleCreateRoom(c, msg)
	case TypeJoinRoom:
		s.handleJoinRoom(c, msg)
	case TypeAddBot:
		s.handleAddBot(c, msg)
	case TypeGameAction:
		s.handleGameAction(c, msg, false)
	case TypeDebugAction:
		s.handleGameAction(c, msg, true)
	default:
		c.sendError("unknown_message_type", "unrecognized message type: "+string(msg.Type))
	}
}

func (s *Server) handleCreateRoom(c *Connection, msg *Message) {
	data, err := decode[CreateRoomData](msg.Data)
	if err != nil {
		c.sendError("invalid_message", "failed to parse create_room payload")
		return
	}

	ctx := context.Background()
	roomID, err := s.rooms.CreateRoom(ctx)
	if err != nil {
		resp, _ := NewMessage(TypeCreateRoom, CreateRoomResponse{Success: false, Error: "failed to create room"})
		c.sendMessage(resp)
		return
	}

	if data.TemplateName != "" {
		if tmpl := config.FindTemplate(s.templates, data.TemplateName); tmpl != nil {
			game, loadErr := s.rooms.GetGame(ctx, roomID)
			if loadErr == nil {
				game.Settings = tmpl.ToRoomSettings()
				_ = s.rooms.SaveGame(ctx, game)
			}
		}
	}

	resp, _ := NewMessage(TypeCreateRoom, CreateRoomResponse{Success: true, RoomID: roomID})
	c.sendMessage(resp)
}

func (s *Server) handleJoinRoom(c *Connection, msg *Message) {
	data, err := decode[JoinRoomData](msg.Data)
	if err != nil {
		c.sendError("invalid_message", "failed to parse join_room payload")
		return
	}

	if s.auth != nil {
		if _, err := s.auth.Validate(context.Background(), data.Token); err != nil {
			resp, _ := NewMessage(TypeJoinRoom, JoinRoomResponse{Success: false, Error: string(baloot.ErrAuthRequired)})
			c.sendMessage(resp)
			return
		}
	}

	ctx := context.Background()
	game, err := s.rooms.GetGame(ctx, data.RoomID)
	if err != nil {
		resp, _ := NewMessage(TypeJoinRoom, JoinRoomResponse{Success: false, Error: string(baloot.ErrRoomNotFound)})
		c.sendMessage(resp)
		return
	}

	wasWaiting := game.CurrentPhase == baloot.PhaseWaiting
	seat, err := game.JoinSeat(data.PlayerName)
	if err != nil {
		resp, _ := NewMessage(TypeJoinRoom, JoinRoomResponse{Success: false, Error: err.Error()})
		c.sendMessage(resp)
		return
	}
	if err := s.rooms.SaveGame(ctx, game); err != nil {
		resp, _ := NewMessage(TypeJoinRoom, JoinRoomResponse{Success: false, Error: string(baloot.ErrBackendUnavailable)})
		c.sendMessage(resp)
		return
	}

	c.setSeat(data.RoomID, seat)
	s.join(data.RoomID, c)

	rotated, err := RotateGame(game, seat)
	if err != nil {
		c.sendError("internal_error", "failed to build game state")
		return
	}
	stateJSON, _ := json.Marshal(rotated)
	resp, _ := NewMessage(TypeJoinRoom, JoinRoomResponse{Success: true, PlayerIndex: seat, GameState: stateJSON})
	c.sendMessage(resp)

	if wasWaiting && game.CurrentPhase != baloot.PhaseWaiting {
		s.push(data.RoomID, game, TypeGameStart)
		s.notifyMutated(data.RoomID, game)
	} else {
		s.push(data.RoomID, game, TypeGameUpdate)
	}
}

// notifyMutated re-triggers the same post-mutation hook the ActionHandler
// runs after a game_action, used here because JoinSeat/AddBot seating can
// also start a round (Waiting -> Bidding) without going through Handle.
func (s *Server) notifyMutated(roomID string, game *baloot.Game) {
	if s.handler != nil && s.handler.OnMutated != nil {
		s.handler.OnMutated(roomID, game)
	}
}

func (s *Server) handleAddBot(c *Connection, msg *Message) {
	data, err := decode[AddBotData](msg.Data)
	if err != nil {
		c.sendError("invalid_message", "failed to parse add_bot payload")
		return
	}

	ctx := context.Background()
	game, err := s.rooms.GetGame(ctx, data.RoomID)
	if err != nil {
		resp, _ := NewMessage(TypeAddBot, AddBotResponse{Success: false, Error: string(baloot.ErrRoomNotFound)})
		c.sendMessage(resp)
		return
	}

	difficulty := baloot.DifficultyMedium
	if data.BotDifficulty != "" {
		difficulty = baloot.BotDifficulty(data.BotDifficulty)
	}

	wasWaiting := game.CurrentPhase == baloot.PhaseWaiting
	if _, err := game.AddBot(difficulty); err != nil {
		resp, _ := NewMessage(TypeAddBot, AddBotResponse{Success: false, Error: err.Error()})
		c.sendMessage(resp)
		return
	}
	if err := s.rooms.SaveGame(ctx, game); err != nil {
		resp, _ := NewMessage(TypeAddBot, AddBotResponse{Success: false, Error: string(baloot.ErrBackendUnavailable)})
		c.sendMessage(resp)
		return
	}

	resp, _ := NewMessage(TypeAddBot, AddBotResponse{Success: true})
	c.sendMessage(resp)

	if wasWaiting && game.CurrentPhase != baloot.PhaseWaiting {
		s.push(data.RoomID, game, TypeGameStart)
		s.notifyMutated(data.RoomID, game)
	} else {
		s.push(data.RoomID, game, TypeGameUpdate)
	}
}

func (s *Server) handleGameAction(c *Connection, msg *Message, isDebug bool) {
	data, err := decode[GameActionData](msg.Data)
	if err != nil {
		c.sendError("invalid_message", "failed to parse action payload")
		return
	}

	roomID, seat, hasSeat := c.currentSeat()
	if !hasSeat || roomID != data.RoomID {
		respType := TypeGameAction
		if isDebug {
			respType = TypeDebugAction
		}
		resp, _ := NewMessage(respType, ActionResponse{Success: false, Error: string(baloot.ErrAuthRequired)})
		c.sendMessage(resp)
		return
	}

	act, err := buildAction(data)
	if err != nil {
		respType := TypeGameAction
		if isDebug {
			respType = TypeDebugAction
		}
		resp, _ := NewMessage(respType, ActionResponse{Success: false, Error: string(baloot.ErrInvalidPayload)})
		c.sendMessage(resp)
		return
	}

	frame := action.Frame{RoomID: data.RoomID, ConnID: c.ID, Seat: seat, Action: act}
	handleErr := s.handler.Handle(context.Background(), frame)

	respType := TypeGameAction
	if isDebug {
		respType = TypeDebugAction
	}
	if handleErr != nil {
		resp, _ := NewMessage(respType, responseFor(handleErr))
		c.sendMessage(resp)
		return
	}
	resp, _ := NewMessage(respType, ActionResponse{Success: true})
	c.sendMessage(resp)
}

func responseFor(err error) ActionResponse {
	gameErr, ok := err.(*baloot.GameError)
	if !ok {
		return ActionResponse{Success: false, Error: err.Error()}
	}
	if gameErr.Kind == baloot.ErrProfessorIntervention {
		intervention, _ := json.Marshal(map[string]string{"reasoning": gameErr.Message})
		return ActionResponse{Success: false, Error: string(gameErr.Kind), Intervention: intervention}
	}
	return ActionResponse{Success: false, Error: gameErr.Message}
}
