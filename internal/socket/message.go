// Package socket implements the Socket Layer: a JSON-framed, bidirectional
// WebSocket protocol built around a fixed table of room/game lifecycle
// events instead of a generic message bus.
package socket

import (
	"encoding/json"
	"time"
)

// MessageType identifies a socket message's kind.
type MessageType string

const (
	// Client -> Server
	TypeCreateRoom  MessageType = "create_room"
	TypeJoinRoom    MessageType = "join_room"
	TypeAddBot      MessageType = "add_bot"
	TypeGameAction  MessageType = "game_action"
	TypeDebugAction MessageType = "debug_action"

	// Server -> Client
	TypeGameUpdate MessageType = "game_update"
	TypeGameStart  MessageType = "game_start"
	TypeBotSpeak   MessageType = "bot_speak"
	TypeError      MessageType = "error"
)

// Message is the base envelope for every socket frame.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage wraps data in a timestamped Message envelope.
func NewMessage(t MessageType, data interface{}) (*Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{Type: t, Data: raw, Timestamp: time.Now()}, nil
}

// Client -> Server payloads

type CreateRoomData struct {
	TemplateName string `json:"templateName,omitempty"`
}

type JoinRoomData struct {
	RoomID        string `json:"roomId"`
	PlayerName    string `json:"playerName"`
	BotDifficulty string `json:"botDifficulty,omitempty"`
	Token         string `json:"token,omitempty"`
}

type AddBotData struct {
	RoomID        string `json:"roomId"`
	BotDifficulty string `json:"botDifficulty,omitempty"`
}

// GameActionData carries a game_action or debug_action frame. Payload
// fields are a superset across the action enum; unused fields are left
// zero for a given action type.
type GameActionData struct {
	RoomID  string          `json:"roomId"`
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

type PlayPayload struct {
	CardIndex     int    `json:"cardIndex"`
	SkipProfessor bool   `json:"skip_professor,omitempty"`
	Metadata      string `json:"metadata,omitempty"`
}

type BidPayload struct {
	Action string `json:"action"`
	Suit   string `json:"suit,omitempty"`
}

type AkkaPayload struct {
	Suit string `json:"suit"`
}

type SawaResponsePayload struct {
	Accept bool `json:"accept"`
}

type DeclareProjectPayload struct {
	ProjectRef int `json:"projectRef"`
}

type QaydSelectViolationPayload struct {
	ViolationType string `json:"type"`
}

type QaydSelectCardPayload struct {
	Role       string `json:"role"` // "crime" | "proof"
	TrickIndex int    `json:"trickIndex"`
	CardRef    string `json:"cardRef"`
	PlayedBy   int    `json:"playedBy"`
}

type UpdateSettingsPayload struct {
	TurnDurationSeconds int    `json:"turnDuration,omitempty"`
	StrictMode          *bool  `json:"strictMode,omitempty"`
	BotDifficulty       string `json:"botDifficulty,omitempty"`
	SoundEnabled        *bool  `json:"soundEnabled,omitempty"`
	ShowHints           *bool  `json:"showHints,omitempty"`
	IsDebug             *bool  `json:"isDebug,omitempty"`
	SawaTimeoutSeconds  int    `json:"sawaTimeout,omitempty"`
}

// Server -> Client payloads

type CreateRoomResponse struct {
	Success bool   `json:"success"`
	RoomID  string `json:"roomId,omitempty"`
	Error   string `json:"error,omitempty"`
}

type JoinRoomResponse struct {
	Success     bool            `json:"success"`
	PlayerIndex int             `json:"playerIndex,omitempty"`
	GameState   json.RawMessage `json:"gameState,omitempty"`
	Error       string          `json:"error,omitempty"`
}

type AddBotResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type ActionResponse struct {
	Success      bool            `json:"success"`
	Error        string          `json:"error,omitempty"`
	Intervention json.RawMessage `json:"intervention,omitempty"`
}

type GameUpdateData struct {
	GameState json.RawMessage `json:"gameState"`
}

type BotSpeakData struct {
	PlayerIndex int    `json:"playerIndex"`
	Text        string `json:"text"`
	Emotion     string `json:"emotion,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
