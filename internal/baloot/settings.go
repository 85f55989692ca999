package baloot

import "fmt"

// BotDifficulty tags a bot seat's play strength; the Decide(ctx) collaborator
// is the only consumer and treats it as an opaque hint.
type BotDifficulty string

const (
	DifficultyEasy   BotDifficulty = "Easy"
	DifficultyMedium BotDifficulty = "Medium"
	DifficultyHard   BotDifficulty = "Hard"
	DifficultyKhalid BotDifficulty = "Khalid"
)

// RoomSettings is a typed, explicit set of per-room options: every
// recognized field is named here, with its valid range enumerated rather
// than left to caller discipline.
type RoomSettings struct {
	TurnDurationSeconds int           `json:"turnDuration"`
	StrictMode          bool          `json:"strictMode"`
	BotDifficulty       BotDifficulty `json:"botDifficulty"`
	SoundEnabled        bool          `json:"soundEnabled"`
	ShowHints           bool          `json:"showHints"`
	IsDebug             bool          `json:"isDebug"`

	// SawaTimeoutSeconds is the human-seat Sawa response window; the
	// scheduler uses its fixed, shorter SawaBotTimeout instead when every
	// responder is a bot.
	// Config-overridable rather than a hardcoded literal.
	SawaTimeoutSeconds int `json:"sawaTimeout"`
}

// DefaultRoomSettings returns the settings a freshly created room starts
// with.
func DefaultRoomSettings() RoomSettings {
	return RoomSettings{
		TurnDurationSeconds: 30,
		StrictMode:          true,
		BotDifficulty:       DifficultyMedium,
		SoundEnabled:        true,
		ShowHints:           false,
		IsDebug:             false,
		SawaTimeoutSeconds:  15,
	}
}

// Validate enforces each field's valid range.
func (s RoomSettings) Validate() error {
	if s.TurnDurationSeconds < 1 || s.TurnDurationSeconds > 120 {
		return fmt.Errorf("baloot: turnDuration %d out of range [1,120]", s.TurnDurationSeconds)
	}
	if s.SawaTimeoutSeconds < 1 || s.SawaTimeoutSeconds > 60 {
		return fmt.Errorf("baloot: sawaTimeout %d out of range [1,60]", s.SawaTimeoutSeconds)
	}
	switch s.BotDifficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyKhalid:
	default:
		return fmt.Errorf("baloot: unrecognized botDifficulty %q", s.BotDifficulty)
	}
	return nil
}
