package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/pokerforbots/internal/baloot"
)

// RoomTemplateFile is the optional static room-template/bot-preset file:
// declarative defaults for rooms created without an explicit
// UPDATE_SETTINGS call, kept in HCL while the process-level
// secrets/connection settings stay env-var driven.
type RoomTemplateFile struct {
	Rooms []RoomTemplate `hcl:"room,block"`
}

// RoomTemplate declares a named default RoomSettings preset.
type RoomTemplate struct {
	Name                string `hcl:"name,label"`
	TurnDurationSeconds int    `hcl:"turn_duration_seconds,optional"`
	StrictMode          bool   `hcl:"strict_mode,optional"`
	BotDifficulty       string `hcl:"bot_difficulty,optional"`
	SoundEnabled        bool   `hcl:"sound_enabled,optional"`
	ShowHints           bool   `hcl:"show_hints,optional"`
	AutoFillBots        int    `hcl:"auto_fill_bots,optional"`
	SawaTimeoutSeconds  int    `hcl:"sawa_timeout_seconds,optional"`
}

// ToRoomSettings converts a template into the domain's RoomSettings.
// Unset (zero) TurnDurationSeconds, BotDifficulty and SawaTimeoutSeconds
// are filled from DefaultRoomSettings; StrictMode, SoundEnabled and
// ShowHints are always taken from the template, so an omitted one is false.
func (t RoomTemplate) ToRoomSettings() baloot.RoomSettings {
	settings := baloot.DefaultRoomSettings()
	if t.TurnDurationSeconds != 0 {
		settings.TurnDurationSeconds = t.TurnDurationSeconds
	}
	settings.StrictMode = t.StrictMode
	if t.BotDifficulty != "" {
		settings.BotDifficulty = baloot.BotDifficulty(t.BotDifficulty)
	}
	settings.SoundEnabled = t.SoundEnabled
	settings.ShowHints = t.ShowHints
	if t.SawaTimeoutSeconds != 0 {
		settings.SawaTimeoutSeconds = t.SawaTimeoutSeconds
	}
	return settings
}

// LoadRoomTemplates loads room presets from an HCL file. A missing file is
// not an error: callers fall back to baloot.DefaultRoomSettings() for
// every room.
func LoadRoomTemplates(filename string) ([]RoomTemplate, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse room template file: %s", diags.Error())
	}

	var parsed RoomTemplateFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode room template file: %s", diags.Error())
	}

	for i := range parsed.Rooms {
		if parsed.Rooms[i].TurnDurationSeconds == 0 {
			parsed.Rooms[i].TurnDurationSeconds = 30
		}
		if parsed.Rooms[i].BotDifficulty == "" {
			parsed.Rooms[i].BotDifficulty = string(baloot.DifficultyMedium)
		}
	}

	return parsed.Rooms, nil
}

// FindTemplate returns the named template, or nil if not present.
func FindTemplate(templates []RoomTemplate, name string) *RoomTemplate {
	for i := range templates {
		if templates[i].Name == name {
			return &templates[i]
		}
	}
	return nil
}
