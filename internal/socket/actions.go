package socket

import (
	"fmt"

	"github.com/lox/pokerforbots/internal/baloot"
)

// buildAction translates a decoded game_action/debug_action frame into a
// baloot.Action. The Seat field is filled in by the caller once ownership
// is known.
func buildAction(data GameActionData) (baloot.Action, error) {
	switch data.Action {
	case "PLAY":
		p, err := decode[PlayPayload](data.Payload)
		if err != nil {
			return baloot.Action{}, err
		}
		return baloot.Action{Type: baloot.ActionPlay, CardIndex: p.CardIndex, SkipProfessor: p.SkipProfessor}, nil

	case "BID":
		p, err := decode[BidPayload](data.Payload)
		if err != nil {
			return baloot.Action{}, err
		}
		bidAction, err := baloot.ParseBidAction(p.Action)
		if err != nil {
			return baloot.Action{}, err
		}
		act := baloot.Action{Type: baloot.ActionBid, BidAction: bidAction}
		if p.Suit != "" {
			suit, err := baloot.ParseSuit(p.Suit)
			if err != nil {
				return baloot.Action{}, err
			}
			act.Suit = suit
		}
		return act, nil

	case "DOUBLE":
		return baloot.Action{Type: baloot.ActionDouble}, nil

	case "AKKA":
		p, err := decode[AkkaPayload](data.Payload)
		if err != nil {
			return baloot.Action{}, err
		}
		suit, err := baloot.ParseSuit(p.Suit)
		if err != nil {
			return baloot.Action{}, err
		}
		return baloot.Action{Type: baloot.ActionAkka, Suit: suit}, nil

	case "SAWA_CLAIM":
		return baloot.Action{Type: baloot.ActionSawaClaim}, nil

	case "SAWA_RESPONSE":
		p, err := decode[SawaResponsePayload](data.Payload)
		if err != nil {
			return baloot.Action{}, err
		}
		return baloot.Action{Type: baloot.ActionSawaResponse, Accept: p.Accept}, nil

	case "DECLARE_PROJECT":
		p, err := decode[DeclareProjectPayload](data.Payload)
		if err != nil {
			return baloot.Action{}, err
		}
		return baloot.Action{Type: baloot.ActionDeclareProject, ProjectRef: p.ProjectRef}, nil

	case "NEXT_ROUND":
		return baloot.Action{Type: baloot.ActionNextRound}, nil

	case "BALOOT":
		return baloot.Action{Type: baloot.ActionBaloot}, nil

	case "RE_BALOOT":
		return baloot.Action{Type: baloot.ActionRebaloot}, nil

	case "QAYD_START":
		return baloot.Action{Type: baloot.ActionQaydStart}, nil

	case "QAYD_SELECT_VIOLATION":
		p, err := decode[QaydSelectViolationPayload](data.Payload)
		if err != nil {
			return baloot.Action{}, err
		}
		violation, err := baloot.ParseQaydViolation(p.ViolationType)
		if err != nil {
			return baloot.Action{}, err
		}
		return baloot.Action{Type: baloot.ActionQaydSelectViolation, Violation: violation}, nil

	case "QAYD_SELECT_CARD":
		p, err := decode[QaydSelectCardPayload](data.Payload)
		if err != nil {
			return baloot.Action{}, err
		}
		role, err := baloot.ParseQaydRole(p.Role)
		if err != nil {
			return baloot.Action{}, err
		}
		card, err := baloot.ParseCard(p.CardRef)
		if err != nil {
			return baloot.Action{}, err
		}
		return baloot.Action{
			Type:     baloot.ActionQaydSelectCard,
			QaydRole: role,
			QaydCard: baloot.PlayedCard{TrickIndex: p.TrickIndex, Card: card, PlayedBy: p.PlayedBy},
		}, nil

	case "QAYD_CONFIRM":
		return baloot.Action{Type: baloot.ActionQaydConfirm}, nil

	case "QAYD_CANCEL":
		return baloot.Action{Type: baloot.ActionQaydCancel}, nil

	case "UPDATE_SETTINGS":
		p, err := decode[UpdateSettingsPayload](data.Payload)
		if err != nil {
			return baloot.Action{}, err
		}
		settings := baloot.DefaultRoomSettings()
		if p.TurnDurationSeconds != 0 {
			settings.TurnDurationSeconds = p.TurnDurationSeconds
		}
		if p.StrictMode != nil {
			settings.StrictMode = *p.StrictMode
		}
		if p.BotDifficulty != "" {
			settings.BotDifficulty = baloot.BotDifficulty(p.BotDifficulty)
		}
		if p.SoundEnabled != nil {
			settings.SoundEnabled = *p.SoundEnabled
		}
		if p.ShowHints != nil {
			settings.ShowHints = *p.ShowHints
		}
		if p.IsDebug != nil {
			settings.IsDebug = *p.IsDebug
		}
		if p.SawaTimeoutSeconds != 0 {
			settings.SawaTimeoutSeconds = p.SawaTimeoutSeconds
		}
		return baloot.Action{Type: baloot.ActionUpdateSettings, Settings: &settings}, nil

	default:
		return baloot.Action{}, fmt.Errorf("socket: unrecognized action %q", data.Action)
	}
}
