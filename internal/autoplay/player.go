package autoplay

import (
	"context"
	"fmt"

	"github.com/tatianab/clean-kitchen/internal/models"
)

// Action is a player's answer to a battle. Only the field matching the
// battle type is used.
type Action struct {
	OptionID string `yaml:"option,omitempty"`
	Line     int    `yaml:"line,omitempty"`
	Command  string `yaml:"command,omitempty"`
}

func (a Action) describe(bt models.BattleType) string {
	switch bt {
	case models.BattleDebug:
		return fmt.Sprintf("line %d", a.Line)
	case models.BattleTerminal:
		return fmt.Sprintf("$ %s", a.Command)
	default:
		return fmt.Sprintf("option %s", a.OptionID)
	}
}

// Player decides how to answer a battle scene.
type Player interface {
	Choose(ctx context.Context, scene *models.Scene) (Action, error)
}

// OraclePlayer reads the answer key: the cheapest quiz option, the bug
// line, the first valid command.
type OraclePlayer struct{}

func (OraclePlayer) Choose(_ context.Context, scene *models.Scene) (Action, error) {
	switch b := scene.Battle.(type) {
	case *models.QuizBattle:
		best := b.Options[0]
		for _, o := range b.Options[1:] {
			if o.DebtImpact < best.DebtImpact {
				best = o
			}
		}
		return Action{OptionID: best.ID}, nil
	case *models.DebugBattle:
		return Action{Line: b.BugLine}, nil
	case *models.TerminalBattle:
		return Action{Command: b.ValidCommands[0]}, nil
	}
	return Action{}, fmt.Errorf("scene %q is not a battle", scene.ID)
}
