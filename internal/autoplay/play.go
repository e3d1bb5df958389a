package autoplay

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tatianab/clean-kitchen/internal/engine"
	"github.com/tatianab/clean-kitchen/internal/models"
)

// ErrRunFailed is returned when the meter maxes out before the results.
var ErrRunFailed = errors.New("run failed: tech debt reached 100%")

// Turn is one scene of an automated run.
type Turn struct {
	Scene    *models.Scene
	Action   *Action
	Feedback *engine.Feedback
	State    engine.State
}

// Describe renders the action for logs and transcripts.
func (t Turn) Describe() string {
	if t.Action == nil || t.Scene.Battle == nil {
		return ""
	}
	return t.Action.describe(t.Scene.Battle.Type())
}

// Play walks eng from its current scene to the results, letting p answer
// every battle on the way. onTurn, if set, sees each scene after it was
// handled. The run is left on the results scene.
func Play(ctx context.Context, eng *engine.Engine, p Player, log *zap.Logger, onTurn func(Turn)) (engine.Report, error) {
	if log == nil {
		log = zap.NewNop()
	}
	for {
		if err := ctx.Err(); err != nil {
			return engine.Report{}, err
		}
		if !eng.State().Active() {
			return eng.Report(), ErrRunFailed
		}

		scene := eng.Scene()
		turn := Turn{Scene: scene}
		if scene.IsBattle() && !eng.Visit().Answered {
			action, err := p.Choose(ctx, scene)
			if err != nil {
				return engine.Report{}, fmt.Errorf("choosing answer for %s: %w", scene.ID, err)
			}
			fb, err := submit(eng, scene, action)
			if err != nil {
				return engine.Report{}, fmt.Errorf("submitting answer for %s: %w", scene.ID, err)
			}
			turn.Action = &action
			turn.Feedback = &fb
			log.Debug("Autoplay answered",
				zap.String("scene", scene.ID),
				zap.String("action", turn.Describe()),
				zap.Int("delta", fb.Delta),
			)
		}
		turn.State = eng.State()
		if onTurn != nil {
			onTurn(turn)
		}

		if scene.Kind == models.KindResults {
			return eng.Report(), nil
		}
		if !eng.Next() {
			if !eng.State().Active() {
				return eng.Report(), ErrRunFailed
			}
			return eng.Report(), nil
		}
	}
}

func submit(eng *engine.Engine, scene *models.Scene, a Action) (engine.Feedback, error) {
	switch scene.Battle.(type) {
	case *models.QuizBattle:
		return eng.SubmitQuizOption(scene.ID, a.OptionID)
	case *models.DebugBattle:
		return eng.SubmitDebugLine(scene.ID, a.Line)
	case *models.TerminalBattle:
		return eng.SubmitTerminalCommand(scene.ID, a.Command)
	}
	return engine.Feedback{}, engine.ErrNotBattle
}
