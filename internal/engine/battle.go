package engine

import (
	"fmt"
	"strings"

	"github.com/tatianab/clean-kitchen/internal/models"
)

// Fixed scores for the battles that have no per-answer impact.
const (
	DebugHitDelta     = -10
	DebugMissDelta    = 20
	TerminalHitDelta  = -10
	TerminalMissDelta = 15
)

const (
	defaultDebugHit     = "BUG IDENTIFIED."
	defaultDebugMiss    = "INCORRECT: This line is functional. Logic error persists."
	defaultTerminalHit  = "COMMAND EXECUTED SUCCESSFULLY."
	defaultTerminalMiss = "ERROR: Command '%s' not recognized or ineffective."
)

// Outcome is the score of one answer. Every accepted answer completes the
// battle.
type Outcome struct {
	Delta     int
	Completed bool
	Success   bool
	Correct   bool
	Message   string
}

// EvaluateQuiz scores a quiz choice. The option's debt impact is the score;
// its correct flag only styles the feedback.
func EvaluateQuiz(b *models.QuizBattle, optionID string) (Outcome, error) {
	opt, ok := b.Option(optionID)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownOption, optionID)
	}
	return Outcome{
		Delta:     opt.DebtImpact,
		Completed: true,
		Success:   opt.Correct,
		Correct:   opt.Correct,
		Message:   opt.Explanation,
	}, nil
}

// EvaluateDebug scores a zero-based line pick.
func EvaluateDebug(b *models.DebugBattle, line int) Outcome {
	if line == b.BugLine {
		return Outcome{
			Delta:     DebugHitDelta,
			Completed: true,
			Success:   true,
			Correct:   true,
			Message:   orDefault(b.SuccessMessage, defaultDebugHit),
		}
	}
	return Outcome{
		Delta:     DebugMissDelta,
		Completed: true,
		Message:   orDefault(b.FailMessage, defaultDebugMiss),
	}
}

// EvaluateTerminal scores a typed command. Surrounding whitespace is
// ignored; the rest must match a valid command exactly.
func EvaluateTerminal(b *models.TerminalBattle, input string) Outcome {
	cmd := strings.TrimSpace(input)
	if b.Accepts(cmd) {
		return Outcome{
			Delta:     TerminalHitDelta,
			Completed: true,
			Success:   true,
			Correct:   true,
			Message:   orDefault(b.SuccessMessage, defaultTerminalHit),
		}
	}
	return Outcome{
		Delta:     TerminalMissDelta,
		Completed: true,
		Message:   orDefault(b.FailMessage, fmt.Sprintf(defaultTerminalMiss, cmd)),
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
