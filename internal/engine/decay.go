package engine

import (
	"fmt"

	"github.com/tatianab/clean-kitchen/internal/models"
)

// DefaultThresholds are the levels that raise a one-shot warning the first
// time a run climbs past them.
var DefaultThresholds = []int{10, 25, 50, 75, 90}

const startMessage = "WARNING: BACKGROUND ENTROPY INITIATED. CODEBASE DECAYING..."

// DecayStep applies one decay tick to level. Only a level already at the
// cap fails the run; the tick that reaches the cap leaves one interval in
// which an answer can still bring the level down.
func DecayStep(level int) (next int, failed bool) {
	if level >= MaxLevel {
		return MaxLevel, true
	}
	return level + 1, false
}

// decayActive is the activation condition of the decay timer.
func decayActive(st State, kind models.SceneKind) bool {
	return st.Status == StatusActive && st.Position > 0 && kind != models.KindResults
}

// Crossed returns the thresholds passed on the way from prev up to next
// that are not in fired, in ascending order. fired is updated.
func Crossed(prev, next int, thresholds []int, fired map[int]bool) []int {
	if next <= prev {
		return nil
	}
	var out []int
	for _, t := range thresholds {
		if prev < t && next >= t && !fired[t] {
			fired[t] = true
			out = append(out, t)
		}
	}
	return out
}

func thresholdMessage(t int) string {
	switch {
	case t >= 90:
		return fmt.Sprintf("CRITICAL: TECH DEBT AT %d%%. SYSTEM COLLAPSE IMMINENT.", t)
	case t >= 50:
		return fmt.Sprintf("ALERT: TECH DEBT PASSED %d%%. REFACTOR WINDOW CLOSING.", t)
	default:
		return fmt.Sprintf("NOTICE: TECH DEBT PASSED %d%%.", t)
	}
}
