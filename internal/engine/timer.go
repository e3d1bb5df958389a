package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/tatianab/clean-kitchen/internal/models"
)

// decayKey is the part of the session the decay timer depends on. The
// timer is re-armed whenever it changes.
type decayKey struct {
	position int
	status   Status
	kind     models.SceneKind
}

type decayTimer struct {
	gen    uint64
	key    decayKey
	cancel context.CancelFunc
}

// syncDecay reconciles the decay timer with the current state. Called with
// e.mu held.
func (e *Engine) syncDecay(out *outbox) {
	key := decayKey{
		position: e.state.Position,
		status:   e.state.Status,
		kind:     e.scene().Kind,
	}
	if e.timer != nil && e.timer.key == key && !e.closed {
		return
	}
	e.stopDecay()
	if e.closed || !decayActive(e.state, key.kind) {
		return
	}

	if key.position == 1 && e.state.ResourceLevel == InitialLevel && !e.started {
		e.started = true
		out.notify(Notification{Kind: NotifyStart, Message: startMessage})
	}
	e.startDecay(key)
}

func (e *Engine) stopDecay() {
	if e.timer == nil {
		return
	}
	e.timer.cancel()
	e.timer = nil
}

func (e *Engine) startDecay(key decayKey) {
	e.gen++
	gen := e.gen
	ctx, cancel := context.WithCancel(context.Background())
	ticker := e.clock.NewTicker(e.interval)
	e.timer = &decayTimer{gen: gen, key: key, cancel: cancel}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				if !e.tick(gen) {
					return
				}
			}
		}
	}()
}

// tick applies one decay step for the timer generation gen. It reports
// whether that timer is still the armed one.
func (e *Engine) tick(gen uint64) bool {
	var out outbox
	e.mu.Lock()
	if e.timer == nil || e.timer.gen != gen {
		e.mu.Unlock()
		return false
	}

	next, failed := DecayStep(e.state.ResourceLevel)
	e.setLevel(next, &out)
	if failed {
		e.fail(&out)
	}
	out.stateChanged(e.state)
	e.syncDecay(&out)
	alive := e.timer != nil && e.timer.gen == gen
	e.mu.Unlock()

	out.flush(e.listener)
	return alive
}

// setLevel moves the resource level and raises threshold warnings for any
// upward crossing.
func (e *Engine) setLevel(next int, out *outbox) {
	next = clampLevel(next)
	prev := e.state.ResourceLevel
	e.state.ResourceLevel = next
	for _, t := range Crossed(prev, next, e.thresholds, e.fired) {
		e.logger.Info("Entropy threshold crossed",
			zap.String("run_id", e.state.RunID.String()),
			zap.Int("threshold", t),
			zap.Int("level", next),
		)
		out.notify(Notification{Kind: NotifyThreshold, Message: thresholdMessage(t), Threshold: t})
	}
}

func (e *Engine) fail(out *outbox) {
	e.state.ResourceLevel = MaxLevel
	e.state.Status = StatusFailed
	e.logger.Warn("Run failed",
		zap.String("run_id", e.state.RunID.String()),
		zap.String("scene", e.scene().ID),
	)
	out.stateChanged(e.state)
}
