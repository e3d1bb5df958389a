package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/tatianab/clean-kitchen/internal/models"
)

// DefaultInterval is the time between two decay ticks.
const DefaultInterval = 3 * time.Second

// Engine owns one session: the scene pointer, the entropy meter, the
// completion set and the decay timer. All mutation goes through its
// methods, which are safe for concurrent use.
type Engine struct {
	script     *models.Script
	clock      clockwork.Clock
	interval   time.Duration
	thresholds []int
	logger     *zap.Logger
	listener   Listener

	mu      sync.Mutex
	state   State
	visit   Visit
	fired   map[int]bool
	started bool
	closed  bool
	timer   *decayTimer
	gen     uint64
	wg      sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock driving decay. Tests pass a fake clock.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithInterval sets the time between decay ticks.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) { e.interval = d }
}

// WithThresholds replaces the warning thresholds.
func WithThresholds(t []int) Option {
	return func(e *Engine) { e.thresholds = append([]int(nil), t...) }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithListener(l Listener) Option {
	return func(e *Engine) { e.listener = l }
}

// New starts a session over script. The session begins on the first scene
// with the decay timer idle.
func New(script *models.Script, opts ...Option) (*Engine, error) {
	if script == nil || script.Len() == 0 {
		return nil, errors.New("engine needs a non-empty script")
	}

	e := &Engine{
		script:     script,
		clock:      clockwork.NewRealClock(),
		interval:   DefaultInterval,
		thresholds: DefaultThresholds,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.interval <= 0 {
		return nil, fmt.Errorf("decay interval must be positive, got %v", e.interval)
	}

	e.reset()
	e.logger.Info("Session started",
		zap.String("run_id", e.state.RunID.String()),
		zap.String("script", script.Title),
		zap.Int("scenes", script.Len()),
	)
	return e, nil
}

// Close stops the decay timer and waits for it to exit. The engine
// ignores time afterwards but still answers reads.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	e.stopDecay()
	e.mu.Unlock()
	e.wg.Wait()
}

func (e *Engine) Script() *models.Script { return e.script }

// State returns a snapshot of the session.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.snapshot()
}

// Scene returns the active scene.
func (e *Engine) Scene() *models.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene()
}

// Visit returns the interaction state of the active scene.
func (e *Engine) Visit() Visit {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.visit
}

// Report resolves the run as it stands.
func (e *Engine) Report() Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Resolve(e.script, e.state)
}

func (e *Engine) scene() *models.Scene { return e.script.At(e.state.Position) }

func (e *Engine) reset() {
	e.state = newState()
	e.fired = make(map[int]bool)
	e.started = false
	e.visit = newVisit(e.scene().ID)
}

// do runs fn under the lock and delivers the events it raised afterwards.
func (e *Engine) do(fn func(out *outbox)) {
	var out outbox
	e.mu.Lock()
	fn(&out)
	e.mu.Unlock()
	out.flush(e.listener)
}

// Next advances one scene. On a last, fully resolved results scene it
// starts a new run instead.
func (e *Engine) Next() bool {
	var moved bool
	e.do(func(out *outbox) {
		if !e.state.Active() {
			return
		}
		switch {
		case e.state.Position < e.script.Len()-1:
			e.moveTo(e.state.Position+1, out)
			moved = true
		case e.scene().Kind == models.KindResults && Resolve(e.script, e.state).Complete():
			e.restart(out)
			moved = true
		}
	})
	return moved
}

// Prev steps back one scene.
func (e *Engine) Prev() bool {
	var moved bool
	e.do(func(out *outbox) {
		if !e.state.Active() || e.state.Position == 0 {
			return
		}
		e.moveTo(e.state.Position-1, out)
		moved = true
	})
	return moved
}

// Jump moves to any scene by index. Out of range targets are ignored.
func (e *Engine) Jump(index int) bool {
	var moved bool
	e.do(func(out *outbox) {
		if !e.state.Active() || index < 0 || index >= e.script.Len() {
			return
		}
		moved = true
		if index != e.state.Position {
			e.moveTo(index, out)
		}
	})
	return moved
}

// Restart throws the run away and starts a fresh one. It is the only
// command a failed run accepts.
func (e *Engine) Restart() {
	e.do(e.restart)
}

func (e *Engine) moveTo(index int, out *outbox) {
	e.state.Position = index
	e.visit = newVisit(e.scene().ID)
	e.logger.Debug("Scene changed",
		zap.String("run_id", e.state.RunID.String()),
		zap.String("scene", e.visit.SceneID),
		zap.Int("position", index),
	)
	out.stateChanged(e.state)
	e.syncDecay(out)
}

func (e *Engine) restart(out *outbox) {
	prev := e.state
	e.reset()
	e.logger.Info("Run restarted",
		zap.String("previous_run_id", prev.RunID.String()),
		zap.String("run_id", e.state.RunID.String()),
		zap.Int("previous_level", prev.ResourceLevel),
		zap.String("previous_status", string(prev.Status)),
	)
	out.stateChanged(e.state)
	e.syncDecay(out)
}

// SubmitQuizOption answers the quiz on sceneID with optionID.
func (e *Engine) SubmitQuizOption(sceneID, optionID string) (Feedback, error) {
	return e.submit(sceneID, func(b models.Battle) (Outcome, error) {
		q, ok := b.(*models.QuizBattle)
		if !ok {
			return Outcome{}, ErrNotBattle
		}
		return EvaluateQuiz(q, optionID)
	}, func(v *Visit) {
		v.SelectedOption = optionID
	})
}

// SubmitDebugLine answers the debug battle on sceneID with a zero-based
// line index.
func (e *Engine) SubmitDebugLine(sceneID string, line int) (Feedback, error) {
	return e.submit(sceneID, func(b models.Battle) (Outcome, error) {
		d, ok := b.(*models.DebugBattle)
		if !ok {
			return Outcome{}, ErrNotBattle
		}
		return EvaluateDebug(d, line), nil
	}, func(v *Visit) {
		v.SelectedLine = line
	})
}

// SubmitTerminalCommand answers the terminal battle on sceneID. Only the
// first submission of a visit is scored, right or wrong.
func (e *Engine) SubmitTerminalCommand(sceneID, text string) (Feedback, error) {
	return e.submit(sceneID, func(b models.Battle) (Outcome, error) {
		t, ok := b.(*models.TerminalBattle)
		if !ok {
			return Outcome{}, ErrNotBattle
		}
		return EvaluateTerminal(t, text), nil
	}, func(v *Visit) {
		v.Command = text
	})
}

func (e *Engine) submit(sceneID string, eval func(models.Battle) (Outcome, error), mark func(*Visit)) (fb Feedback, err error) {
	e.do(func(out *outbox) {
		fb, err = e.answer(sceneID, eval, mark, out)
	})
	return fb, err
}

func (e *Engine) answer(sceneID string, eval func(models.Battle) (Outcome, error), mark func(*Visit), out *outbox) (Feedback, error) {
	if !e.state.Active() {
		return Feedback{}, ErrNotActive
	}
	scene := e.scene()
	if scene.ID != sceneID {
		return Feedback{}, fmt.Errorf("%w: %q", ErrSceneMismatch, sceneID)
	}
	if scene.Battle == nil {
		return Feedback{}, ErrNotBattle
	}
	if e.visit.Answered {
		return Feedback{}, ErrAlreadyAnswered
	}

	outcome, err := eval(scene.Battle)
	if err != nil {
		return Feedback{}, err
	}

	fb := Feedback{
		SceneID: scene.ID,
		Delta:   outcome.Delta,
		Success: outcome.Success,
		Correct: outcome.Correct,
		Message: outcome.Message,
	}
	e.visit.Answered = true
	mark(&e.visit)
	e.visit.Feedback = &fb

	e.setLevel(e.state.ResourceLevel+outcome.Delta, out)
	if e.state.ResourceLevel >= MaxLevel {
		e.fail(out)
	} else if outcome.Completed {
		e.state.Completed.Add(scene.ID)
	}

	e.logger.Info("Battle answered",
		zap.String("run_id", e.state.RunID.String()),
		zap.String("scene", scene.ID),
		zap.String("battle", string(scene.Battle.Type())),
		zap.Int("delta", outcome.Delta),
		zap.Bool("success", outcome.Success),
		zap.Int("level", e.state.ResourceLevel),
		zap.Strings("completed", e.state.Completed.Sorted()),
	)

	out.feedback(fb)
	out.stateChanged(e.state)
	e.syncDecay(out)
	return fb, nil
}
