package engine

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tatianab/clean-kitchen/internal/models"
)

const testScriptYAML = `
title: test deck
scenes:
  - id: intro
    type: INTRO
    title: Intro
  - id: story
    type: NARRATIVE
    title: Story
  - id: quiz
    type: BATTLE
    title: Quiz
    options:
      - {id: a, label: Match the pattern, debt_impact: 30}
      - {id: b, label: Golden pocket, correct: true, debt_impact: -5}
  - id: debug
    type: BATTLE
    battle_type: DEBUG
    title: Debug
    code_context: |
      export function checkAuth(user) {
        if (!user) {
          return false;
        }

        // Grant admin access
        if (user.role = 'admin') {
          return true;
        }
      }
    bug_line: 6
  - id: term
    type: BATTLE
    battle_type: TERMINAL
    title: Terminal
    valid_commands: ["kill 9402", "kill -9 9402"]
  - id: results
    type: RESULTS
    title: Results
`

func testScript(t *testing.T) *models.Script {
	t.Helper()
	s, err := models.ParseScript([]byte(testScriptYAML))
	require.NoError(t, err)
	return s
}

type recorder struct {
	mu        sync.Mutex
	states    []State
	notes     []Notification
	feedbacks []Feedback
}

func (r *recorder) OnStateChange(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) OnNotify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recorder) OnBattleFeedback(f Feedback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feedbacks = append(r.feedbacks, f)
}

func (r *recorder) notifications(kind NotifyKind) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notification
	for _, n := range r.notes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

type fixture struct {
	eng   *Engine
	clock *clockwork.FakeClock
	rec   *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{clock: clockwork.NewFakeClock(), rec: &recorder{}}
	eng, err := New(testScript(t),
		WithClock(f.clock),
		WithListener(f.rec),
		WithLogger(zaptest.NewLogger(t)),
	)
	require.NoError(t, err)
	t.Cleanup(eng.Close)
	f.eng = eng
	return f
}

// setLevel forces the resource level for tests that need a starting point
// the script cannot reach quickly.
func (f *fixture) setLevel(level int) {
	f.eng.mu.Lock()
	f.eng.state.ResourceLevel = level
	f.eng.mu.Unlock()
}

func (f *fixture) armed() bool {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()
	return f.eng.timer != nil
}

// tick advances the fake clock by one interval and waits for the decay
// goroutine to apply it.
func (f *fixture) tick(t *testing.T, wantLevel int) {
	t.Helper()
	f.clock.Advance(DefaultInterval)
	require.Eventually(t, func() bool {
		return f.eng.State().ResourceLevel == wantLevel
	}, time.Second, time.Millisecond)
}

func TestNewSession(t *testing.T) {
	f := newFixture(t)
	st := f.eng.State()

	assert.Equal(t, 0, st.Position)
	assert.Equal(t, InitialLevel, st.ResourceLevel)
	assert.Equal(t, StatusActive, st.Status)
	assert.Empty(t, st.Completed)
	assert.Equal(t, "intro", f.eng.Scene().ID)
	assert.False(t, f.armed())

	_, err := New(nil)
	assert.Error(t, err)
	_, err = New(testScript(t), WithInterval(0))
	assert.Error(t, err)
}

func TestNavigation(t *testing.T) {
	f := newFixture(t)
	last := f.eng.Script().Len() - 1

	assert.False(t, f.eng.Prev(), "prev on first scene")
	assert.True(t, f.eng.Next())
	assert.Equal(t, 1, f.eng.State().Position)
	assert.True(t, f.eng.Prev())
	assert.Equal(t, 0, f.eng.State().Position)

	assert.False(t, f.eng.Jump(last+1))
	assert.False(t, f.eng.Jump(-1))
	assert.Equal(t, 0, f.eng.State().Position)

	assert.True(t, f.eng.Jump(last))
	assert.Equal(t, last, f.eng.State().Position)
	assert.Equal(t, models.KindResults, f.eng.Scene().Kind)

	// Incomplete results keep the user on the scene.
	assert.False(t, f.eng.Next())
	assert.Equal(t, last, f.eng.State().Position)
}

func TestQuizAnswer(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.eng.Jump(2))

	fb, err := f.eng.SubmitQuizOption("quiz", "b")
	require.NoError(t, err)
	assert.Equal(t, -5, fb.Delta)
	assert.True(t, fb.Correct)

	st := f.eng.State()
	assert.Equal(t, 15, st.ResourceLevel)
	assert.Equal(t, []string{"quiz"}, st.Completed.Sorted())

	_, err = f.eng.SubmitQuizOption("quiz", "a")
	assert.True(t, errors.Is(err, ErrAlreadyAnswered))
	assert.Equal(t, 15, f.eng.State().ResourceLevel)

	v := f.eng.Visit()
	assert.True(t, v.Answered)
	assert.Equal(t, "b", v.SelectedOption)
	require.NotNil(t, v.Feedback)
	assert.Equal(t, fb, *v.Feedback)

	f.rec.mu.Lock()
	assert.Equal(t, []Feedback{fb}, f.rec.feedbacks)
	f.rec.mu.Unlock()
}

func TestQuizAnswerClampsAtZero(t *testing.T) {
	f := newFixture(t)
	f.setLevel(3)
	require.True(t, f.eng.Jump(2))

	_, err := f.eng.SubmitQuizOption("quiz", "b")
	require.NoError(t, err)
	assert.Equal(t, 0, f.eng.State().ResourceLevel)
}

func TestRejectedSubmissions(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.eng.Jump(2))

	_, err := f.eng.SubmitQuizOption("debug", "a")
	assert.True(t, errors.Is(err, ErrSceneMismatch))

	_, err = f.eng.SubmitQuizOption("quiz", "zzz")
	assert.True(t, errors.Is(err, ErrUnknownOption))
	assert.False(t, f.eng.Visit().Answered, "unknown option must not lock the scene")

	_, err = f.eng.SubmitDebugLine("quiz", 1)
	assert.True(t, errors.Is(err, ErrNotBattle))

	require.True(t, f.eng.Jump(1))
	_, err = f.eng.SubmitTerminalCommand("story", "ls")
	assert.True(t, errors.Is(err, ErrNotBattle))

	st := f.eng.State()
	assert.Equal(t, InitialLevel, st.ResourceLevel)
	assert.Empty(t, st.Completed)
}

func TestDebugAnswer(t *testing.T) {
	t.Run("bug line", func(t *testing.T) {
		f := newFixture(t)
		require.True(t, f.eng.Jump(3))

		fb, err := f.eng.SubmitDebugLine("debug", 6)
		require.NoError(t, err)
		assert.Equal(t, -10, fb.Delta)
		assert.True(t, fb.Success)
		assert.Equal(t, 10, f.eng.State().ResourceLevel)
		assert.Equal(t, 6, f.eng.Visit().SelectedLine)
	})

	t.Run("other line", func(t *testing.T) {
		f := newFixture(t)
		require.True(t, f.eng.Jump(3))

		fb, err := f.eng.SubmitDebugLine("debug", 2)
		require.NoError(t, err)
		assert.Equal(t, 20, fb.Delta)
		assert.False(t, fb.Success)
		assert.True(t, f.eng.State().Completed.Has("debug"))

		_, err = f.eng.SubmitDebugLine("debug", 6)
		assert.True(t, errors.Is(err, ErrAlreadyAnswered))
		assert.Equal(t, 40, f.eng.State().ResourceLevel)
	})
}

func TestTerminalAnswer(t *testing.T) {
	t.Run("valid command", func(t *testing.T) {
		f := newFixture(t)
		require.True(t, f.eng.Jump(4))

		fb, err := f.eng.SubmitTerminalCommand("term", " kill 9402 ")
		require.NoError(t, err)
		assert.Equal(t, -10, fb.Delta)
		assert.True(t, fb.Success)
	})

	t.Run("invalid command locks the scene", func(t *testing.T) {
		f := newFixture(t)
		require.True(t, f.eng.Jump(4))

		fb, err := f.eng.SubmitTerminalCommand("term", "kill -15 9402")
		require.NoError(t, err)
		assert.Equal(t, 15, fb.Delta)
		assert.False(t, fb.Success)
		assert.True(t, f.eng.State().Completed.Has("term"))

		_, err = f.eng.SubmitTerminalCommand("term", "kill 9402")
		assert.True(t, errors.Is(err, ErrAlreadyAnswered))
		assert.Equal(t, 35, f.eng.State().ResourceLevel)
	})
}

func TestRevisitResetsVisitOnly(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.eng.Jump(2))
	_, err := f.eng.SubmitQuizOption("quiz", "a")
	require.NoError(t, err)
	require.Equal(t, 50, f.eng.State().ResourceLevel)

	require.True(t, f.eng.Prev())
	require.True(t, f.eng.Next())

	v := f.eng.Visit()
	assert.Equal(t, "quiz", v.SceneID)
	assert.False(t, v.Answered)
	assert.Empty(t, v.SelectedOption)
	assert.Nil(t, v.Feedback)

	st := f.eng.State()
	assert.True(t, st.Completed.Has("quiz"))
	assert.Equal(t, 50, st.ResourceLevel)

	// Jumping onto the scene already shown is not a new visit.
	_, err = f.eng.SubmitQuizOption("quiz", "b")
	require.NoError(t, err)
	require.True(t, f.eng.Jump(2))
	assert.True(t, f.eng.Visit().Answered)
}

func TestLeavingUnansweredBattleIsFree(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.eng.Jump(4))
	require.True(t, f.eng.Jump(1))

	st := f.eng.State()
	assert.Equal(t, InitialLevel, st.ResourceLevel)
	assert.False(t, st.Completed.Has("term"))
}

func TestAnswerReachingCapFailsRun(t *testing.T) {
	f := newFixture(t)
	f.setLevel(90)
	require.True(t, f.eng.Jump(2))

	_, err := f.eng.SubmitQuizOption("quiz", "a")
	require.NoError(t, err)

	st := f.eng.State()
	assert.Equal(t, StatusFailed, st.Status)
	assert.Equal(t, MaxLevel, st.ResourceLevel)
	assert.False(t, f.armed())

	assert.False(t, f.eng.Next())
	assert.False(t, f.eng.Prev())
	assert.False(t, f.eng.Jump(0))
	_, err = f.eng.SubmitDebugLine("quiz", 0)
	assert.True(t, errors.Is(err, ErrNotActive))
	assert.Equal(t, 2, f.eng.State().Position)
}

func TestRestart(t *testing.T) {
	f := newFixture(t)
	first := f.eng.State().RunID

	require.True(t, f.eng.Jump(2))
	_, err := f.eng.SubmitQuizOption("quiz", "a")
	require.NoError(t, err)
	f.setLevel(74)
	f.tick(t, 75)
	f.setLevel(89)
	f.tick(t, 90)
	f.setLevel(99)
	f.tick(t, MaxLevel)
	f.clock.Advance(DefaultInterval)
	require.Eventually(t, func() bool {
		return f.eng.State().Status == StatusFailed
	}, time.Second, time.Millisecond)

	f.eng.Restart()
	st := f.eng.State()
	assert.Equal(t, 0, st.Position)
	assert.Equal(t, InitialLevel, st.ResourceLevel)
	assert.Equal(t, StatusActive, st.Status)
	assert.Empty(t, st.Completed)
	assert.NotEqual(t, first, st.RunID)
	assert.Equal(t, "intro", f.eng.Visit().SceneID)
	assert.False(t, f.armed())

	// 25 and 50 from the answer, 75 and 90 from the ticks, then 25 and 50
	// again in the new run.
	require.True(t, f.eng.Jump(2))
	_, err = f.eng.SubmitQuizOption("quiz", "a")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return len(f.rec.notifications(NotifyThreshold)) == 6
	}, time.Second, time.Millisecond)
}

func TestNextOnResolvedResultsRestarts(t *testing.T) {
	f := newFixture(t)

	answers := []func() error{
		func() error { _, err := f.eng.SubmitQuizOption("quiz", "b"); return err },
		func() error { _, err := f.eng.SubmitDebugLine("debug", 6); return err },
		func() error { _, err := f.eng.SubmitTerminalCommand("term", "kill 9402"); return err },
	}
	for i, answer := range answers {
		require.True(t, f.eng.Jump(2+i))
		require.NoError(t, answer())
	}
	require.True(t, f.eng.Next())
	require.Equal(t, models.KindResults, f.eng.Scene().Kind)

	report := f.eng.Report()
	require.True(t, report.Complete())
	require.NotNil(t, report.Rating)
	assert.Equal(t, TierA, report.Rating.Tier)
	assert.Equal(t, 0, report.Level)

	assert.True(t, f.eng.Next())
	st := f.eng.State()
	assert.Equal(t, 0, st.Position)
	assert.Empty(t, st.Completed)
}

func TestDecayTimer(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.armed(), "idle on the first scene")

	require.True(t, f.eng.Next())
	assert.True(t, f.armed())
	f.tick(t, 21)
	f.tick(t, 22)

	require.True(t, f.eng.Prev())
	assert.False(t, f.armed(), "idle again on the first scene")
	f.clock.Advance(10 * DefaultInterval)
	assert.Equal(t, 22, f.eng.State().ResourceLevel)

	require.True(t, f.eng.Jump(f.eng.Script().Len() - 1))
	assert.False(t, f.armed(), "idle on results")

	require.True(t, f.eng.Jump(3))
	assert.True(t, f.armed())
	f.tick(t, 23)

	f.eng.Close()
	assert.False(t, f.armed())
	f.clock.Advance(DefaultInterval)
	assert.Equal(t, 23, f.eng.State().ResourceLevel)
}

func TestDecayFailsRunAtCap(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.eng.Next())
	f.setLevel(98)

	f.tick(t, 99)
	assert.Equal(t, StatusActive, f.eng.State().Status)

	f.tick(t, MaxLevel)
	assert.Equal(t, StatusActive, f.eng.State().Status, "the tick reaching the cap does not fail yet")
	assert.True(t, f.armed())

	f.clock.Advance(DefaultInterval)
	require.Eventually(t, func() bool {
		return f.eng.State().Status == StatusFailed
	}, time.Second, time.Millisecond)
	assert.False(t, f.armed())

	f.clock.Advance(DefaultInterval)
	assert.Equal(t, MaxLevel, f.eng.State().ResourceLevel)
	assert.Equal(t, StatusFailed, f.eng.State().Status)
}

func TestAnswerAtCapSavesRun(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.eng.Jump(2))
	f.setLevel(99)

	f.tick(t, MaxLevel)
	require.Equal(t, StatusActive, f.eng.State().Status)

	fb, err := f.eng.SubmitQuizOption("quiz", "b")
	require.NoError(t, err)
	assert.Equal(t, -5, fb.Delta)

	st := f.eng.State()
	assert.Equal(t, StatusActive, st.Status)
	assert.Equal(t, 95, st.ResourceLevel)
	assert.True(t, st.Completed.Has("quiz"))

	f.tick(t, 96)
	assert.Equal(t, StatusActive, f.eng.State().Status)
}

func TestNotifications(t *testing.T) {
	f := newFixture(t)

	require.True(t, f.eng.Next())
	require.True(t, f.eng.Prev())
	require.True(t, f.eng.Next())
	assert.Len(t, f.rec.notifications(NotifyStart), 1, "start warning is one-shot")

	f.setLevel(24)
	f.tick(t, 25)
	require.Eventually(t, func() bool {
		return len(f.rec.notifications(NotifyThreshold)) == 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, 25, f.rec.notifications(NotifyThreshold)[0].Threshold)

	// A quiz answer climbing from 25 to 55 passes 50 only; 25 already fired.
	require.True(t, f.eng.Jump(2))
	_, err := f.eng.SubmitQuizOption("quiz", "a")
	require.NoError(t, err)

	var got []int
	for _, n := range f.rec.notifications(NotifyThreshold) {
		got = append(got, n.Threshold)
	}
	assert.Equal(t, []int{25, 50}, got)
}

func TestStateSnapshotsAreDetached(t *testing.T) {
	f := newFixture(t)
	st := f.eng.State()
	st.Completed.Add("quiz")
	st.Position = 4

	assert.Empty(t, f.eng.State().Completed)
	assert.Equal(t, 0, f.eng.State().Position)
}
