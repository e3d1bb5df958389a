package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tatianab/clean-kitchen/internal/engine"
)

type stateMsg engine.State

type notifyMsg engine.Notification

type feedbackMsg engine.Feedback

type dismissToastMsg struct{ id int }

// Events carries engine callbacks into the bubbletea loop. Engine
// callbacks may run on the decay goroutine or inside Update, so pushes
// never block; a full buffer drops the event and the next render still
// reads the engine directly.
type Events struct {
	ch chan tea.Msg
}

func NewEvents(size int) *Events {
	return &Events{ch: make(chan tea.Msg, size)}
}

// Listener returns the engine.Listener that feeds this channel.
func (e *Events) Listener() engine.Listener {
	return engine.ListenerFuncs{
		StateChange:    func(s engine.State) { e.push(stateMsg(s)) },
		Notify:         func(n engine.Notification) { e.push(notifyMsg(n)) },
		BattleFeedback: func(f engine.Feedback) { e.push(feedbackMsg(f)) },
	}
}

func (e *Events) push(msg tea.Msg) {
	select {
	case e.ch <- msg:
	default:
	}
}

// wait blocks for the next engine event. Update re-issues it after every
// event so exactly one wait is pending.
func (e *Events) wait() tea.Cmd {
	return func() tea.Msg {
		return <-e.ch
	}
}
