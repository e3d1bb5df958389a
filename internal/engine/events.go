package engine

// NotifyKind classifies advisory notifications.
type NotifyKind string

const (
	NotifyStart     NotifyKind = "START"
	NotifyThreshold NotifyKind = "THRESHOLD"
)

// Notification is an advisory message for a toast. Threshold is set for
// NotifyThreshold only.
type Notification struct {
	Kind      NotifyKind
	Message   string
	Threshold int
}

// Feedback describes a scored answer.
type Feedback struct {
	SceneID string
	Delta   int
	Success bool
	// Correct mirrors the quiz option flag; for other battles it equals
	// Success.
	Correct bool
	Message string
}

// Listener receives engine events. Callbacks run on the goroutine that
// caused the change, never while the engine is locked, so a listener may
// call back into the engine.
type Listener interface {
	OnStateChange(State)
	OnNotify(Notification)
	OnBattleFeedback(Feedback)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	StateChange    func(State)
	Notify         func(Notification)
	BattleFeedback func(Feedback)
}

func (l ListenerFuncs) OnStateChange(s State) {
	if l.StateChange != nil {
		l.StateChange(s)
	}
}

func (l ListenerFuncs) OnNotify(n Notification) {
	if l.Notify != nil {
		l.Notify(n)
	}
}

func (l ListenerFuncs) OnBattleFeedback(f Feedback) {
	if l.BattleFeedback != nil {
		l.BattleFeedback(f)
	}
}

// outbox collects events raised under the engine lock so they can be
// delivered after it is released.
type outbox struct {
	state     *State
	notes     []Notification
	feedbacks []Feedback
}

func (o *outbox) stateChanged(s State) {
	snap := s.snapshot()
	o.state = &snap
}

func (o *outbox) notify(n Notification) { o.notes = append(o.notes, n) }

func (o *outbox) feedback(f Feedback) { o.feedbacks = append(o.feedbacks, f) }

func (o *outbox) flush(l Listener) {
	if l == nil {
		return
	}
	for _, f := range o.feedbacks {
		l.OnBattleFeedback(f)
	}
	if o.state != nil {
		l.OnStateChange(*o.state)
	}
	for _, n := range o.notes {
		l.OnNotify(n)
	}
}
