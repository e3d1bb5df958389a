package engine

import (
	"sort"

	"github.com/google/uuid"
)

const (
	// InitialLevel is the resource level every run starts with.
	InitialLevel = 20
	// MaxLevel is the resource level at which the run fails.
	MaxLevel = 100
)

// Status is the lifecycle state of a run. There is no won status: reaching
// a complete results scene is what the presenter calls a victory.
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusFailed Status = "FAILED"
)

// IDSet is a set of scene ids.
type IDSet map[string]struct{}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Add(id string) { s[id] = struct{}{} }

// Sorted returns the members in lexical order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s IDSet) clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// State is one playthrough. Values handed out by Engine are snapshots and
// safe to keep.
type State struct {
	RunID         uuid.UUID
	Position      int
	ResourceLevel int
	Status        Status
	Completed     IDSet
}

func newState() State {
	return State{
		RunID:         uuid.New(),
		Position:      0,
		ResourceLevel: InitialLevel,
		Status:        StatusActive,
		Completed:     IDSet{},
	}
}

func (s State) snapshot() State {
	s.Completed = s.Completed.clone()
	return s
}

// Active reports whether the run still accepts actions.
func (s State) Active() bool { return s.Status == StatusActive }

func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// Visit is the interaction state of the scene currently on screen. It is
// discarded whenever the active scene changes.
type Visit struct {
	SceneID        string
	Answered       bool
	SelectedOption string
	SelectedLine   int // -1 when no line was picked
	Command        string
	Feedback       *Feedback
}

func newVisit(sceneID string) Visit {
	return Visit{SceneID: sceneID, SelectedLine: -1}
}
