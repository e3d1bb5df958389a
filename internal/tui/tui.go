package tui

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/tatianab/clean-kitchen/internal/engine"
	"github.com/tatianab/clean-kitchen/internal/models"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalGameOver
	modalExit
)

// header, timeline, spacer, toasts and help
const chromeHeight = 8

const maxToasts = 3

var devJokes = []string{
	"Are you sure? You have uncommitted changes in your soul.",
	"Leaving now triggers a NullReferenceException in your career path.",
	"Warning: This action equates to deploying on a Friday.",
	"You're just going to leave that dangling pointer?",
	"Abort? That's a SIGKILL to my heart, dev.",
	"Documentation says: 'Users who finish the game write 10x cleaner code.'",
}

var gameOverJokes = []string{
	"Stack Overflow is down. You are on your own.",
	"Error: Success is undefined. ReferenceError: Hope not found.",
	"Your code is so spaghetti, Mario is trying to eat it.",
	"A bug in the code is worth two in the documentation.",
	"It works on my machine... but not here.",
	"You broke production on a Friday. Security is escorting you out.",
	"Critical Process Died. Have you tried turning it off and on again?",
	"418 I'm a teapot. (And your architecture is a disaster)",
	"Merge Conflict: Your Reality vs The Compiler.",
}

// Options tunes the presenter.
type Options struct {
	ToastDuration time.Duration
}

type toast struct {
	id   int
	text string
}

type model struct {
	eng    *engine.Engine
	events *Events
	keys   KeyMap

	help     help.Model
	meter    progress.Model
	input    textinput.Model
	viewport viewport.Model

	toastTTL  time.Duration
	toasts    []toast
	nextToast int

	modal     modalKind
	quip      string
	failedRun uuid.UUID
	pick      func(n int) int

	// visitKey identifies the run and position the per-scene widgets were
	// last reset for.
	visitKey string
	cursor   int

	width  int
	height int
}

func NewModel(eng *engine.Engine, events *Events, opts Options) model {
	ti := textinput.New()
	ti.Prompt = "$ "
	ti.Placeholder = "type a command..."
	ti.CharLimit = 156
	ti.Width = 40

	if opts.ToastDuration <= 0 {
		opts.ToastDuration = 5 * time.Second
	}

	m := model{
		eng:    eng,
		events: events,
		keys:   DefaultKeyMap,
		help:   help.New(),
		meter: progress.New(
			progress.WithSolidFill(colorSafe),
			progress.WithoutPercentage(),
			progress.WithWidth(30),
		),
		input:    ti,
		viewport: viewport.New(80, 20),
		toastTTL: opts.ToastDuration,
		pick:     rand.IntN,
	}
	m.syncVisit()
	m.refresh()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitEvents())
}

func (m model) waitEvents() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return m.events.wait()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 5)
		m.help.Width = msg.Width

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		cmds = append(cmds, cmd)

	case stateMsg, feedbackMsg:
		cmds = append(cmds, m.waitEvents())

	case notifyMsg:
		cmds = append(cmds, m.addToast(msg.Message), m.waitEvents())

	case dismissToastMsg:
		m.dismissToast(msg.id)

	default:
		if m.typing() {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.syncVisit()
	m.syncModal()
	m.refresh()
	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if key.Matches(msg, m.keys.Abort) {
		return m, tea.Quit
	}

	switch m.modal {
	case modalExit:
		switch msg.String() {
		case "f", "q", "y":
			return m, tea.Quit
		case "s", "n", "esc", "enter":
			m.modal = modalNone
		}
		return m, nil
	case modalGameOver:
		switch {
		case key.Matches(msg, m.keys.Submit), key.Matches(msg, m.keys.Restart):
			m.modal = modalNone
			m.eng.Restart()
		case msg.String() == "q":
			return m, tea.Quit
		}
		return m, nil
	}

	if m.typing() {
		scene := m.eng.Scene()
		switch msg.Type {
		case tea.KeyEnter:
			if strings.TrimSpace(m.input.Value()) == "" {
				return m, nil
			}
			m.eng.SubmitTerminalCommand(scene.ID, m.input.Value())
			m.input.Blur()
			return m, nil
		case tea.KeyEsc:
			m.openExit()
			return m, nil
		case tea.KeyPgDown:
			m.eng.Next()
			return m, nil
		case tea.KeyPgUp:
			m.eng.Prev()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.openExit()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Next):
		m.eng.Next()
	case key.Matches(msg, m.keys.Prev):
		m.eng.Prev()
	case key.Matches(msg, m.keys.Scroll):
		half := max(m.viewport.Height/2, 1)
		if msg.String() == "ctrl+u" {
			half = -half
		}
		m.viewport.SetYOffset(m.viewport.YOffset + half)
	case key.Matches(msg, m.keys.Restart):
		if m.eng.Scene().Kind == models.KindResults {
			m.eng.Restart()
		}
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Submit):
		m.submitLine()
	case key.Matches(msg, m.keys.Pick):
		if i, ok := pickIndex(msg.String()); ok {
			m.choose(i)
		}
	}
	return m, nil
}

// typing reports whether keystrokes belong to the terminal prompt.
func (m model) typing() bool {
	if m.modal != modalNone || !m.eng.State().Active() {
		return false
	}
	if _, ok := m.eng.Scene().Battle.(*models.TerminalBattle); !ok {
		return false
	}
	return !m.eng.Visit().Answered
}

func (m *model) openExit() {
	m.modal = modalExit
	m.quip = devJokes[m.pick(len(devJokes))]
}

func (m *model) moveCursor(delta int) {
	scene := m.eng.Scene()
	if _, ok := scene.Battle.(*models.DebugBattle); !ok || m.eng.Visit().Answered {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), max(len(scene.CodeLines())-1, 0))
}

func (m *model) submitLine() {
	scene := m.eng.Scene()
	if _, ok := scene.Battle.(*models.DebugBattle); ok {
		m.eng.SubmitDebugLine(scene.ID, m.cursor)
	}
}

// choose handles a digit: a quiz option, or a jump from the results list.
func (m *model) choose(i int) {
	scene := m.eng.Scene()
	switch {
	case scene.Kind == models.KindResults:
		report := m.eng.Report()
		if i < len(report.Missing) {
			m.eng.Jump(report.Missing[i].Index)
		}
	case scene.Battle != nil:
		if quiz, ok := scene.Battle.(*models.QuizBattle); ok && i < len(quiz.Options) {
			m.eng.SubmitQuizOption(scene.ID, quiz.Options[i].ID)
		}
	}
}

func (m *model) addToast(text string) tea.Cmd {
	m.nextToast++
	id := m.nextToast
	m.toasts = append(m.toasts, toast{id: id, text: text})
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
	return tea.Tick(m.toastTTL, func(time.Time) tea.Msg {
		return dismissToastMsg{id: id}
	})
}

func (m *model) dismissToast(id int) {
	kept := make([]toast, 0, len(m.toasts))
	for _, t := range m.toasts {
		if t.id != id {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

// syncVisit resets the per-scene widgets when the engine moved.
func (m *model) syncVisit() {
	st := m.eng.State()
	k := fmt.Sprintf("%s:%d", st.RunID, st.Position)
	if k != m.visitKey {
		m.visitKey = k
		m.cursor = 0
		m.input.Reset()
		m.viewport.GotoTop()
	}
	if m.typing() {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

// syncModal opens the game-over modal once per failed run.
func (m *model) syncModal() {
	st := m.eng.State()
	if st.Active() || m.failedRun == st.RunID {
		return
	}
	m.failedRun = st.RunID
	m.modal = modalGameOver
	m.quip = gameOverJokes[m.pick(len(gameOverJokes))]
}

func (m *model) refresh() {
	m.viewport.SetContent(m.renderScene())
}

func Run(eng *engine.Engine, events *Events, opts Options) error {
	p := tea.NewProgram(NewModel(eng, events, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
