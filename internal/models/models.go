package models

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// SceneKind is the role a scene plays in the script.
type SceneKind string

const (
	KindIntro      SceneKind = "INTRO"
	KindNarrative  SceneKind = "NARRATIVE"
	KindBattle     SceneKind = "BATTLE"
	KindRevelation SceneKind = "REVELATION"
	KindEnding     SceneKind = "ENDING"
	KindResults    SceneKind = "RESULTS"
	KindCredits    SceneKind = "CREDITS"
)

func (k SceneKind) valid() bool {
	switch k {
	case KindIntro, KindNarrative, KindBattle, KindRevelation, KindEnding, KindResults, KindCredits:
		return true
	}
	return false
}

// BattleType selects the interaction a battle scene asks for.
type BattleType string

const (
	BattleQuiz     BattleType = "QUIZ"
	BattleDebug    BattleType = "DEBUG"
	BattleTerminal BattleType = "TERMINAL"
)

// Battle is the scored payload of a BATTLE scene. It is one of
// *QuizBattle, *DebugBattle or *TerminalBattle.
type Battle interface {
	Type() BattleType
	battle()
}

// Option is one answer of a quiz battle.
type Option struct {
	ID          string `yaml:"id"`
	Label       string `yaml:"label"`
	Code        string `yaml:"code,omitempty"`
	Correct     bool   `yaml:"correct"`
	Explanation string `yaml:"explanation"`
	DebtImpact  int    `yaml:"debt_impact"`
}

// QuizBattle asks the player to pick one of several options.
type QuizBattle struct {
	Options []Option
}

func (*QuizBattle) Type() BattleType { return BattleQuiz }
func (*QuizBattle) battle()          {}

// Option returns the option with the given id.
func (q *QuizBattle) Option(id string) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// DebugBattle asks the player to point at the broken line of the scene's
// code context. BugLine is zero-based.
type DebugBattle struct {
	BugLine        int
	SuccessMessage string
	FailMessage    string
}

func (*DebugBattle) Type() BattleType { return BattleDebug }
func (*DebugBattle) battle()          {}

// TerminalBattle asks the player to type a shell command.
type TerminalBattle struct {
	ValidCommands  []string
	Context        string // initial terminal output
	SuccessMessage string
	FailMessage    string
}

func (*TerminalBattle) Type() BattleType { return BattleTerminal }
func (*TerminalBattle) battle()          {}

// Accepts reports whether cmd is one of the valid commands. The match is
// exact and case-sensitive; callers trim input first.
func (t *TerminalBattle) Accepts(cmd string) bool {
	for _, c := range t.ValidCommands {
		if c == cmd {
			return true
		}
	}
	return false
}

// Scene is one authored unit of the script. Battle is non-nil exactly when
// Kind is KindBattle.
type Scene struct {
	ID          string
	Kind        SceneKind
	Title       string
	Subtitle    string
	Content     string
	Speaker     string
	Question    string
	CodeContext string
	Language    string // typescript, bash, tree, css...
	Battle      Battle
}

// IsBattle reports whether the scene requires a scored action.
func (s *Scene) IsBattle() bool { return s.Kind == KindBattle }

// CodeLines splits the code context into display lines.
func (s *Scene) CodeLines() []string {
	if s.CodeContext == "" {
		return nil
	}
	return strings.Split(s.CodeContext, "\n")
}

// sceneDoc is the on-disk shape of a scene: one flat record whose
// battle-specific fields are only meaningful for the matching battle_type.
type sceneDoc struct {
	ID          string     `yaml:"id"`
	Type        SceneKind  `yaml:"type"`
	BattleType  BattleType `yaml:"battle_type,omitempty"`
	Title       string     `yaml:"title"`
	Subtitle    string     `yaml:"subtitle,omitempty"`
	Content     string     `yaml:"content,omitempty"`
	Speaker     string     `yaml:"speaker,omitempty"`
	Question    string     `yaml:"question,omitempty"`
	CodeContext string     `yaml:"code_context,omitempty"`
	Language    string     `yaml:"language,omitempty"`

	Options []Option `yaml:"options,omitempty"`

	BugLine *int `yaml:"bug_line,omitempty"`

	ValidCommands   []string `yaml:"valid_commands,omitempty"`
	TerminalContext string   `yaml:"terminal_context,omitempty"`
	SuccessMessage  string   `yaml:"success_message,omitempty"`
	FailMessage     string   `yaml:"fail_message,omitempty"`
}

func (s *Scene) UnmarshalYAML(value *yaml.Node) error {
	var doc sceneDoc
	if err := value.Decode(&doc); err != nil {
		return err
	}

	scene := Scene{
		ID:          doc.ID,
		Kind:        SceneKind(strings.ToUpper(string(doc.Type))),
		Title:       doc.Title,
		Subtitle:    doc.Subtitle,
		Content:     doc.Content,
		Speaker:     doc.Speaker,
		Question:    doc.Question,
		CodeContext: strings.TrimRight(doc.CodeContext, "\n"),
		Language:    doc.Language,
	}
	if !scene.Kind.valid() {
		return fmt.Errorf("scene %q: unknown type %q (line %d)", doc.ID, doc.Type, value.Line)
	}

	if scene.Kind == KindBattle {
		bt := BattleType(strings.ToUpper(string(doc.BattleType)))
		if bt == "" {
			bt = BattleQuiz
		}
		switch bt {
		case BattleQuiz:
			scene.Battle = &QuizBattle{Options: doc.Options}
		case BattleDebug:
			if doc.BugLine == nil {
				return fmt.Errorf("scene %q: debug battle without bug_line (line %d)", doc.ID, value.Line)
			}
			scene.Battle = &DebugBattle{
				BugLine:        *doc.BugLine,
				SuccessMessage: doc.SuccessMessage,
				FailMessage:    doc.FailMessage,
			}
		case BattleTerminal:
			scene.Battle = &TerminalBattle{
				ValidCommands:  doc.ValidCommands,
				Context:        strings.TrimRight(doc.TerminalContext, "\n"),
				SuccessMessage: doc.SuccessMessage,
				FailMessage:    doc.FailMessage,
			}
		default:
			return fmt.Errorf("scene %q: unknown battle_type %q (line %d)", doc.ID, doc.BattleType, value.Line)
		}
	}

	*s = scene
	return nil
}

func (s Scene) MarshalYAML() (interface{}, error) {
	doc := sceneDoc{
		ID:          s.ID,
		Type:        s.Kind,
		Title:       s.Title,
		Subtitle:    s.Subtitle,
		Content:     s.Content,
		Speaker:     s.Speaker,
		Question:    s.Question,
		CodeContext: s.CodeContext,
		Language:    s.Language,
	}
	switch b := s.Battle.(type) {
	case *QuizBattle:
		doc.BattleType = BattleQuiz
		doc.Options = b.Options
	case *DebugBattle:
		doc.BattleType = BattleDebug
		line := b.BugLine
		doc.BugLine = &line
		doc.SuccessMessage = b.SuccessMessage
		doc.FailMessage = b.FailMessage
	case *TerminalBattle:
		doc.BattleType = BattleTerminal
		doc.ValidCommands = b.ValidCommands
		doc.TerminalContext = b.Context
		doc.SuccessMessage = b.SuccessMessage
		doc.FailMessage = b.FailMessage
	}
	return doc, nil
}

// Script is the ordered, read-only list of scenes a session plays through.
type Script struct {
	Title  string  `yaml:"title"`
	Scenes []Scene `yaml:"scenes"`
}

// Len returns the number of scenes.
func (s *Script) Len() int { return len(s.Scenes) }

// At returns the scene at index i. It panics when i is out of range.
func (s *Script) At(i int) *Scene { return &s.Scenes[i] }

// Index returns the position of the scene with the given id, or -1.
func (s *Script) Index(id string) int {
	for i := range s.Scenes {
		if s.Scenes[i].ID == id {
			return i
		}
	}
	return -1
}

// Battles returns the indexes of all battle scenes in script order.
func (s *Script) Battles() []int {
	var out []int
	for i := range s.Scenes {
		if s.Scenes[i].IsBattle() {
			out = append(out, i)
		}
	}
	return out
}
