package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tatianab/clean-kitchen/internal/engine"
	"github.com/tatianab/clean-kitchen/internal/models"
)

func (m model) View() string {
	if m.modal != modalNone {
		return m.renderModal()
	}

	parts := []string{
		m.renderHeader(),
		m.renderTimeline(),
		"",
		m.viewport.View(),
	}
	for _, t := range m.toasts {
		parts = append(parts, toastStyle.Render(t.text))
	}
	parts = append(parts, helpStyle.Render(m.help.View(m.keys)))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m model) contentWidth() int {
	if m.width <= 4 {
		return 76
	}
	return m.width - 4
}

func (m model) renderHeader() string {
	st := m.eng.State()
	script := m.eng.Script()

	bar := m.meter
	bar.FullColor = meterColor(st.ResourceLevel)
	meter := fmt.Sprintf("TECH DEBT %s %3d%%", bar.ViewAs(float64(st.ResourceLevel)/engine.MaxLevel), st.ResourceLevel)
	if !st.Active() {
		meter += alertStyle.Render("  SYSTEM FAILURE")
	}

	return fmt.Sprintf("%s  %s  %s",
		titleStyle.Render(script.Title),
		helpStyle.Render(fmt.Sprintf("%d/%d", st.Position+1, script.Len())),
		meter,
	)
}

// renderTimeline draws one mark per scene: battles are squares, filled once
// completed; the current scene is highlighted.
func (m model) renderTimeline() string {
	st := m.eng.State()
	script := m.eng.Script()

	var b strings.Builder
	for i := range script.Len() {
		scene := script.At(i)
		mark, style := "·", timelineStyle
		if scene.IsBattle() {
			mark = "□"
			if st.Completed.Has(scene.ID) {
				mark, style = "■", doneStyle
			}
		}
		if i == st.Position {
			style = currentStyle
			if !scene.IsBattle() {
				mark = "●"
			}
		}
		b.WriteString(style.Render(mark))
	}
	return b.String()
}

func (m model) renderScene() string {
	scene := m.eng.Scene()
	width := m.contentWidth()

	var b strings.Builder
	b.WriteString(titleStyle.Render(scene.Title))
	if scene.Subtitle != "" {
		b.WriteString("\n" + subtitleStyle.Render(scene.Subtitle))
	}
	b.WriteString("\n\n")

	if scene.Content != "" {
		text := scene.Content
		if scene.Speaker != "" {
			text = speakerStyle.Render(scene.Speaker+":") + " " + text
		}
		b.WriteString(textStyle.Width(width).Render(text) + "\n\n")
	}

	switch {
	case scene.Battle != nil:
		b.WriteString(m.renderBattle(scene, width))
	case scene.Kind == models.KindResults:
		b.WriteString(m.renderResults(width))
	default:
		if scene.CodeContext != "" {
			b.WriteString(renderCode(scene, -1, nil) + "\n\n")
		}
		if scene.Kind == models.KindIntro {
			b.WriteString(helpStyle.Render("Press → to begin."))
		}
	}
	return b.String()
}

func (m model) renderBattle(scene *models.Scene, width int) string {
	visit := m.eng.Visit()
	st := m.eng.State()

	var b strings.Builder
	if scene.Question != "" {
		b.WriteString(textStyle.Width(width).Bold(true).Render(scene.Question) + "\n\n")
	}

	switch battle := scene.Battle.(type) {
	case *models.QuizBattle:
		if scene.CodeContext != "" {
			b.WriteString(renderCode(scene, -1, nil) + "\n\n")
		}
		for i, o := range battle.Options {
			style := optionStyle
			if visit.SelectedOption == o.ID {
				style = selectedStyle
			}
			b.WriteString(style.Width(width).Render(fmt.Sprintf("[%d] %s", i+1, o.Label)) + "\n")
			if o.Code != "" {
				b.WriteString("    " + strings.Join(highlightLines(strings.Split(o.Code, "\n"), scene.Language), "\n    ") + "\n")
			}
		}
		if !visit.Answered {
			b.WriteString("\n" + helpStyle.Render(fmt.Sprintf("Press 1-%d to answer.", len(battle.Options))))
		}

	case *models.DebugBattle:
		cursor := m.cursor
		var mark func(int) string
		if visit.Answered {
			cursor = -1
			mark = func(i int) string {
				switch {
				case i == battle.BugLine:
					return doneStyle.Render("✓ ")
				case i == visit.SelectedLine:
					return alertStyle.Render("✗ ")
				}
				return "  "
			}
		}
		b.WriteString(renderCode(scene, cursor, mark))
		if !visit.Answered {
			b.WriteString("\n\n" + helpStyle.Render("↑/↓ to move, enter to flag the broken line."))
		}

	case *models.TerminalBattle:
		if battle.Context != "" {
			b.WriteString(terminalStyle.Render(battle.Context) + "\n")
		}
		if visit.Answered {
			b.WriteString(terminalStyle.Render("$ "+visit.Command) + "\n")
		} else if st.Active() {
			b.WriteString(m.input.View() + "\n\n" + helpStyle.Render("Type a command and press enter."))
		}
	}

	if visit.Feedback != nil {
		b.WriteString("\n\n" + renderFeedback(*visit.Feedback, width))
	} else if st.Completed.Has(scene.ID) {
		b.WriteString("\n\n" + helpStyle.Render("Resolved earlier this run. Answering again scores again."))
	}
	return b.String()
}

func renderFeedback(fb engine.Feedback, width int) string {
	style := failureStyle
	if fb.Success {
		style = successStyle
	}
	return style.Width(min(width, 72)).Render(fmt.Sprintf("%s\n\nTech debt %+d%%", fb.Message, fb.Delta))
}

// renderCode prints the scene's code with a gutter. cursor marks a line
// with an arrow; mark, when set, replaces the arrow column.
func renderCode(scene *models.Scene, cursor int, mark func(int) string) string {
	lines := highlightLines(scene.CodeLines(), scene.Language)
	out := make([]string, len(lines))
	for i, line := range lines {
		prefix := "  "
		switch {
		case mark != nil:
			prefix = mark(i)
		case i == cursor:
			prefix = cursorStyle.Render("▶ ")
		}
		out[i] = prefix + gutterStyle.Render(fmt.Sprintf("%3d │ ", i+1)) + line
	}
	return strings.Join(out, "\n")
}

func (m model) renderResults(width int) string {
	report := m.eng.Report()

	var b strings.Builder
	if !report.Complete() {
		b.WriteString(failureStyle.Width(min(width, 72)).Render(
			fmt.Sprintf("INCOMPLETE: %d battle(s) skipped. No rating until every battle is resolved.", len(report.Missing))))
		b.WriteString("\n\n")
		for i, missing := range report.Missing {
			label := fmt.Sprintf("[%d] %s", i+1, missing.Title)
			if i >= 9 {
				label = "    " + missing.Title
			}
			b.WriteString(optionStyle.Render(label) + "\n")
		}
		b.WriteString("\n" + helpStyle.Render("Press a number to jump back to a battle."))
		return b.String()
	}

	r := report.Rating
	b.WriteString(lipgloss.NewStyle().
		Foreground(lipgloss.Color(meterColor(report.Level))).
		Bold(true).
		Render(fmt.Sprintf("TIER %s  %s", r.Tier, r.Title)))
	b.WriteString("\n\n" + textStyle.Width(width).Render(r.Message))
	b.WriteString(fmt.Sprintf("\n\nFinal tech debt: %d%%", report.Level))
	b.WriteString("\n\n" + helpStyle.Render("Press r or → to play again."))
	return b.String()
}

func (m model) renderModal() string {
	var title, body, actions, color string
	switch m.modal {
	case modalGameOver:
		color = colorCritical
		title = "SYSTEM FAILURE"
		body = fmt.Sprintf("ENTROPY CRITICAL (%d%%)\n\n%q", engine.MaxLevel, m.quip)
		actions = "[enter] Reboot System   [q] Quit"
	case modalExit:
		color = colorGold
		title = "UNSAVED CONTEXT DETECTED"
		body = m.quip + "\n\n" + helpStyle.Render("// Entropy will continue to rise while you are gone")
		actions = "[s] Git Stash & Stay   [f] Force Quit"
	}

	box := modalStyle.
		BorderForeground(lipgloss.Color(color)).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).Render(title),
			"",
			body,
			"",
			helpStyle.Render(actions),
		))
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
