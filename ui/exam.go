package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dgnsrekt/spelldrill/internal/exam"
)

// examModel is the exam screen: a prompt, an answer field and a feedback
// line.
type examModel struct {
	input textinput.Model
}

func newExamModel() examModel {
	ti := textinput.New()
	ti.Placeholder = "Spell the word"
	ti.CharLimit = 64
	ti.Width = 40
	return examModel{input: ti}
}

func (m *model) updateExam(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.machine.State() == exam.StateComplete {
		return m.updateComplete(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			answer := m.exam.input.Value()
			m.exam.input.SetValue("")
			return m, m.runAction(m.machine.Submit(answer))

		case "ctrl+r":
			return m, m.runAction(m.machine.Replay())

		case "esc":
			m.exam.input.SetValue("")
			return m, m.runAction(m.machine.Exit())
		}
	}

	var cmd tea.Cmd
	m.exam.input, cmd = m.exam.input.Update(msg)
	return m, cmd
}

func (m *model) updateComplete(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter", "r":
			m.exam.input.SetValue("")
			action, err := m.machine.Start(m.list.Words())
			if err != nil {
				return m, m.runAction(m.machine.Exit())
			}
			return m, m.runAction(action)

		case "esc", "q":
			return m, m.runAction(m.machine.Exit())
		}
	}
	return m, nil
}

func (m *model) viewExam() string {
	if m.machine.State() == exam.StateComplete {
		return m.viewComplete()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Exam"))
	b.WriteString("\n\n")
	b.WriteString(promptStyle.Render(
		fmt.Sprintf("Word %d of %d", m.machine.Index()+1, m.machine.Total())))
	if n := m.machine.IncorrectCount(); n > 0 {
		b.WriteString("  ")
		b.WriteString(missedStyle.Render(fmt.Sprintf("(%d missed)", n)))
	}
	b.WriteString("\n\n")
	b.WriteString(m.exam.input.View())
	b.WriteString("\n\n")

	if text, kind := m.machine.Feedback(); text != "" {
		var style = infoStyle
		switch kind {
		case exam.FeedbackCorrect:
			style = correctStyle
		case exam.FeedbackIncorrect:
			style = incorrectStyle
		case exam.FeedbackRetry:
			style = retryStyle
		}
		b.WriteString(style.Render(text))
		b.WriteString("\n\n")
	}

	b.WriteString(m.speechStatusBar())
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("enter: submit • ctrl+r: repeat word • esc: back to editing"))
	return b.String()
}

func (m *model) viewComplete() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Exam complete"))
	b.WriteString("\n\n")
	b.WriteString(correctStyle.Render(
		fmt.Sprintf("All %d words spelled correctly. Well done!", m.machine.Total())))
	b.WriteString("\n\n")
	b.WriteString(subtleStyle.Render("enter/r: run again • esc/q: back to editing"))
	return b.String()
}
