package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/sahilm/fuzzy"

	"github.com/dgnsrekt/spelldrill/internal/speech"
	"github.com/dgnsrekt/spelldrill/internal/store"
)

// statusMessageTimeout is how long transient inline messages linger.
const statusMessageTimeout = 2 * time.Second

// statusTimeoutMsg clears a transient status message. The sequence number
// drops timeouts that a newer message has superseded.
type statusTimeoutMsg int

// editModel is the word-list editing screen.
type editModel struct {
	input     textinput.Model
	selected  int
	filtering bool
	filter    string

	status    string
	statusErr bool
	statusSeq int
}

func newEditModel() editModel {
	ti := textinput.New()
	ti.Placeholder = "Enter a word"
	ti.CharLimit = 64
	ti.Width = 40
	return editModel{input: ti}
}

func (m *model) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusTimeoutMsg:
		if int(msg) == m.edit.statusSeq {
			m.edit.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if m.edit.filtering {
				m.edit.filtering = false
				m.edit.filter = m.edit.input.Value()
				m.edit.input.SetValue("")
				m.edit.input.Placeholder = "Enter a word"
				return m, nil
			}
			return m, m.addWord()

		case "ctrl+f":
			m.edit.filtering = !m.edit.filtering
			m.edit.filter = ""
			m.edit.input.SetValue("")
			if m.edit.filtering {
				m.edit.input.Placeholder = "Filter words"
			} else {
				m.edit.input.Placeholder = "Enter a word"
			}
			return m, nil

		case "esc":
			if m.edit.filtering || m.edit.filter != "" {
				m.edit.filtering = false
				m.edit.filter = ""
				m.edit.input.SetValue("")
				m.edit.input.Placeholder = "Enter a word"
				return m, nil
			}
			m.selector.Cancel()
			return m, tea.Quit

		case "up":
			if m.edit.selected > 0 {
				m.edit.selected--
			}
			return m, nil

		case "down":
			if m.edit.selected < len(m.visibleWords())-1 {
				m.edit.selected++
			}
			return m, nil

		case "ctrl+x":
			return m, m.removeSelected()

		case "ctrl+y":
			return m, m.copyShareLink()

		case "ctrl+e":
			return m, m.startExam()

		case "ctrl+p":
			m.cycleProvider()
			return m, m.saveSettings()

		case "ctrl+g":
			m.cycleAccent()
			return m, m.saveSettings()

		case "ctrl+o":
			if m.settings.Speed == speech.SpeedNormal {
				m.settings.Speed = speech.SpeedSlow
			} else {
				m.settings.Speed = speech.SpeedNormal
			}
			store.SaveSettings(m.store, m.settings)
			return m, nil

		case "ctrl+t":
			m.cycleVoice()
			return m, m.saveSettings()

		case "ctrl+d":
			m.settings = store.DefaultSettings()
			return m, tea.Batch(m.saveSettings(), m.setStatus("Speech settings reset", false))
		}
	}

	var cmd tea.Cmd
	m.edit.input, cmd = m.edit.input.Update(msg)
	if m.edit.filtering {
		m.edit.filter = m.edit.input.Value()
		m.edit.selected = 0
	}
	return m, cmd
}

// addWord validates and appends the typed word, showing a transient message
// on rejection.
func (m *model) addWord() tea.Cmd {
	if err := m.list.Add(m.edit.input.Value()); err != nil {
		return m.setStatus(err.Error(), true)
	}
	m.edit.input.SetValue("")
	return m.setStatus("Word added!", false)
}

func (m *model) removeSelected() tea.Cmd {
	visible := m.visibleWords()
	if len(visible) == 0 {
		return nil
	}
	if m.edit.selected >= len(visible) {
		m.edit.selected = len(visible) - 1
	}
	word := visible[m.edit.selected]
	for i, w := range m.list.Words() {
		if w == word {
			m.list.Remove(i)
			break
		}
	}
	if m.edit.selected >= len(m.visibleWords()) && m.edit.selected > 0 {
		m.edit.selected--
	}
	return m.setStatus(fmt.Sprintf("Removed %q", word), false)
}

func (m *model) copyShareLink() tea.Cmd {
	if m.list.Len() == 0 {
		return m.setStatus("Nothing to share yet", true)
	}
	link := store.ShareLink(m.cfg.ShareBaseURL, m.list.Words())
	if err := clipboard.WriteAll(link); err != nil {
		return m.setStatus("Could not copy share link", true)
	}
	return m.setStatus("Share link copied!", false)
}

func (m *model) startExam() tea.Cmd {
	action, err := m.machine.Start(m.list.Words())
	if err != nil {
		return m.setStatus("Please add some words first.", true)
	}
	m.exam.input.SetValue("")
	return tea.Batch(m.exam.input.Focus(), m.runAction(action))
}

func (m *model) setStatus(text string, isErr bool) tea.Cmd {
	m.edit.status = text
	m.edit.statusErr = isErr
	m.edit.statusSeq++
	seq := m.edit.statusSeq
	return tea.Tick(statusMessageTimeout, func(time.Time) tea.Msg {
		return statusTimeoutMsg(seq)
	})
}

// visibleWords applies the fuzzy filter to the list.
func (m *model) visibleWords() []string {
	all := m.list.Words()
	if m.edit.filter == "" {
		return all
	}
	matches := fuzzy.Find(m.edit.filter, all)
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		out = append(out, all[match.Index])
	}
	return out
}

func (m *model) cycleProvider() {
	switch m.settings.Provider {
	case speech.KindNative:
		m.settings.Provider = speech.KindLocal
	case speech.KindLocal:
		if m.cfg.RemoteAPIKey != "" {
			m.settings.Provider = speech.KindRemote
		} else {
			m.settings.Provider = speech.KindNative
		}
	default:
		m.settings.Provider = speech.KindNative
	}
}

func (m *model) cycleAccent() {
	switch m.settings.Accent {
	case speech.AccentUS:
		m.settings.Accent = speech.AccentUK
	case speech.AccentUK:
		m.settings.Accent = speech.AccentTW
	default:
		m.settings.Accent = speech.AccentUS
	}
	// Keep the per-backend voice selections coherent with the accent.
	if v := speech.LocalVoiceForAccent(m.settings.Accent); v != "" {
		m.settings.LocalVoice = v
	}
	m.settings.RemoteVoice = speech.RemoteVoiceForAccent(m.settings.Accent)
}

func (m *model) cycleVoice() {
	switch m.settings.Provider {
	case speech.KindLocal:
		voices := speech.LocalVoicesForAccent(m.settings.Accent)
		m.settings.LocalVoice = nextVoice(voices, m.settings.LocalVoice)
	case speech.KindRemote:
		m.settings.RemoteVoice = nextVoice(speech.RemoteVoices(), m.settings.RemoteVoice)
	}
}

func nextVoice(voices []speech.Voice, current string) string {
	if len(voices) == 0 {
		return current
	}
	for i, v := range voices {
		if v.ID == current {
			return voices[(i+1)%len(voices)].ID
		}
	}
	return voices[0].ID
}

func (m *model) viewEdit() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Spelling Practice"))
	b.WriteString("\n\n")
	b.WriteString(m.edit.input.View())
	b.WriteString("\n\n")

	if m.edit.status != "" {
		style := infoStyle
		if m.edit.statusErr {
			style = incorrectStyle
		}
		b.WriteString(style.Render(m.edit.status))
		b.WriteString("\n\n")
	}

	visible := m.visibleWords()
	if len(visible) == 0 {
		if m.edit.filter != "" {
			b.WriteString(subtleStyle.Render("No words match the filter."))
		} else {
			b.WriteString(subtleStyle.Render("No words yet. Type one and press enter."))
		}
		b.WriteString("\n")
	}
	for i, w := range visible {
		cursor := "  "
		line := w
		if i == m.edit.selected {
			cursor = selectedStyle.Render("> ")
			line = selectedStyle.Render(w)
		}
		b.WriteString(cursor + line + "\n")
	}

	b.WriteString("\n")
	if m.providerState == speech.SelectorInitializing && m.loadProgress > 0 {
		b.WriteString(subtleStyle.Render("Downloading voice model"))
		b.WriteString("\n")
		b.WriteString(m.download.ViewAs(m.loadProgress))
		b.WriteString("\n\n")
	}
	b.WriteString(m.speechStatusBar())
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(
		"enter: add • ↑/↓: select • ctrl+x: delete • ctrl+f: filter • ctrl+y: copy link\n" +
			"ctrl+p: provider • ctrl+g: accent • ctrl+o: speed • ctrl+t: voice • ctrl+d: reset • ctrl+e: start exam • ctrl+c: quit"))
	return b.String()
}

// speechStatusBar summarizes the speech configuration and selector state.
func (m *model) speechStatusBar() string {
	var state string
	switch m.providerState {
	case speech.SelectorInitializing:
		if m.loadProgress > 0 && m.loadProgress < 1 {
			state = fmt.Sprintf("downloading voice… %d%%", int(m.loadProgress*100))
		} else {
			state = "initializing…"
		}
	case speech.SelectorFallback:
		state = fmt.Sprintf("fallback → %s", speech.KindNative)
	case speech.SelectorReady:
		state = "ready"
	default:
		state = "idle"
	}

	voice := m.settings.VoiceFor(m.settings.Provider)
	if voice == "" {
		voice = "host default"
	}
	bar := fmt.Sprintf(" speech: %s (%s) • accent: %s • speed: %s • voice: %s ",
		m.settings.Provider, state, m.settings.Accent, m.settings.Speed, voice)

	width := m.width
	if width <= 0 {
		width = 80
	}
	bar = truncate.StringWithTail(bar, uint(width), "…")
	if pad := width - runewidth.StringWidth(bar); pad > 0 {
		bar += strings.Repeat(" ", pad)
	}
	return statusBarStyle.Render(bar)
}
