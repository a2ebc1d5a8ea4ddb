// Package ui provides the terminal interface: a word-list editor and the
// exam screen, backed by the speech selector and the exam state machine.
package ui

import (
	"math/rand"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/spelldrill/internal/exam"
	"github.com/dgnsrekt/spelldrill/internal/speech"
	"github.com/dgnsrekt/spelldrill/internal/store"
	"github.com/dgnsrekt/spelldrill/internal/words"
)

// Deps are the wired collaborators the UI drives. Construction happens in
// package main so the UI stays testable with fakes.
type Deps struct {
	Store    *store.Store
	List     *words.List
	Selector *speech.Selector
	Settings store.Settings

	// Progress receives fractional model-download progress.
	Progress <-chan float64

	// WordsChanged receives external word-list change notifications. May
	// be nil when watching is unavailable.
	WordsChanged <-chan struct{}
}

// NewProgram returns a new Tea program for the spelling app.
func NewProgram(cfg Config, deps Deps) *tea.Program {
	log.Debug("starting spelldrill",
		"provider", deps.Settings.Provider,
		"accent", deps.Settings.Accent,
		"words", deps.List.Len(),
	)
	m := newModel(cfg, deps)
	// Focus reporting feeds the exam's focus-loss detection.
	return tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())
}

type model struct {
	cfg      Config
	store    *store.Store
	list     *words.List
	selector *speech.Selector
	settings store.Settings
	machine  *exam.Machine

	edit editModel
	exam examModel

	providerState speech.SelectorState
	activeKind    speech.Kind
	loadProgress  float64
	download      progress.Model

	progressCh <-chan float64
	wordsCh    <-chan struct{}

	width  int
	height int
}

func newModel(cfg Config, deps Deps) *model {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &model{
		cfg:           cfg,
		store:         deps.Store,
		list:          deps.List,
		selector:      deps.Selector,
		settings:      deps.Settings,
		machine:       exam.NewMachine(rng),
		edit:          newEditModel(),
		exam:          newExamModel(),
		providerState: speech.SelectorIdle,
		activeKind:    speech.KindNative,
		download:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		progressCh:    deps.Progress,
		wordsCh:       deps.WordsChanged,
	}
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.edit.input.Focus(),
		applyProviderCmd(m.selector, m.settings),
	}
	if m.progressCh != nil {
		cmds = append(cmds, listenProgressCmd(m.progressCh))
	}
	if m.wordsCh != nil {
		cmds = append(cmds, listenWordsCmd(m.wordsCh))
	}
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.selector.Cancel()
			return m, tea.Quit
		}

	case tea.BlurMsg:
		// Page hidden mid-exam: automatic miss for the current word.
		if m.machine.State() == exam.StateRunning {
			return m, m.runAction(m.machine.FocusLost())
		}
		return m, nil

	case providerAppliedMsg:
		m.providerState = msg.state
		m.activeKind = msg.kind
		if msg.state == speech.SelectorFallback {
			// A failed init rewrote the persisted preference; reflect it.
			m.settings = store.LoadSettings(m.store)
		}
		return m, nil

	case loadProgressMsg:
		m.loadProgress = float64(msg)
		return m, listenProgressCmd(m.progressCh)

	case wordsChangedMsg:
		if m.machine.State() == exam.StateEditing {
			m.list.Reload()
		}
		return m, listenWordsCmd(m.wordsCh)

	case speakDoneMsg:
		if msg.err != nil {
			log.Debug("utterance did not complete", "word", msg.word, "error", msg.err)
		}
		return m, nil

	case examTickMsg:
		return m, m.runAction(m.machine.Apply(msg.ev, msg.gen))
	}

	switch m.machine.State() {
	case exam.StateEditing:
		return m.updateEdit(msg)
	default:
		return m.updateExam(msg)
	}
}

func (m *model) View() string {
	switch m.machine.State() {
	case exam.StateEditing:
		return m.viewEdit()
	default:
		return m.viewExam()
	}
}

// runAction executes an exam Action against the speech layer.
func (m *model) runAction(a exam.Action) tea.Cmd {
	return actionCmd(m.selector, m.settings.Options(), a)
}

// saveSettings persists the current settings and re-activates the preferred
// backend, since provider, accent and voice all affect selection.
func (m *model) saveSettings() tea.Cmd {
	store.SaveSettings(m.store, m.settings)
	m.providerState = speech.SelectorInitializing
	m.loadProgress = 0
	return applyProviderCmd(m.selector, m.settings)
}
