package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dgnsrekt/spelldrill/internal/exam"
	"github.com/dgnsrekt/spelldrill/internal/speech"
	"github.com/dgnsrekt/spelldrill/internal/store"
)

// Speech commands and messages, following the Bubble Tea command pattern:
// all blocking speech work happens inside commands so the event loop never
// stalls on a download, a network round-trip, or audio playback.

// speakDoneMsg is sent when an utterance finishes playing (or failed; the
// selector has already fallen back for the utterance by then).
type speakDoneMsg struct {
	word string
	err  error
}

// providerAppliedMsg is sent when the selector has activated a backend.
type providerAppliedMsg struct {
	state speech.SelectorState
	kind  speech.Kind
}

// loadProgressMsg carries fractional model-download progress.
type loadProgressMsg float64

// examTickMsg delivers a delayed exam transition.
type examTickMsg struct {
	ev  exam.Event
	gen uint64
}

// wordsChangedMsg reports an external change to the persisted word list.
type wordsChangedMsg struct{}

// speakCmd speaks a word through the selector and reports completion.
func speakCmd(sel *speech.Selector, word string, opts speech.Options) tea.Cmd {
	return func() tea.Msg {
		err := sel.Speak(context.Background(), word, opts)
		return speakDoneMsg{word: word, err: err}
	}
}

// applyProviderCmd activates the preferred backend, blocking through any
// model download or client setup.
func applyProviderCmd(sel *speech.Selector, settings store.Settings) tea.Cmd {
	return func() tea.Msg {
		sel.Apply(context.Background(),
			settings.Provider, settings.Accent, settings.VoiceFor(settings.Provider))
		return providerAppliedMsg{state: sel.State(), kind: sel.ActiveKind()}
	}
}

// listenProgressCmd waits for the next progress tick. Reissued after every
// message so the channel keeps draining.
func listenProgressCmd(ch <-chan float64) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-ch
		if !ok {
			return nil
		}
		return loadProgressMsg(f)
	}
}

// listenWordsCmd waits for the next external word-list change.
func listenWordsCmd(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return wordsChangedMsg{}
	}
}

// actionCmd turns an exam Action into commands: cancel in-flight speech,
// speak a word, schedule the delayed transition.
func actionCmd(sel *speech.Selector, opts speech.Options, a exam.Action) tea.Cmd {
	var cmds []tea.Cmd
	if a.CancelSpeech {
		sel.Cancel()
	}
	if a.Speak != "" {
		cmds = append(cmds, speakCmd(sel, a.Speak, opts))
	}
	if a.Event != exam.EventNone {
		ev, gen := a.Event, a.Gen
		cmds = append(cmds, tea.Tick(a.Delay, func(time.Time) tea.Msg {
			return examTickMsg{ev: ev, gen: gen}
		}))
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}
