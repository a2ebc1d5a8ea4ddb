package exam

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
)

func newTestMachine() *Machine {
	return NewMachine(rand.New(rand.NewSource(1)))
}

// step applies an action's scheduled event immediately, as if its timer had
// fired.
func step(m *Machine, a Action) Action {
	if a.Event == EventNone {
		return Action{}
	}
	return m.Apply(a.Event, a.Gen)
}

func TestStartEmptyList(t *testing.T) {
	m := newTestMachine()
	_, err := m.Start(nil)
	if !errors.Is(err, ErrNoWords) {
		t.Fatalf("expected ErrNoWords, got %v", err)
	}
	if m.State() != StateEditing {
		t.Errorf("state = %v, want editing", m.State())
	}
}

func TestStartSchedulesFirstWord(t *testing.T) {
	m := newTestMachine()
	a, err := m.Start([]string{"cat", "dog"})
	if err != nil {
		t.Fatal(err)
	}
	if m.State() != StateRunning {
		t.Fatalf("state = %v, want running", m.State())
	}
	if a.Event != EventSpeakCurrent || a.Delay != firstSpeakDelay {
		t.Errorf("start action = %+v, want delayed EventSpeakCurrent", a)
	}
	spoken := step(m, a)
	if spoken.Speak != m.CurrentWord() {
		t.Errorf("spoke %q, want current word %q", spoken.Speak, m.CurrentWord())
	}
}

func TestCleanPassCompletes(t *testing.T) {
	m := newTestMachine()
	a, err := m.Start([]string{"cat", "dog", "sun"})
	if err != nil {
		t.Fatal(err)
	}
	step(m, a)

	var last Action
	for i := 0; i < 3; i++ {
		a = m.Submit(m.CurrentWord())
		if _, kind := m.Feedback(); kind != FeedbackCorrect {
			t.Fatalf("word %d: feedback kind = %v, want correct", i, kind)
		}
		if a.Delay != correctDelay {
			t.Errorf("word %d: delay = %v, want %v", i, a.Delay, correctDelay)
		}
		last = step(m, a)
	}

	if m.State() != StateComplete {
		t.Fatalf("state = %v, want complete", m.State())
	}
	if !last.CancelSpeech {
		t.Error("completion should cancel in-flight speech")
	}
}

func TestAnswersAreCaseSensitiveAndTrimmed(t *testing.T) {
	m := newTestMachine()
	a, _ := m.Start([]string{"cat"})
	step(m, a)
	word := m.CurrentWord()

	a = m.Submit("  " + word + "  ")
	if _, kind := m.Feedback(); kind != FeedbackCorrect {
		t.Errorf("padded answer should be correct, got kind %v", kind)
	}
	step(m, a)

	a, _ = m.Start([]string{"cat"})
	step(m, a)
	a = m.Submit(strings.ToUpper(m.CurrentWord()))
	feedback, kind := m.Feedback()
	if kind != FeedbackIncorrect {
		t.Fatalf("case-mismatched answer should be incorrect, got kind %v", kind)
	}
	if !strings.Contains(feedback, m.CurrentWord()) {
		t.Errorf("feedback %q should reveal the word", feedback)
	}
	if a.Delay != incorrectDelay {
		t.Errorf("delay = %v, want %v", a.Delay, incorrectDelay)
	}
}

func TestFailedPassRedrillsFullList(t *testing.T) {
	m := newTestMachine()
	list := []string{"cat", "dog", "sun"}
	a, _ := m.Start(list)
	step(m, a)

	// Miss the first word, answer the rest correctly.
	a = m.Submit("wrong")
	step(m, a)
	a = m.Submit(m.CurrentWord())
	step(m, a)
	a = m.Submit(m.CurrentWord())
	a = step(m, a)

	if m.State() != StateRunning {
		t.Fatalf("state = %v, want running (retry pending)", m.State())
	}
	if _, kind := m.Feedback(); kind != FeedbackRetry {
		t.Fatalf("feedback kind = %v, want retry", kind)
	}
	if a.Event != EventRestartPass || a.Delay != retryDelay {
		t.Fatalf("retry action = %+v, want delayed EventRestartPass", a)
	}

	a = step(m, a)
	if m.Total() != len(list) {
		t.Errorf("re-drill covers %d words, want the full %d", m.Total(), len(list))
	}
	if m.Index() != 0 {
		t.Errorf("index = %d, want 0 after restart", m.Index())
	}
	if m.IncorrectCount() != 0 {
		t.Errorf("incorrect count = %d, want 0 after restart", m.IncorrectCount())
	}
	if a.Event != EventSpeakCurrent || a.Delay != firstSpeakDelay {
		t.Errorf("restart action = %+v, want delayed EventSpeakCurrent", a)
	}
}

func TestStaleGenerationIgnored(t *testing.T) {
	m := newTestMachine()
	a, _ := m.Start([]string{"cat"})
	stale := a

	// A new session supersedes the pending timer.
	if _, err := m.Start([]string{"dog"}); err != nil {
		t.Fatal(err)
	}
	if got := m.Apply(stale.Event, stale.Gen); got != (Action{}) {
		t.Errorf("stale event produced %+v, want nothing", got)
	}
}

func TestEventsIgnoredAfterExit(t *testing.T) {
	m := newTestMachine()
	a, _ := m.Start([]string{"cat"})

	exit := m.Exit()
	if !exit.CancelSpeech {
		t.Error("exit should cancel in-flight speech")
	}
	if m.State() != StateEditing {
		t.Fatalf("state = %v, want editing", m.State())
	}
	if got := m.Apply(a.Event, a.Gen); got != (Action{}) {
		t.Errorf("post-exit event produced %+v, want nothing", got)
	}
}

func TestFocusLostIsAnAutomaticMiss(t *testing.T) {
	m := newTestMachine()
	a, _ := m.Start([]string{"cat", "dog"})
	step(m, a)
	word := m.CurrentWord()

	a = m.FocusLost()
	feedback, kind := m.Feedback()
	if kind != FeedbackIncorrect {
		t.Fatalf("feedback kind = %v, want incorrect", kind)
	}
	if !strings.Contains(feedback, word) {
		t.Errorf("feedback %q should reveal the word", feedback)
	}
	if m.IncorrectCount() != 1 {
		t.Errorf("incorrect count = %d, want 1", m.IncorrectCount())
	}
	if a.Delay != incorrectDelay || a.Event != EventAdvance {
		t.Errorf("action = %+v, want delayed EventAdvance", a)
	}

	// Input during the feedback window is dropped, as is a second blur.
	if got := m.Submit(m.CurrentWord()); got != (Action{}) {
		t.Errorf("submit while awaiting produced %+v, want nothing", got)
	}
	if got := m.FocusLost(); got != (Action{}) {
		t.Errorf("second blur produced %+v, want nothing", got)
	}
}

func TestReplayRepeatsWithoutAdvancing(t *testing.T) {
	m := newTestMachine()
	a, _ := m.Start([]string{"cat", "dog"})
	step(m, a)
	index := m.Index()

	a = m.Replay()
	if a.Speak != m.CurrentWord() {
		t.Errorf("replay speaks %q, want %q", a.Speak, m.CurrentWord())
	}
	if m.Index() != index {
		t.Errorf("replay moved index from %d to %d", index, m.Index())
	}

	m.Exit()
	if got := m.Replay(); got != (Action{}) {
		t.Errorf("replay while editing produced %+v, want nothing", got)
	}
}

func TestShuffledPassCoversEveryWord(t *testing.T) {
	m := newTestMachine()
	list := []string{"alpha", "bravo", "charlie", "delta"}
	a, _ := m.Start(list)
	step(m, a)

	seen := make(map[string]bool)
	for m.State() == StateRunning {
		seen[m.CurrentWord()] = true
		a = m.Submit(m.CurrentWord())
		a = step(m, a)
	}

	if len(seen) != len(list) {
		t.Fatalf("pass covered %d distinct words, want %d", len(seen), len(list))
	}
	for _, w := range list {
		if !seen[w] {
			t.Errorf("word %q never presented", w)
		}
	}
}
