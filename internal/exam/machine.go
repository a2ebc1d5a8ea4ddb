// Package exam implements the quiz flow: word sequencing over a shuffled
// pass, answer checking, the full-list re-drill policy, and focus-loss
// handling. The machine is synchronous; every call returns an Action telling
// the caller what to do next (speak a word, schedule a delayed event). Timed
// transitions carry a generation number so a stale timer firing after the
// user has moved on is ignored.
package exam

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/dgnsrekt/spelldrill/internal/words"
)

// ErrNoWords is returned when starting an exam with an empty word list.
var ErrNoWords = errors.New("add some words first")

// State is the top-level exam state.
type State int

const (
	// StateEditing is the default list-editing state; no session exists.
	StateEditing State = iota
	// StateRunning means a pass is in progress.
	StateRunning
	// StateComplete means a full pass finished with no misses.
	StateComplete
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateRunning:
		return "running"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// FeedbackKind classifies the current feedback line for display.
type FeedbackKind int

const (
	FeedbackNone FeedbackKind = iota
	FeedbackCorrect
	FeedbackIncorrect
	FeedbackRetry
)

// Event is a delayed transition scheduled by a previous Action.
type Event int

const (
	// EventNone means the Action schedules nothing.
	EventNone Event = iota
	// EventSpeakCurrent speaks the current word.
	EventSpeakCurrent
	// EventAdvance clears feedback and moves to the next word or ends the
	// pass.
	EventAdvance
	// EventRestartPass reshuffles the original list and starts over.
	EventRestartPass
)

// Action tells the caller what to do after a machine call. Zero value means
// nothing.
type Action struct {
	Speak        string        // word to speak now; empty for none
	CancelSpeech bool          // stop any in-flight speech
	Delay        time.Duration // schedule Event after Delay when Event != EventNone
	Event        Event
	Gen          uint64 // pass to Apply; stale generations are dropped
}

// Transition delays, matching the pacing of the original flow: enough time
// to read feedback, a little longer when the spelling was shown.
const (
	firstSpeakDelay = 300 * time.Millisecond
	correctDelay    = 1 * time.Second
	incorrectDelay  = 2 * time.Second
	retryDelay      = 2 * time.Second
)

// Machine is the exam state machine. Not safe for concurrent use; drive it
// from a single event loop.
type Machine struct {
	rng *rand.Rand

	state     State
	source    []string // original full list, re-drilled on a failed pass
	examWords []string
	index     int
	incorrect map[string]struct{}

	feedback     string
	feedbackKind FeedbackKind
	awaiting     bool // a delayed advance is pending; input is ignored

	gen uint64
}

// NewMachine creates a machine in the editing state.
func NewMachine(rng *rand.Rand) *Machine {
	return &Machine{rng: rng, state: StateEditing}
}

// Start begins an exam over list. Refuses an empty list. The first word is
// spoken after a short delay so the UI can render first.
func (m *Machine) Start(list []string) (Action, error) {
	if len(list) == 0 {
		return Action{}, ErrNoWords
	}
	m.source = make([]string, len(list))
	copy(m.source, list)
	m.examWords = words.Shuffle(m.source, m.rng)
	m.index = 0
	m.incorrect = make(map[string]struct{})
	m.state = StateRunning
	m.clearFeedback()
	m.awaiting = false
	m.gen++
	return Action{Delay: firstSpeakDelay, Event: EventSpeakCurrent, Gen: m.gen}, nil
}

// Submit checks the answer for the current word. Input arriving while
// feedback is pending, or outside a running pass, is ignored.
func (m *Machine) Submit(answer string) Action {
	if m.state != StateRunning || m.awaiting {
		return Action{}
	}
	current := m.examWords[m.index]
	if strings.TrimSpace(answer) == current {
		m.feedback = "Correct!"
		m.feedbackKind = FeedbackCorrect
		m.awaiting = true
		return Action{Delay: correctDelay, Event: EventAdvance, Gen: m.gen}
	}
	m.feedback = fmt.Sprintf("Incorrect! The word was %q.", current)
	m.feedbackKind = FeedbackIncorrect
	m.incorrect[current] = struct{}{}
	m.awaiting = true
	return Action{Delay: incorrectDelay, Event: EventAdvance, Gen: m.gen}
}

// FocusLost records an automatic miss for the current word, with the same
// bookkeeping and advance policy as an incorrect answer.
func (m *Machine) FocusLost() Action {
	if m.state != StateRunning || m.awaiting {
		return Action{}
	}
	current := m.examWords[m.index]
	m.feedback = fmt.Sprintf("Focus lost! The word was %q.", current)
	m.feedbackKind = FeedbackIncorrect
	m.incorrect[current] = struct{}{}
	m.awaiting = true
	return Action{Delay: incorrectDelay, Event: EventAdvance, Gen: m.gen}
}

// Apply performs a delayed event scheduled by an earlier Action. Events
// from a superseded generation, or arriving outside a running pass, are
// dropped.
func (m *Machine) Apply(ev Event, gen uint64) Action {
	if m.state != StateRunning || gen != m.gen {
		return Action{}
	}
	switch ev {
	case EventSpeakCurrent:
		return Action{Speak: m.examWords[m.index]}

	case EventAdvance:
		m.clearFeedback()
		m.awaiting = false
		if m.index < len(m.examWords)-1 {
			m.index++
			return Action{Speak: m.examWords[m.index]}
		}
		// End of pass.
		if len(m.incorrect) == 0 {
			m.state = StateComplete
			m.gen++
			return Action{CancelSpeech: true}
		}
		m.feedback = "Some words were incorrect. Let's try again with all words."
		m.feedbackKind = FeedbackRetry
		m.awaiting = true
		return Action{Delay: retryDelay, Event: EventRestartPass, Gen: m.gen}

	case EventRestartPass:
		// A failed pass re-drills the entire original list, not just the
		// missed words.
		m.examWords = words.Shuffle(m.source, m.rng)
		m.incorrect = make(map[string]struct{})
		m.index = 0
		m.clearFeedback()
		m.awaiting = false
		return Action{Delay: firstSpeakDelay, Event: EventSpeakCurrent, Gen: m.gen}
	}
	return Action{}
}

// Replay speaks the current word again without touching exam state.
func (m *Machine) Replay() Action {
	if m.state != StateRunning {
		return Action{}
	}
	return Action{Speak: m.examWords[m.index]}
}

// Exit abandons the session and returns to editing. Pending timers become
// stale and in-flight speech is canceled by the caller.
func (m *Machine) Exit() Action {
	m.state = StateEditing
	m.examWords = nil
	m.source = nil
	m.incorrect = nil
	m.index = 0
	m.clearFeedback()
	m.awaiting = false
	m.gen++
	return Action{CancelSpeech: true}
}

func (m *Machine) clearFeedback() {
	m.feedback = ""
	m.feedbackKind = FeedbackNone
}

// State returns the top-level state.
func (m *Machine) State() State { return m.state }

// CurrentWord returns the word being quizzed, or empty outside a pass.
func (m *Machine) CurrentWord() string {
	if m.state != StateRunning || m.index >= len(m.examWords) {
		return ""
	}
	return m.examWords[m.index]
}

// Index returns the zero-based position within the pass.
func (m *Machine) Index() int { return m.index }

// Total returns the number of words in the pass.
func (m *Machine) Total() int { return len(m.examWords) }

// Feedback returns the current feedback line and its kind.
func (m *Machine) Feedback() (string, FeedbackKind) {
	return m.feedback, m.feedbackKind
}

// IncorrectCount returns how many distinct words have been missed this pass.
func (m *Machine) IncorrectCount() int { return len(m.incorrect) }

// Gen returns the current timer generation.
func (m *Machine) Gen() uint64 { return m.gen }
