package speech

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
)

// SelectorState tracks where the selector is in provider activation.
type SelectorState int

const (
	// SelectorIdle means no provider has been activated yet.
	SelectorIdle SelectorState = iota
	// SelectorInitializing means the preferred backend is initializing.
	SelectorInitializing
	// SelectorReady means the preferred backend is active.
	SelectorReady
	// SelectorFallback means the native backend is substituting for a
	// preferred backend that failed or does not support the accent.
	SelectorFallback
)

// String returns the state name.
func (s SelectorState) String() string {
	switch s {
	case SelectorIdle:
		return "idle"
	case SelectorInitializing:
		return "initializing"
	case SelectorReady:
		return "ready"
	case SelectorFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Selector owns the active speech provider. The audio device is a shared
// resource, so the selector cancels the previously active provider before
// activating another and routes every utterance through exactly one backend.
type Selector struct {
	native *NativeProvider
	local  *LocalProvider
	remote *RemoteProvider

	// persist corrects the stored provider preference after a failed
	// initialization so the failure is not repeated every session.
	persist func(Kind)

	mu        sync.Mutex
	state     SelectorState
	active    Provider
	activeKnd Kind
}

// NewSelector wires the three backends. persist may be nil when preference
// correction is not wanted (tests).
func NewSelector(native *NativeProvider, local *LocalProvider, remote *RemoteProvider, persist func(Kind)) *Selector {
	return &Selector{
		native:  native,
		local:   local,
		remote:  remote,
		persist: persist,
		state:   SelectorIdle,
		active:  native,
	}
}

// provider returns the backend instance for a kind.
func (s *Selector) provider(kind Kind) Provider {
	switch kind {
	case KindLocal:
		return s.local
	case KindRemote:
		return s.remote
	default:
		return s.native
	}
}

// Apply activates the preferred backend for the given settings, blocking
// through any initialization. Call it from a goroutine (or a tea.Cmd) when
// the UI must stay responsive. Initialization failures degrade silently to
// the native backend and never return an error.
func (s *Selector) Apply(ctx context.Context, preferred Kind, accent Accent, voiceID string) {
	if !preferred.Valid() {
		preferred = KindNative
	}

	s.mu.Lock()
	prev := s.active
	s.mu.Unlock()

	// Only one provider may own the audio device.
	prev.Cancel()

	if preferred == KindNative {
		s.activate(s.native, KindNative, SelectorReady)
		return
	}

	if !Supports(preferred, accent) {
		log.Info("accent unsupported by preferred backend, using native",
			"backend", preferred, "accent", accent)
		s.activate(s.native, KindNative, SelectorFallback)
		return
	}

	s.mu.Lock()
	s.state = SelectorInitializing
	s.mu.Unlock()

	var err error
	switch preferred {
	case KindLocal:
		id := voiceID
		if id == "" {
			id = LocalVoiceForAccent(accent)
		}
		err = s.local.Initialize(ctx, id)
	case KindRemote:
		err = s.remote.ensureClient()
	}

	if err != nil {
		log.Error("preferred backend failed to initialize, falling back to native",
			"backend", preferred, "error", err)
		if s.persist != nil {
			s.persist(KindNative)
		}
		s.activate(s.native, KindNative, SelectorFallback)
		return
	}
	s.activate(s.provider(preferred), preferred, SelectorReady)
}

func (s *Selector) activate(p Provider, kind Kind, state SelectorState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = p
	s.activeKnd = kind
	s.state = state
}

// Speak routes an utterance to the active provider. A neural backend's error
// triggers a one-shot fallback to the native backend for this utterance
// only; the active provider is left in place for the next word.
func (s *Selector) Speak(ctx context.Context, text string, opts Options) error {
	s.mu.Lock()
	active := s.active
	kind := s.activeKnd
	s.mu.Unlock()

	err := active.Speak(ctx, text, opts)
	if err == nil || kind == KindNative {
		return err
	}
	log.Warn("backend speak failed, retrying utterance on native",
		"backend", kind, "error", err)
	active.Cancel()
	return s.native.Speak(ctx, text, opts)
}

// Cancel stops the active provider and, defensively, the native backend,
// which can be speaking independently after a per-utterance fallback.
func (s *Selector) Cancel() {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()
	active.Cancel()
	s.native.Cancel()
}

// State returns the selector state.
func (s *Selector) State() SelectorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ActiveKind returns the kind of the currently active backend.
func (s *Selector) ActiveKind() Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeKnd == "" {
		return KindNative
	}
	return s.activeKnd
}

// Active returns the active provider instance.
func (s *Selector) Active() Provider {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Local exposes the local backend for catalog queries.
func (s *Selector) Local() *LocalProvider { return s.local }

// Native exposes the native backend.
func (s *Selector) Native() *NativeProvider { return s.native }
