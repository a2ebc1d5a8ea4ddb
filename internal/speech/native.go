package speech

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// SynthHost is the host-level synthesis capability the native provider
// wraps: a voice catalog plus a blocking utterance call. The catalog may be
// empty until the host has populated it.
type SynthHost interface {
	// Voices returns the host voice catalog.
	Voices() []Voice

	// Speak utters text with the given voice at the given rate multiplier,
	// returning when playback ends. An empty voiceID uses the host default.
	Speak(ctx context.Context, text, voiceID string, rate float64) error

	// Cancel stops the current utterance, if any.
	Cancel()
}

// NativeProvider speaks through the host synthesizer. It has no load step,
// is always ready, and never surfaces speak errors to the caller: a failed
// utterance is logged and treated as finished so the exam flow is never
// blocked on the fallback backend of last resort.
type NativeProvider struct {
	host SynthHost
	mu   sync.Mutex
}

var _ Provider = (*NativeProvider)(nil)

// NewNativeProvider wraps a synthesis host.
func NewNativeProvider(host SynthHost) *NativeProvider {
	return &NativeProvider{host: host}
}

// Speak utters text, resolving even when the host errors.
func (p *NativeProvider) Speak(ctx context.Context, text string, opts Options) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	p.mu.Lock()
	p.host.Cancel()
	p.mu.Unlock()

	voice := PickVoice(p.host.Voices(), opts.Accent)
	if err := p.host.Speak(ctx, text, voice.ID, opts.Speed.Rate()); err != nil {
		log.Error("native speech failed", "text", text, "voice", voice.ID, "error", err)
	}
	return nil
}

// Cancel stops the current utterance.
func (p *NativeProvider) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.host.Cancel()
}

// IsReady always reports true; the host needs no initialization.
func (p *NativeProvider) IsReady() bool { return true }

// IsLoading always reports false.
func (p *NativeProvider) IsLoading() bool { return false }

// Voices exposes the host catalog.
func (p *NativeProvider) Voices() []Voice { return p.host.Voices() }

// PickVoice chooses a host voice for an accent. First match wins:
//
//  1. exact language-tag match (en-US, en-GB, zh-TW),
//  2. any tag containing the accent's country code (US, GB, TW),
//  3. any tag containing "en".
//
// When nothing matches, the zero Voice is returned and the host default is
// used.
func PickVoice(voices []Voice, accent Accent) Voice {
	tag := accent.LangTag()
	for _, v := range voices {
		if strings.EqualFold(v.Lang, tag) {
			return v
		}
	}
	country := strings.ToLower(accent.CountryCode())
	for _, v := range voices {
		if strings.Contains(strings.ToLower(v.Lang), country) {
			return v
		}
	}
	for _, v := range voices {
		if strings.Contains(strings.ToLower(v.Lang), "en") {
			return v
		}
	}
	return Voice{}
}
