// Package speech unifies three incompatible text-to-speech backends behind
// one Provider contract: a host-native synthesizer that is always ready, a
// local neural engine whose voice models are downloaded and cached on first
// use, and a remote neural service reached over the network. The Selector
// owns which backend is active and guarantees at most one of them is audible
// at a time.
package speech

import (
	"context"
	"time"
)

// Provider is the capability contract every backend implements.
// Speak returns when audio playback has finished. Implementations must stop
// any prior in-flight utterance from the same instance before starting a new
// one, so a single provider never produces overlapping audio.
type Provider interface {
	// Speak synthesizes text and plays it, returning after playback ends.
	Speak(ctx context.Context, text string, opts Options) error

	// Cancel stops any in-flight or playing audio. Idempotent; a no-op
	// when the provider is idle.
	Cancel()

	// IsReady reports whether the provider can speak without further setup.
	IsReady() bool

	// IsLoading reports whether the provider is initializing (for example
	// downloading a voice model).
	IsLoading() bool
}

// Options selects voice characteristics for a single utterance.
type Options struct {
	Speed   Speed
	Accent  Accent
	VoiceID string // backend-specific voice; empty means accent default
}

// ProgressFunc receives fractional initialization progress in [0, 1].
type ProgressFunc func(fraction float64)

// Speed is a coarse speaking-rate setting.
type Speed string

const (
	SpeedNormal Speed = "normal"
	SpeedSlow   Speed = "slow"
)

// Rate converts the speed setting to a playback-rate multiplier.
func (s Speed) Rate() float64 {
	if s == SpeedSlow {
		return 0.7
	}
	return 1.0
}

// Accent constrains voice selection to a language variant.
type Accent string

const (
	AccentUS Accent = "us"
	AccentUK Accent = "uk"
	AccentTW Accent = "zh-TW"
)

// LangTag returns the BCP 47 language tag for the accent.
func (a Accent) LangTag() string {
	switch a {
	case AccentUK:
		return "en-GB"
	case AccentTW:
		return "zh-TW"
	default:
		return "en-US"
	}
}

// CountryCode returns the ISO country fragment used for fuzzy voice matching.
func (a Accent) CountryCode() string {
	switch a {
	case AccentUK:
		return "GB"
	case AccentTW:
		return "TW"
	default:
		return "US"
	}
}

// Valid reports whether the accent is one of the supported variants.
func (a Accent) Valid() bool {
	return a == AccentUS || a == AccentUK || a == AccentTW
}

// Voice describes one entry in a backend's voice catalog.
type Voice struct {
	ID          string
	Name        string
	Lang        string // language tag as reported by the backend
	Quality     string
	Description string
}

// Kind identifies a backend implementation.
type Kind string

const (
	// KindNative is the host synthesizer. Always ready, no load step.
	KindNative Kind = "native"

	// KindLocal is the on-device neural engine with downloadable models.
	KindLocal Kind = "local"

	// KindRemote is the cloud neural synthesis service.
	KindRemote Kind = "remote"
)

// Valid reports whether k names a known backend.
func (k Kind) Valid() bool {
	return k == KindNative || k == KindLocal || k == KindRemote
}

const (
	// synthTimeout bounds a single synthesis call (subprocess or network).
	synthTimeout = 30 * time.Second
)
