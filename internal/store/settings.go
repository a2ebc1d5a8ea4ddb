package store

import (
	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/spelldrill/internal/speech"
)

// Settings holds the persisted speech preferences. Partial or unknown keys
// in the stored blob are tolerated: loading merges over defaults and never
// rejects.
type Settings struct {
	Provider    speech.Kind   `json:"provider"`
	Speed       speech.Speed  `json:"speed"`
	Accent      speech.Accent `json:"accent"`
	LocalVoice  string        `json:"localVoice"`
	RemoteVoice string        `json:"remoteVoice"`
}

// DefaultSettings returns the settings used when nothing is persisted.
func DefaultSettings() Settings {
	return Settings{
		Provider:    speech.KindNative,
		Speed:       speech.SpeedNormal,
		Accent:      speech.AccentUS,
		LocalVoice:  speech.LocalVoiceForAccent(speech.AccentUS),
		RemoteVoice: speech.RemoteVoiceForAccent(speech.AccentUS),
	}
}

// LoadSettings reads settings merged over defaults. A missing or malformed
// blob yields pure defaults.
func LoadSettings(s *Store) Settings {
	settings := DefaultSettings()
	s.Get(KeySettings, &settings)
	return settings.normalized()
}

// SaveSettings persists settings. Failures are logged, not surfaced; a
// write error must not break the speech flow.
func SaveSettings(s *Store, settings Settings) {
	if err := s.Put(KeySettings, settings); err != nil {
		log.Error("could not save speech settings", "error", err)
	}
}

// normalized repairs fields an older or partial blob may have left empty or
// invalid, falling back per field rather than rejecting the whole blob.
func (s Settings) normalized() Settings {
	def := DefaultSettings()
	if !s.Provider.Valid() {
		s.Provider = def.Provider
	}
	if s.Speed != speech.SpeedNormal && s.Speed != speech.SpeedSlow {
		s.Speed = def.Speed
	}
	if !s.Accent.Valid() {
		s.Accent = def.Accent
	}
	if s.LocalVoice == "" {
		s.LocalVoice = speech.LocalVoiceForAccent(s.Accent)
	}
	if s.RemoteVoice == "" {
		s.RemoteVoice = speech.RemoteVoiceForAccent(s.Accent)
	}
	return s
}

// VoiceFor returns the selected voice id for a backend kind.
func (s Settings) VoiceFor(kind speech.Kind) string {
	switch kind {
	case speech.KindLocal:
		return s.LocalVoice
	case speech.KindRemote:
		return s.RemoteVoice
	default:
		return ""
	}
}

// Options builds per-utterance options from the settings.
func (s Settings) Options() speech.Options {
	return speech.Options{
		Speed:   s.Speed,
		Accent:  s.Accent,
		VoiceID: s.VoiceFor(s.Provider),
	}
}
