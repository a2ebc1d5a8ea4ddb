package speech

import "errors"

// Common speech errors.
var (
	// ErrEmptyText indicates an empty utterance was requested.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrUnknownVoice indicates a voice id not present in the catalog.
	ErrUnknownVoice = errors.New("unknown voice id")

	// ErrAccentUnsupported indicates the backend has no voice for the
	// requested accent.
	ErrAccentUnsupported = errors.New("accent not supported by this backend")

	// ErrInitFailed indicates backend initialization did not complete.
	ErrInitFailed = errors.New("provider initialization failed")

	// ErrSynthesisFailed indicates the backend produced no usable audio.
	ErrSynthesisFailed = errors.New("speech synthesis failed")
)
