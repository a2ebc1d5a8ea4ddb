package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/spelldrill/internal/audio"
	"github.com/dgnsrekt/spelldrill/internal/cache"
)

// ErrNoAPIKey indicates the remote backend has no credentials configured.
var ErrNoAPIKey = errors.New("remote synthesis API key is not configured")

// RemoteProvider speaks through a hosted neural synthesis service. The
// service client is built lazily on first use; synthesis requests are rate
// limited and guarded by a circuit breaker so a degraded service trips fast
// instead of stalling every utterance.
type RemoteProvider struct {
	apiKey     string
	audioCache *cache.DiskCache // may be nil
	player     audio.Player
	sampleRate int

	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker

	initMu sync.Mutex
	client *openai.Client

	mu       sync.Mutex
	speaking bool

	// Seam for tests; production default issues the CreateSpeech call.
	synth func(ctx context.Context, text, voiceID string) ([]byte, error)
}

var _ Provider = (*RemoteProvider)(nil)

// RemoteConfig configures the remote neural backend.
type RemoteConfig struct {
	APIKey     string
	AudioCache *cache.DiskCache // optional PCM cache
	Player     audio.Player
	SampleRate int // PCM output rate; 0 uses the player default

	// RequestsPerMinute bounds synthesis calls. 0 uses a conservative 30.
	RequestsPerMinute int
}

// NewRemoteProvider creates the remote backend.
func NewRemoteProvider(cfg RemoteConfig) *RemoteProvider {
	rpm := cfg.RequestsPerMinute
	if rpm == 0 {
		rpm = 30
	}
	sampleRate := cfg.SampleRate
	if sampleRate == 0 {
		sampleRate = audio.DefaultConfig().SampleRate
	}
	p := &RemoteProvider{
		apiKey:     cfg.APIKey,
		audioCache: cfg.AudioCache,
		player:     cfg.Player,
		sampleRate: sampleRate,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "remote-tts",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("remote synthesis breaker state change", "from", from.String(), "to", to.String())
			},
		}),
	}
	p.synth = p.createSpeech
	return p
}

// ensureClient builds the service client once. Repeated calls after a
// success are no-ops; a failure leaves the client unset so the next call
// retries.
func (p *RemoteProvider) ensureClient() error {
	p.initMu.Lock()
	defer p.initMu.Unlock()
	if p.client != nil {
		return nil
	}
	if p.apiKey == "" {
		return ErrNoAPIKey
	}
	p.client = openai.NewClient(p.apiKey)
	return nil
}

// Speak synthesizes text remotely and plays the decoded audio, returning
// when playback ends. Network and decode failures propagate so the caller
// can fall back to the native backend for this utterance.
func (p *RemoteProvider) Speak(ctx context.Context, text string, opts Options) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if err := p.ensureClient(); err != nil {
		return err
	}

	p.Cancel()

	voiceID := opts.VoiceID
	if voiceID == "" {
		voiceID = RemoteVoiceForAccent(opts.Accent)
	}
	rate := opts.Speed.Rate()

	key := cache.Key("remote", voiceID, text, fmt.Sprintf("%.2f", rate))
	var pcm []byte
	if p.audioCache != nil {
		if data, ok := p.audioCache.Get(key); ok {
			pcm = data
			log.Debug("remote audio cache hit", "voice", voiceID, "text", text)
		}
	}
	if pcm == nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait canceled: %w", err)
		}
		result, err := p.breaker.Execute(func() (interface{}, error) {
			return p.synth(ctx, text, voiceID)
		})
		if err != nil {
			return fmt.Errorf("remote synthesis failed: %w", err)
		}
		mp3 := result.([]byte)

		// Decode also applies the speed multiplier; the temp file it uses
		// is removed on success and on error alike.
		pcm, err = audio.DecodeMP3(ctx, mp3, p.sampleRate, rate)
		if err != nil {
			return fmt.Errorf("audio decode failed: %w", err)
		}
		if p.audioCache != nil {
			_ = p.audioCache.Put(key, pcm)
		}
	}

	p.mu.Lock()
	p.speaking = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.speaking = false
		p.mu.Unlock()
	}()

	return p.player.Play(ctx, pcm)
}

// createSpeech issues the synthesis request and returns the MP3 payload.
func (p *RemoteProvider) createSpeech(ctx context.Context, text, voiceID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, synthTimeout)
	defer cancel()

	resp, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          openai.SpeechVoice(voiceID),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Close()

	mp3, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read synthesis response: %w", err)
	}
	if len(mp3) == 0 {
		return nil, errors.New("synthesis service returned no audio")
	}
	return mp3, nil
}

// Cancel pauses and discards the current playback. Idempotent.
func (p *RemoteProvider) Cancel() {
	_ = p.player.Stop()
}

// IsReady reports true once credentials are configured; the client itself is
// built lazily on the first Speak.
func (p *RemoteProvider) IsReady() bool {
	return p.apiKey != ""
}

// IsLoading reports whether a synthesis round-trip is in flight.
func (p *RemoteProvider) IsLoading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speaking
}

// Voices returns the remote voice catalog.
func (p *RemoteProvider) Voices() []Voice {
	return RemoteVoices()
}
