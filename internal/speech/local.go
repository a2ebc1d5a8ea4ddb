package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/spelldrill/internal/audio"
	"github.com/dgnsrekt/spelldrill/internal/cache"
)

// LocalProvider speaks through an on-device neural synthesizer. Voice models
// are downloaded on first use into the model store and reused afterwards;
// synthesized PCM is cached per (voice, text, speed).
type LocalProvider struct {
	models     *cache.ModelStore
	audioCache *cache.DiskCache // may be nil
	player     audio.Player

	mu       sync.Mutex
	loading  bool
	ready    bool
	voiceID  string
	progress float64

	onProgress ProgressFunc

	// Seams for tests; production defaults wired by NewLocalProvider.
	fetch func(ctx context.Context, voiceID string, progress ProgressFunc) error
	synth func(ctx context.Context, text, modelPath, configPath string, rate float64) ([]byte, error)
}

var _ Provider = (*LocalProvider)(nil)

// LocalConfig configures the local neural backend.
type LocalConfig struct {
	Models     *cache.ModelStore
	AudioCache *cache.DiskCache // optional PCM cache
	Player     audio.Player
	BaseURL    string // model download base; empty uses DefaultModelBaseURL
}

// NewLocalProvider creates the local neural backend.
func NewLocalProvider(cfg LocalConfig) *LocalProvider {
	p := &LocalProvider{
		models:     cfg.Models,
		audioCache: cfg.AudioCache,
		player:     cfg.Player,
	}
	dl := newModelDownloader(cfg.BaseURL, cfg.Models)
	p.fetch = dl.fetch
	p.synth = synthesizePiper
	return p
}

// SetProgressCallback registers the download-progress sink. Progress is
// reported as a fraction in [0, 1] on every tick.
func (p *LocalProvider) SetProgressCallback(fn ProgressFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onProgress = fn
}

// Initialize prepares a voice for synthesis, downloading its model when the
// store does not have it. A no-op while a load is in flight or when already
// ready with the same voice. Failures propagate and leave the provider not
// ready.
func (p *LocalProvider) Initialize(ctx context.Context, voiceID string) error {
	p.mu.Lock()
	if p.loading {
		p.mu.Unlock()
		return nil
	}
	if p.ready && p.voiceID == voiceID {
		p.mu.Unlock()
		return nil
	}
	if _, ok := lookupLocalVoice(voiceID); !ok {
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownVoice, voiceID)
	}
	p.loading = true
	p.progress = 0
	progress := p.onProgress
	p.mu.Unlock()

	err := p.initVoice(ctx, voiceID, progress)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	if err != nil {
		p.ready = false
		return fmt.Errorf("%w: %v", ErrInitFailed, err)
	}
	p.voiceID = voiceID
	p.ready = true
	p.progress = 1
	return nil
}

func (p *LocalProvider) initVoice(ctx context.Context, voiceID string, progress ProgressFunc) error {
	if p.models.Has(voiceID) {
		return nil
	}
	log.Info("downloading voice model", "voice", voiceID)
	tick := func(fraction float64) {
		p.mu.Lock()
		p.progress = fraction
		p.mu.Unlock()
		if progress != nil {
			progress(fraction)
		}
	}
	return p.fetch(ctx, voiceID, tick)
}

// Speak synthesizes and plays text, initializing the requested voice first
// when needed. Synthesis and playback errors propagate so the caller can
// fall back to the native backend for this utterance.
func (p *LocalProvider) Speak(ctx context.Context, text string, opts Options) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}

	voiceID := opts.VoiceID
	if voiceID == "" {
		voiceID = LocalVoiceForAccent(opts.Accent)
	}
	if voiceID == "" {
		return fmt.Errorf("%w: %s", ErrAccentUnsupported, opts.Accent)
	}

	p.mu.Lock()
	ready := p.ready && p.voiceID == voiceID
	p.mu.Unlock()
	if !ready {
		if err := p.Initialize(ctx, voiceID); err != nil {
			return err
		}
	}

	p.Cancel()

	rate := opts.Speed.Rate()
	key := cache.Key("local", voiceID, text, fmt.Sprintf("%.2f", rate))
	var pcm []byte
	if p.audioCache != nil {
		if data, ok := p.audioCache.Get(key); ok {
			pcm = data
			log.Debug("local audio cache hit", "voice", voiceID, "text", text)
		}
	}
	if pcm == nil {
		data, err := p.synth(ctx, text, p.models.ModelPath(voiceID), p.models.ConfigPath(voiceID), rate)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
		}
		pcm = data
		if p.audioCache != nil {
			// Cache errors are non-fatal.
			_ = p.audioCache.Put(key, pcm)
		}
	}

	return p.player.Play(ctx, pcm)
}

// Cancel stops the current playback, if any. Idempotent.
func (p *LocalProvider) Cancel() {
	_ = p.player.Stop()
}

// IsReady reports whether a voice is loaded.
func (p *LocalProvider) IsReady() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// IsLoading reports whether a model download is in flight.
func (p *LocalProvider) IsLoading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// LoadProgress returns the current download fraction in [0, 1].
func (p *LocalProvider) LoadProgress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress
}

// Voices returns the synthesizable voice catalog.
func (p *LocalProvider) Voices() []Voice {
	var out []Voice
	for _, accent := range []Accent{AccentUS, AccentUK} {
		out = append(out, LocalVoicesForAccent(accent)...)
	}
	return out
}

// CachedVoices returns the voice ids with a model already on disk.
func (p *LocalProvider) CachedVoices() []string {
	return p.models.List()
}

// RemoveVoice evicts a downloaded model. The active voice is reset so the
// next Speak re-initializes.
func (p *LocalProvider) RemoveVoice(voiceID string) error {
	p.mu.Lock()
	if p.voiceID == voiceID {
		p.ready = false
		p.voiceID = ""
	}
	p.mu.Unlock()
	return p.models.Remove(voiceID)
}

// synthesizePiper runs the piper binary against a model file and returns
// 16-bit mono PCM at the player's sample rate. Speed is applied through
// piper's length scale, the inverse of the rate multiplier.
func synthesizePiper(ctx context.Context, text, modelPath, configPath string, rate float64) ([]byte, error) {
	lengthScale := 1.0 / rate

	args := []string{
		"--model", modelPath,
		"--config", configPath,
		"--output-raw",
		"--length-scale", fmt.Sprintf("%.2f", lengthScale),
	}

	ctx, cancel := context.WithTimeout(ctx, synthTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "piper", args...)
	// Pre-configured stdin: piper reads the text before we could write to a
	// pipe after starting it.
	cmd.Stdin = strings.NewReader(text)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("piper synthesis timeout: %w", ctx.Err())
		}
		return nil, fmt.Errorf("piper failed: %w, stderr: %s", err, stderr.String())
	}
	raw := stdout.Bytes()
	if len(raw) == 0 {
		return nil, fmt.Errorf("piper produced no audio, stderr: %s", stderr.String())
	}
	log.Debug("piper synthesis complete", "bytes", len(raw), "elapsed", time.Since(start))

	// Piper models emit 22050 Hz; the shared player runs at 44100.
	return audio.ResamplePCM(ctx, raw, 22050, 44100)
}
