// Package audio provides PCM playback for the speech backends. All backends
// share one Player because the audio device (and the underlying oto context)
// is a process-wide singleton.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Player plays raw PCM audio. Play blocks until playback finishes, the
// context is canceled, or Stop is called from another goroutine; starting a
// new playback interrupts the previous one.
type Player interface {
	Play(ctx context.Context, pcm []byte) error
	Stop() error
	IsPlaying() bool
	Close() error
}

// Config describes the PCM format the player accepts.
type Config struct {
	SampleRate int // 44100 or 48000 Hz
	Channels   int // 1 = mono, 2 = stereo
	BitDepth   int // bits per sample, 16 only
}

// DefaultConfig returns the format used by all speech backends.
func DefaultConfig() Config {
	return Config{
		SampleRate: 44100,
		Channels:   1,
		BitDepth:   16,
	}
}

func (c Config) validate() error {
	if c.SampleRate != 44100 && c.SampleRate != 48000 {
		return fmt.Errorf("sample rate must be 44100 or 48000 Hz, got %d", c.SampleRate)
	}
	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("channels must be 1 or 2, got %d", c.Channels)
	}
	if c.BitDepth != 16 {
		return fmt.Errorf("bit depth must be 16, got %d", c.BitDepth)
	}
	return nil
}

// OtoPlayer implements Player on top of ebitengine/oto.
type OtoPlayer struct {
	context *oto.Context
	config  Config

	mu     sync.Mutex
	player *oto.Player
	// Audio data must stay referenced while oto reads from it.
	active []byte
	stopCh chan struct{}
	closed atomic.Bool
}

// playPollInterval is how often Play checks whether oto has drained the
// buffer. Coarse enough to stay cheap, fine enough that Speak resolves
// promptly after the last sample.
const playPollInterval = 50 * time.Millisecond

// NewOtoPlayer creates the process-wide audio player. Call it once; the oto
// context cannot be recreated within the same process.
func NewOtoPlayer(config Config) (*OtoPlayer, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	op := &oto.NewContextOptions{
		SampleRate:   config.SampleRate,
		ChannelCount: config.Channels,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	return &OtoPlayer{context: ctx, config: config}, nil
}

// Play starts playback of pcm and blocks until it completes. A concurrent
// Stop (or a second Play) interrupts it; an interrupted Play returns nil.
func (p *OtoPlayer) Play(ctx context.Context, pcm []byte) error {
	if len(pcm) == 0 {
		return errors.New("audio data is empty")
	}
	if p.closed.Load() {
		return errors.New("player is closed")
	}

	p.mu.Lock()
	p.stopLocked()

	// Own a copy so the caller can reuse its buffer.
	data := make([]byte, len(pcm))
	copy(data, pcm)

	player := p.context.NewPlayer(bytes.NewReader(data))
	p.player = player
	p.active = data
	stopCh := make(chan struct{})
	p.stopCh = stopCh
	p.mu.Unlock()

	player.Play()

	ticker := time.NewTicker(playPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return nil
		case <-ctx.Done():
			p.Stop()
			return ctx.Err()
		case <-ticker.C:
			if !player.IsPlaying() {
				p.mu.Lock()
				p.releaseLocked(player)
				p.mu.Unlock()
				return nil
			}
		}
	}
}

// Stop interrupts the current playback, if any. Safe to call when idle.
func (p *OtoPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

func (p *OtoPlayer) stopLocked() {
	if p.player != nil {
		p.player.Pause()
		_ = p.player.Close()
		p.player = nil
		p.active = nil
	}
	if p.stopCh != nil {
		close(p.stopCh)
		p.stopCh = nil
	}
}

// releaseLocked cleans up after a playback that drained naturally. Only the
// playback that created the player may release it; a newer Play has already
// replaced p.player by the time a stale caller gets here.
func (p *OtoPlayer) releaseLocked(player *oto.Player) {
	if p.player != player {
		return
	}
	_ = p.player.Close()
	p.player = nil
	p.active = nil
	if p.stopCh != nil {
		close(p.stopCh)
		p.stopCh = nil
	}
}

// IsPlaying reports whether audio is currently playing.
func (p *OtoPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.player != nil && p.player.IsPlaying()
}

// Close stops playback and marks the player unusable. The oto context itself
// has no close; it lives until process exit.
func (p *OtoPlayer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.Stop()
}

// Duration returns the playback duration of a PCM buffer in this player's
// format.
func (p *OtoPlayer) Duration(pcm []byte) time.Duration {
	bytesPerSample := p.config.BitDepth / 8
	samples := len(pcm) / (p.config.Channels * bytesPerSample)
	return time.Duration(samples) * time.Second / time.Duration(p.config.SampleRate)
}
