package audio

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MockPlayer implements Player for tests. It simulates playback without an
// audio device: by default each Play completes immediately, or after
// PlayDelay when one is configured, and can be interrupted by Stop.
type MockPlayer struct {
	// PlayDelay is how long a simulated playback takes. Zero completes
	// immediately.
	PlayDelay time.Duration

	// PlayErr, when set, is returned by every Play call.
	PlayErr error

	// OnPlay is invoked with the PCM data at the start of each Play.
	OnPlay func(pcm []byte)

	mu      sync.Mutex
	stopCh  chan struct{}
	playing bool

	playCount atomic.Int64
	stopCount atomic.Int64
}

// NewMockPlayer returns a mock player whose playbacks complete immediately.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{}
}

// Play simulates playback of pcm.
func (m *MockPlayer) Play(ctx context.Context, pcm []byte) error {
	m.playCount.Add(1)
	if m.OnPlay != nil {
		m.OnPlay(pcm)
	}
	if m.PlayErr != nil {
		return m.PlayErr
	}

	m.mu.Lock()
	m.stopLocked()
	stopCh := make(chan struct{})
	m.stopCh = stopCh
	m.playing = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.playing = false
		m.mu.Unlock()
	}()

	if m.PlayDelay == 0 {
		return nil
	}

	select {
	case <-stopCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(m.PlayDelay):
		return nil
	}
}

// Stop interrupts a pending simulated playback.
func (m *MockPlayer) Stop() error {
	m.stopCount.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
	return nil
}

func (m *MockPlayer) stopLocked() {
	if m.stopCh != nil {
		close(m.stopCh)
		m.stopCh = nil
	}
	m.playing = false
}

// IsPlaying reports whether a simulated playback is in flight.
func (m *MockPlayer) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Close stops any pending playback.
func (m *MockPlayer) Close() error { return m.Stop() }

// PlayCount returns how many times Play was called.
func (m *MockPlayer) PlayCount() int { return int(m.playCount.Load()) }

// StopCount returns how many times Stop was called.
func (m *MockPlayer) StopCount() int { return int(m.stopCount.Load()) }
