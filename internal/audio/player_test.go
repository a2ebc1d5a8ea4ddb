package audio

import (
	"context"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"stereo 48k", Config{SampleRate: 48000, Channels: 2, BitDepth: 16}, false},
		{"bad sample rate", Config{SampleRate: 22050, Channels: 1, BitDepth: 16}, true},
		{"bad channels", Config{SampleRate: 44100, Channels: 5, BitDepth: 16}, true},
		{"bad bit depth", Config{SampleRate: 44100, Channels: 1, BitDepth: 24}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.validate(); (err != nil) != tt.wantErr {
				t.Errorf("validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMockPlayerCompletesImmediately(t *testing.T) {
	p := NewMockPlayer()

	var got []byte
	p.OnPlay = func(pcm []byte) { got = pcm }

	if err := p.Play(context.Background(), []byte("pcm")); err != nil {
		t.Fatal(err)
	}
	if string(got) != "pcm" {
		t.Errorf("OnPlay saw %q", got)
	}
	if p.PlayCount() != 1 {
		t.Errorf("PlayCount = %d, want 1", p.PlayCount())
	}
	if p.IsPlaying() {
		t.Error("IsPlaying = true after completion")
	}
}

func TestMockPlayerStopInterrupts(t *testing.T) {
	p := NewMockPlayer()
	p.PlayDelay = 5 * time.Second

	done := make(chan error, 1)
	go func() {
		done <- p.Play(context.Background(), []byte("pcm"))
	}()

	// Wait for playback to start, then interrupt it.
	deadline := time.After(time.Second)
	for !p.IsPlaying() {
		select {
		case <-deadline:
			t.Fatal("playback never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	if err := p.Stop(); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		// Interrupted playback resolves cleanly, like a finished one.
		if err != nil {
			t.Errorf("interrupted Play = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Play did not return after Stop")
	}
}

func TestMockPlayerContextCancel(t *testing.T) {
	p := NewMockPlayer()
	p.PlayDelay = 5 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.Play(ctx, []byte("pcm"))
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("canceled Play = nil, want context error")
		}
	case <-time.After(time.Second):
		t.Fatal("Play did not return after cancel")
	}
}

func TestDuration(t *testing.T) {
	p := &OtoPlayer{config: DefaultConfig()}

	// One second of 16-bit mono at 44100 Hz.
	pcm := make([]byte, 44100*2)
	if got := p.Duration(pcm); got != time.Second {
		t.Errorf("Duration = %v, want 1s", got)
	}
	if got := p.Duration(nil); got != 0 {
		t.Errorf("Duration(nil) = %v, want 0", got)
	}
}
