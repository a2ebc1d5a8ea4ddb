package speech

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/dgnsrekt/spelldrill/internal/audio"
	"github.com/dgnsrekt/spelldrill/internal/cache"
)

// testLocalProvider builds a local provider with fake download and synthesis
// steps. The fake fetch writes model files so Has reports the voice present.
func testLocalProvider(t *testing.T) (*LocalProvider, *audio.MockPlayer, *cache.ModelStore) {
	t.Helper()
	models, err := cache.NewModelStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	player := audio.NewMockPlayer()
	p := &LocalProvider{
		models: models,
		player: player,
	}
	p.fetch = func(_ context.Context, voiceID string, progress ProgressFunc) error {
		if progress != nil {
			progress(0.5)
			progress(1)
		}
		if err := os.WriteFile(models.ModelPath(voiceID), []byte("model"), 0o644); err != nil {
			return err
		}
		return os.WriteFile(models.ConfigPath(voiceID), []byte("{}"), 0o644)
	}
	p.synth = func(_ context.Context, text, _, _ string, _ float64) ([]byte, error) {
		return []byte("pcm:" + text), nil
	}
	return p, player, models
}

func TestLocalInitializeDownloadsOnce(t *testing.T) {
	p, _, models := testLocalProvider(t)
	const voice = "en_US-amy-medium"

	fetches := 0
	inner := p.fetch
	p.fetch = func(ctx context.Context, id string, progress ProgressFunc) error {
		fetches++
		return inner(ctx, id, progress)
	}

	if err := p.Initialize(context.Background(), voice); err != nil {
		t.Fatal(err)
	}
	if !p.IsReady() {
		t.Error("provider not ready after Initialize")
	}
	if !models.Has(voice) {
		t.Error("model files missing after Initialize")
	}

	// Same voice again: no second download.
	if err := p.Initialize(context.Background(), voice); err != nil {
		t.Fatal(err)
	}
	if fetches != 1 {
		t.Errorf("fetched %d times, want 1", fetches)
	}
}

func TestLocalInitializeUnknownVoice(t *testing.T) {
	p, _, _ := testLocalProvider(t)

	err := p.Initialize(context.Background(), "klingon-basic")
	if !errors.Is(err, ErrUnknownVoice) {
		t.Errorf("Initialize = %v, want ErrUnknownVoice", err)
	}
	if p.IsReady() {
		t.Error("provider must not be ready after a failed Initialize")
	}
}

func TestLocalInitializeFailureLeavesNotReady(t *testing.T) {
	p, _, _ := testLocalProvider(t)
	p.fetch = func(context.Context, string, ProgressFunc) error {
		return errors.New("network down")
	}

	err := p.Initialize(context.Background(), "en_US-amy-medium")
	if !errors.Is(err, ErrInitFailed) {
		t.Errorf("Initialize = %v, want ErrInitFailed", err)
	}
	if p.IsReady() || p.IsLoading() {
		t.Error("provider should be neither ready nor loading after failure")
	}
}

func TestLocalInitializeReportsProgress(t *testing.T) {
	p, _, _ := testLocalProvider(t)

	var ticks []float64
	p.SetProgressCallback(func(f float64) { ticks = append(ticks, f) })

	if err := p.Initialize(context.Background(), "en_US-amy-medium"); err != nil {
		t.Fatal(err)
	}
	if len(ticks) == 0 {
		t.Fatal("no progress reported")
	}
	if p.LoadProgress() != 1 {
		t.Errorf("LoadProgress = %v, want 1 when done", p.LoadProgress())
	}
}

func TestLocalSpeakLazilyInitializes(t *testing.T) {
	p, player, _ := testLocalProvider(t)

	err := p.Speak(context.Background(), "cat", Options{Speed: SpeedNormal, Accent: AccentUS})
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsReady() {
		t.Error("Speak should have initialized the accent's default voice")
	}
	if player.PlayCount() != 1 {
		t.Errorf("played %d times, want 1", player.PlayCount())
	}
}

func TestLocalSpeakUnsupportedAccent(t *testing.T) {
	p, player, _ := testLocalProvider(t)

	err := p.Speak(context.Background(), "cat", Options{Speed: SpeedNormal, Accent: AccentTW})
	if !errors.Is(err, ErrAccentUnsupported) {
		t.Errorf("Speak = %v, want ErrAccentUnsupported", err)
	}
	if player.PlayCount() != 0 {
		t.Error("nothing should be played for an unsupported accent")
	}
}

func TestLocalSpeakEmptyText(t *testing.T) {
	p, _, _ := testLocalProvider(t)

	if err := p.Speak(context.Background(), "  ", Options{Accent: AccentUS}); !errors.Is(err, ErrEmptyText) {
		t.Errorf("Speak = %v, want ErrEmptyText", err)
	}
}

func TestLocalSpeakUsesAudioCache(t *testing.T) {
	p, player, _ := testLocalProvider(t)
	audioCache, err := cache.NewDiskCache(t.TempDir(), 1<<20, 0)
	if err != nil {
		t.Fatal(err)
	}
	p.audioCache = audioCache

	synths := 0
	inner := p.synth
	p.synth = func(ctx context.Context, text, model, config string, rate float64) ([]byte, error) {
		synths++
		return inner(ctx, text, model, config, rate)
	}

	opts := Options{Speed: SpeedNormal, Accent: AccentUS}
	if err := p.Speak(context.Background(), "cat", opts); err != nil {
		t.Fatal(err)
	}
	if err := p.Speak(context.Background(), "cat", opts); err != nil {
		t.Fatal(err)
	}

	if synths != 1 {
		t.Errorf("synthesized %d times, want 1 (second hit cached)", synths)
	}
	if player.PlayCount() != 2 {
		t.Errorf("played %d times, want 2", player.PlayCount())
	}

	// A different speed is a different cache entry.
	if err := p.Speak(context.Background(), "cat", Options{Speed: SpeedSlow, Accent: AccentUS}); err != nil {
		t.Fatal(err)
	}
	if synths != 2 {
		t.Errorf("synthesized %d times after speed change, want 2", synths)
	}
}

func TestLocalSynthesisErrorPropagates(t *testing.T) {
	p, player, _ := testLocalProvider(t)
	p.synth = func(context.Context, string, string, string, float64) ([]byte, error) {
		return nil, errors.New("bad model")
	}

	err := p.Speak(context.Background(), "cat", Options{Speed: SpeedNormal, Accent: AccentUS})
	if !errors.Is(err, ErrSynthesisFailed) {
		t.Errorf("Speak = %v, want ErrSynthesisFailed", err)
	}
	if player.PlayCount() != 0 {
		t.Error("nothing should be played when synthesis fails")
	}
}

func TestLocalRemoveVoiceResetsActive(t *testing.T) {
	p, _, models := testLocalProvider(t)
	const voice = "en_US-amy-medium"

	if err := p.Initialize(context.Background(), voice); err != nil {
		t.Fatal(err)
	}
	if err := p.RemoveVoice(voice); err != nil {
		t.Fatal(err)
	}
	if p.IsReady() {
		t.Error("provider should not stay ready after its voice is removed")
	}
	if models.Has(voice) {
		t.Error("model files should be gone")
	}
}

func TestLocalCancelStopsPlayer(t *testing.T) {
	p, player, _ := testLocalProvider(t)
	p.Cancel()
	p.Cancel()
	if player.StopCount() != 2 {
		t.Errorf("stop count = %d, want 2 (Cancel is idempotent)", player.StopCount())
	}
}
