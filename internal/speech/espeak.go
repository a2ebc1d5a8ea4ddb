package speech

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// espeakBaseWPM is espeak-ng's default speaking rate in words per minute.
// The Options rate multiplier is applied on top of it.
const espeakBaseWPM = 175

// EspeakHost implements SynthHost by shelling out to espeak-ng, which plays
// straight to the audio device. The voice catalog is parsed from
// `espeak-ng --voices` the first time it is requested.
type EspeakHost struct {
	binary string

	voicesOnce sync.Once
	voices     []Voice

	mu  sync.Mutex
	cmd *exec.Cmd
}

var _ SynthHost = (*EspeakHost)(nil)

// NewEspeakHost returns a host backed by the espeak-ng binary.
func NewEspeakHost() *EspeakHost {
	return &EspeakHost{binary: "espeak-ng"}
}

// Available reports whether the espeak-ng binary can be found.
func (h *EspeakHost) Available() error {
	if _, err := exec.LookPath(h.binary); err != nil {
		return fmt.Errorf("%s not found in PATH: %w", h.binary, err)
	}
	return nil
}

// Voices returns the host catalog, loading it on first use.
func (h *EspeakHost) Voices() []Voice {
	h.voicesOnce.Do(func() {
		voices, err := h.loadVoices()
		if err != nil {
			log.Warn("could not load espeak voice catalog", "error", err)
			return
		}
		h.voices = voices
	})
	return h.voices
}

// loadVoices parses `espeak-ng --voices` output. Column layout:
//
//	Pty Language       Age/Gender VoiceName    File    Other Languages
//	 5  en-US           M  english-us   en-us
func (h *EspeakHost) loadVoices() ([]Voice, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, h.binary, "--voices").Output()
	if err != nil {
		return nil, fmt.Errorf("espeak --voices failed: %w", err)
	}

	var voices []Voice
	scanner := bufio.NewScanner(bytes.NewReader(out))
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			// Header row.
			first = false
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		voices = append(voices, Voice{
			ID:   fields[3], // VoiceName is what -v accepts
			Name: fields[3],
			Lang: fields[1],
		})
	}
	return voices, nil
}

// Speak runs espeak-ng and waits for the utterance to finish playing.
func (h *EspeakHost) Speak(ctx context.Context, text, voiceID string, rate float64) error {
	args := []string{
		"-s", fmt.Sprintf("%d", int(espeakBaseWPM*rate)),
	}
	if voiceID != "" {
		args = append(args, "-v", voiceID)
	}
	// Text from stdin so punctuation never becomes an option.
	args = append(args, "--stdin")

	ctx, cancel := context.WithTimeout(ctx, synthTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, h.binary, args...)
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	h.mu.Lock()
	h.cmd = cmd
	h.mu.Unlock()

	err := cmd.Run()

	h.mu.Lock()
	if h.cmd == cmd {
		h.cmd = nil
	}
	h.mu.Unlock()

	if err != nil {
		if ctx.Err() != nil {
			// Canceled or timed out; not a host failure worth surfacing.
			return nil
		}
		return fmt.Errorf("espeak failed: %w, stderr: %s", err, stderr.String())
	}
	return nil
}

// Cancel kills the in-flight espeak process, if any.
func (h *EspeakHost) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cmd != nil && h.cmd.Process != nil {
		_ = h.cmd.Process.Kill()
		h.cmd = nil
	}
}
