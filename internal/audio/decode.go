package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// decodeTimeout bounds a single ffmpeg invocation.
const decodeTimeout = 15 * time.Second

// DecodeMP3 converts MP3 data to 16-bit little-endian mono PCM at the given
// sample rate using ffmpeg. rate is a playback-speed multiplier applied with
// the atempo filter; 1.0 leaves the audio untouched.
func DecodeMP3(ctx context.Context, mp3 []byte, sampleRate int, rate float64) ([]byte, error) {
	if len(mp3) == 0 {
		return nil, fmt.Errorf("no MP3 data to decode")
	}

	// ffmpeg wants a seekable input for MP3; stdin piping misestimates
	// duration on some builds.
	tmp, err := os.CreateTemp("", "spelldrill-*.mp3")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp MP3 file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(mp3); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write MP3 data: %w", err)
	}
	tmp.Close()

	args := []string{
		"-i", tmp.Name(),
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", "1",
	}
	if rate != 1.0 {
		// atempo only accepts 0.5..2.0.
		clamped := rate
		if clamped < 0.5 {
			clamped = 0.5
		} else if clamped > 2.0 {
			clamped = 2.0
		}
		args = append(args, "-filter:a", fmt.Sprintf("atempo=%.2f", clamped))
	}
	args = append(args, "-")

	ctx, cancel := context.WithTimeout(ctx, decodeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stdin = strings.NewReader("")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ffmpeg decode timeout: %w", ctx.Err())
		}
		return nil, fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, stderr.String())
	}

	pcm := stdout.Bytes()
	if len(pcm) == 0 {
		return nil, fmt.Errorf("ffmpeg produced no PCM output, stderr: %s", stderr.String())
	}
	return pcm, nil
}
