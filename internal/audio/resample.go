package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// ResamplePCM converts 16-bit mono PCM from one sample rate to another using
// ffmpeg. Returns the input unchanged when the rates already match.
func ResamplePCM(ctx context.Context, pcm []byte, fromRate, toRate int) ([]byte, error) {
	if fromRate == toRate {
		return pcm, nil
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("no PCM data to resample")
	}

	ctx, cancel := context.WithTimeout(ctx, decodeTimeout)
	defer cancel()

	args := []string{
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", fromRate),
		"-ac", "1",
		"-i", "-",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", toRate),
		"-ac", "1",
		"-",
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stdin = bytes.NewReader(pcm)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ffmpeg resample timeout: %w", ctx.Err())
		}
		return nil, fmt.Errorf("ffmpeg resample failed: %w, stderr: %s", err, stderr.String())
	}
	out := stdout.Bytes()
	if len(out) == 0 {
		return nil, fmt.Errorf("ffmpeg resample produced no output, stderr: %s", stderr.String())
	}
	return out, nil
}
