package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/dgnsrekt/spelldrill/internal/cache"
)

// DefaultModelBaseURL is the content-addressed voice model repository the
// local backend downloads from.
const DefaultModelBaseURL = "https://huggingface.co/rhasspy/piper-voices/resolve/main"

// modelDownloader fetches voice model files into a ModelStore, reporting
// fractional progress while the model body streams in.
type modelDownloader struct {
	baseURL string
	models  *cache.ModelStore
	client  *http.Client
}

func newModelDownloader(baseURL string, models *cache.ModelStore) *modelDownloader {
	if baseURL == "" {
		baseURL = DefaultModelBaseURL
	}
	return &modelDownloader{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		models:  models,
		// No timeout on the whole download: model files are large and a
		// stuck transfer only blocks this provider's readiness, not the UI.
		client: &http.Client{},
	}
}

// modelURL derives the repository path for a voice id. Ids are shaped like
// en_US-hfc_female-medium, stored under <lang>/<locale>/<name>/<quality>/.
func (d *modelDownloader) modelURL(voiceID, suffix string) (string, error) {
	parts := strings.Split(voiceID, "-")
	if len(parts) < 3 {
		return "", fmt.Errorf("%w: %s", ErrUnknownVoice, voiceID)
	}
	locale := parts[0]
	quality := parts[len(parts)-1]
	name := strings.Join(parts[1:len(parts)-1], "-")
	lang := strings.SplitN(locale, "_", 2)[0]
	return fmt.Sprintf("%s/%s/%s/%s/%s/%s%s",
		d.baseURL, lang, locale, name, quality, voiceID, suffix), nil
}

// fetch downloads the model and its config for a voice. The config is tiny
// and downloaded first so a failure is caught before the large transfer.
func (d *modelDownloader) fetch(ctx context.Context, voiceID string, progress ProgressFunc) error {
	cfgURL, err := d.modelURL(voiceID, ".onnx.json")
	if err != nil {
		return err
	}
	if err := d.download(ctx, cfgURL, d.models.ConfigPath(voiceID), nil); err != nil {
		return fmt.Errorf("voice config download failed: %w", err)
	}

	modelURL, err := d.modelURL(voiceID, ".onnx")
	if err != nil {
		return err
	}
	if err := d.download(ctx, modelURL, d.models.ModelPath(voiceID), progress); err != nil {
		// Leave no half-complete model behind.
		_ = d.models.Remove(voiceID)
		return fmt.Errorf("voice model download failed: %w", err)
	}
	return nil
}

// download streams a URL to a destination path via a temp file, invoking
// progress with loaded/total on every chunk.
func (d *modelDownloader) download(ctx context.Context, url, dest string, progress ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP status %d for %s", resp.StatusCode, url)
	}

	tmp, err := os.CreateTemp(d.models.Dir(), "download-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	total := resp.ContentLength
	var loaded int64
	buf := make([]byte, 64*1024)
	start := time.Now()
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := tmp.Write(buf[:n]); err != nil {
				tmp.Close()
				return err
			}
			loaded += int64(n)
			if progress != nil && total > 0 {
				progress(float64(loaded) / float64(total))
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			tmp.Close()
			return readErr
		}
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return err
	}
	log.Debug("downloaded", "url", url, "size", humanize.Bytes(uint64(loaded)), "elapsed", time.Since(start))
	return nil
}
