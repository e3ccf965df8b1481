package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TranscriberDisabledText is returned as the transcript when no speech model
// could be loaded. Callers grade it like any other answer text.
const TranscriberDisabledText = "Error: Whisper model not loaded."

// Transcriber turns a recorded answer into text. Transcribe blocks for the
// whole inference run.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
	Ready() bool
}

// LoadTranscriber runs load once at startup. On failure it logs a warning and
// returns a disabled transcriber instead of an error.
func LoadTranscriber(ctx context.Context, name string, load func(ctx context.Context) (Transcriber, error)) Transcriber {
	t, err := load(ctx)
	if err != nil {
		log.Printf("⚠️  Speech model %q failed to load: %v", name, err)
		return DisabledTranscriber()
	}
	log.Printf("✅ Speech model %q loaded", name)
	return t
}

type disabledTranscriber struct{}

func DisabledTranscriber() Transcriber { return disabledTranscriber{} }

func (disabledTranscriber) Ready() bool { return false }

func (disabledTranscriber) Transcribe(context.Context, string) (string, error) {
	return TranscriberDisabledText, nil
}

// WhisperTranscriber talks to a local Whisper server exposing the
// OpenAI-compatible /v1/audio/transcriptions endpoint.
type WhisperTranscriber struct {
	url    string
	model  string
	client *http.Client
}

var _ Transcriber = (*WhisperTranscriber)(nil)

// NewWhisperTranscriber probes the server's health endpoint and fails if the
// model is not being served.
func NewWhisperTranscriber(ctx context.Context, url, model string, timeout time.Duration) (*WhisperTranscriber, error) {
	w := &WhisperTranscriber{
		url:    url,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
	if err := w.probe(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	return w, nil
}

func (w *WhisperTranscriber) probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.url+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("whisper health check returned status %d", resp.StatusCode)
	}
	return nil
}

func (w *WhisperTranscriber) Ready() bool { return true }

func (w *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to open audio: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", fmt.Errorf("failed to build transcription form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("failed to read audio: %w", err)
	}
	_ = mw.WriteField("model", w.model)
	_ = mw.WriteField("response_format", "json")
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to build transcription form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url+"/v1/audio/transcriptions", &body)
	if err != nil {
		return "", &ServiceFailure{Op: "transcription request", Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := w.client.Do(req)
	if err != nil {
		return "", &ServiceFailure{Op: "transcription request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ServiceFailure{Op: "transcription request", Err: fmt.Errorf("whisper returned status %d", resp.StatusCode)}
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &ServiceFailure{Op: "decode transcription", Err: err}
	}

	return CleanTranscript(out.Text), nil
}

// CleanTranscript trims every line of a transcript, drops blank ones and
// joins the rest with single spaces. Whisper emits one line per segment.
func CleanTranscript(text string) string {
	var cleaned []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, " ")
}
