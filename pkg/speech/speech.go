// Package speech turns interviewer text into audio using a VOICEVOX engine.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultSpeaker is the VOICEVOX style id used when none is configured.
	DefaultSpeaker = 13

	// DefaultTimeout bounds one synthesis round trip.
	DefaultTimeout = 30 * time.Second

	// ContentType is the media type of synthesized audio.
	ContentType = "audio/wav"

	errorBodyLimit = 512
)

// ErrSynthesisFailed wraps every failure to produce audio.
var ErrSynthesisFailed = errors.New("speech synthesis failed")

// Synthesizer converts text into a WAV waveform.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Config configures a VOICEVOX client.
type Config struct {
	// URL is the engine base URL, e.g. http://localhost:50021.
	URL string

	// Speaker is the VOICEVOX style id.
	Speaker int

	// Timeout bounds one synthesis round trip.
	Timeout time.Duration
}

// VoicevoxClient synthesizes speech with the two-step VOICEVOX API:
// audio_query builds the synthesis parameters, synthesis renders them.
type VoicevoxClient struct {
	baseURL string
	speaker int
	http    *http.Client
}

// NewVoicevoxClient creates a client for the engine at cfg.URL.
func NewVoicevoxClient(cfg Config) (*VoicevoxClient, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("voicevox url is required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("parsing voicevox url: %w", err)
	}
	if cfg.Speaker == 0 {
		cfg.Speaker = DefaultSpeaker
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &VoicevoxClient{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		speaker: cfg.Speaker,
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Synthesize returns WAV audio for text.
func (c *VoicevoxClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	speaker := strconv.Itoa(c.speaker)

	queryURL := c.baseURL + "/audio_query?" + url.Values{
		"text":    {text},
		"speaker": {speaker},
	}.Encode()
	query, err := c.post(ctx, queryURL, "", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: audio_query: %w", ErrSynthesisFailed, err)
	}

	synthURL := c.baseURL + "/synthesis?" + url.Values{"speaker": {speaker}}.Encode()
	audio, err := c.post(ctx, synthURL, "application/json", query)
	if err != nil {
		return nil, fmt.Errorf("%w: synthesis: %w", ErrSynthesisFailed, err)
	}
	return audio, nil
}

func (c *VoicevoxClient) post(ctx context.Context, target, contentType string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, fmt.Errorf("engine returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return data, nil
}

// Verify interface compliance.
var _ Synthesizer = (*VoicevoxClient)(nil)
