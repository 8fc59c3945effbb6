// Package tts provides a client for the external speech synthesis service.
package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"campaign_audio_backend/platform/config"
)

// SynthesisRequest asks the service to render one message with one voice.
// When LLMEnabled is set the service may rewrite the text before
// synthesis and reports both versions back.
type SynthesisRequest struct {
	Text       string `json:"text"`
	VoicePath  string `json:"voice_path"`
	LLMEnabled bool   `json:"llm_enabled"`
}

// SynthesisResult carries the rendered audio and, when rewriting was
// enabled, the input/output transcript pair.
type SynthesisResult struct {
	Audio      []byte
	InputText  string
	OutputText string
}

type synthesisResponse struct {
	AudioBase64 string `json:"audio_base64"`
	InputText   string `json:"input_text"`
	OutputText  string `json:"output_text"`
}

// Synthesizer is the synthesis port the job worker depends on.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (SynthesisResult, error)
}

// Client is an HTTP client for the speech synthesis service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new synthesis client.
func NewClient(cfg config.TTSConfig) *Client {
	timeout := cfg.GetTTSTimeout()
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.GetTTSServiceURL(), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Synthesize renders one message to audio.
func (c *Client) Synthesize(ctx context.Context, req SynthesisRequest) (SynthesisResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return SynthesisResult{}, fmt.Errorf("text is required")
	}

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("failed to marshal synthesis request: %w", err)
	}

	url := c.baseURL + "/api/synthesize"
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("failed to create synthesis request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("failed to read synthesis response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return SynthesisResult{}, fmt.Errorf("synthesis service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded synthesisResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return SynthesisResult{}, fmt.Errorf("failed to decode synthesis response: %w", err)
	}
	audio, err := base64.StdEncoding.DecodeString(decoded.AudioBase64)
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("failed to decode synthesis audio: %w", err)
	}
	if len(audio) == 0 {
		return SynthesisResult{}, fmt.Errorf("synthesis service returned no audio")
	}

	return SynthesisResult{
		Audio:      audio,
		InputText:  decoded.InputText,
		OutputText: decoded.OutputText,
	}, nil
}

// Compile-time check that Client implements Synthesizer.
var _ Synthesizer = (*Client)(nil)
