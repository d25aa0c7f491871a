package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const stabilityEndpoint = "https://api.stability.ai/v1/generation/stable-diffusion-xl-1024-v1-0/text-to-image"

const stabilityNegativePrompt = "blurry, low quality, distorted, text, watermark, signature, ugly, deformed"

// StabilityProvider calls the Stability AI SDXL text-to-image API and returns
// the result as a base64 data URL.
type StabilityProvider struct {
	apiKey string
	client *http.Client
}

func NewStabilityProvider(apiKey string) *StabilityProvider {
	return &StabilityProvider{
		apiKey: apiKey,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *StabilityProvider) Name() string {
	return "stability"
}

type stabilityTextPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

type stabilityRequest struct {
	TextPrompts []stabilityTextPrompt `json:"text_prompts"`
	CfgScale    float64               `json:"cfg_scale"`
	Width       int                   `json:"width"`
	Height      int                   `json:"height"`
	Steps       int                   `json:"steps"`
	Samples     int                   `json:"samples"`
	StylePreset string                `json:"style_preset,omitempty"`
}

type stabilityResponse struct {
	Artifacts []struct {
		Base64 string `json:"base64"`
	} `json:"artifacts"`
}

func (p *StabilityProvider) Generate(ctx context.Context, prompt string, kind ImageKind) (string, error) {
	if p.apiKey == "" {
		return "", ErrNoAPIKey
	}

	reqBody := stabilityRequest{
		TextPrompts: []stabilityTextPrompt{
			{Text: prompt, Weight: 1},
			{Text: stabilityNegativePrompt, Weight: -1},
		},
		Samples: 1,
	}
	switch kind {
	case ImageKindStory:
		reqBody.Width = 1344
		reqBody.Height = 768
		reqBody.CfgScale = 8
		reqBody.Steps = 40
		reqBody.StylePreset = "cinematic"
	default:
		reqBody.Width = 1024
		reqBody.Height = 1024
		reqBody.CfgScale = 7
		reqBody.Steps = 30
		reqBody.StylePreset = "fantasy-art"
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal stability request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, stabilityEndpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create stability request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("stability request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read stability response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("stability returned status %d: %s", resp.StatusCode, string(body))
	}

	var result stabilityResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode stability response: %w", err)
	}
	if len(result.Artifacts) == 0 {
		return "", errors.New("stability returned no artifacts")
	}

	return "data:image/png;base64," + result.Artifacts[0].Base64, nil
}
