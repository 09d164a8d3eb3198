// internal/infra/stability/client.go
package stability

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultAPIHost  = "https://api.stability.ai"
	DefaultEngineID = "stable-diffusion-xl-1024-v1-0"
)

var (
	ErrNotConfigured = errors.New("stability: api key not configured")
	ErrEmptyPrompt   = errors.New("stability: prompt is empty")
	ErrNoArtifacts   = errors.New("stability: response has no artifacts")
)

// Client calls the text-to-image endpoint of the Stability REST API.
type Client struct {
	client   *http.Client
	apiHost  string
	engineID string
	apiKey   string
}

func NewClient(apiHost, engineID, apiKey string) *Client {
	apiHost = strings.TrimRight(strings.TrimSpace(apiHost), "/")
	if apiHost == "" {
		apiHost = DefaultAPIHost
	}
	if strings.TrimSpace(engineID) == "" {
		engineID = DefaultEngineID
	}
	return &Client{
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		apiHost:  apiHost,
		engineID: engineID,
		apiKey:   apiKey,
	}
}

type textPrompt struct {
	Text string `json:"text"`
}

type generateRequest struct {
	TextPrompts []textPrompt `json:"text_prompts"`
}

type generateResponse struct {
	Artifacts []struct {
		Base64       string `json:"base64"`
		Seed         int64  `json:"seed"`
		FinishReason string `json:"finishReason"`
	} `json:"artifacts"`
}

// Generate returns the PNG bytes of the first artifact generated for prompt.
func (c *Client) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	body, err := json.Marshal(generateRequest{TextPrompts: []textPrompt{{Text: prompt}}})
	if err != nil {
		return nil, fmt.Errorf("stability: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/generation/%s/text-to-image", c.apiHost, c.engineID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("stability: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	log.WithField("engine", c.engineID).Info("[stability] text-to-image start")

	resp, err := c.client.Do(req)
	if err != nil {
		log.WithError(err).Error("[stability] http request FAILED")
		return nil, fmt.Errorf("stability: text-to-image: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.WithField("status", resp.StatusCode).Error("[stability] text-to-image FAILED")
		return nil, fmt.Errorf("stability: non-200 response: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var res generateResponse
	if err := json.Unmarshal(respBody, &res); err != nil {
		return nil, fmt.Errorf("stability: decode response: %w", err)
	}
	if len(res.Artifacts) == 0 {
		return nil, ErrNoArtifacts
	}

	img, err := base64.StdEncoding.DecodeString(res.Artifacts[0].Base64)
	if err != nil {
		return nil, fmt.Errorf("stability: decode artifact: %w", err)
	}

	log.WithFields(log.Fields{"bytes": len(img), "artifacts": len(res.Artifacts)}).Info("[stability] text-to-image OK")
	return img, nil
}
