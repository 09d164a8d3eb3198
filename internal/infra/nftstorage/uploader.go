// internal/infra/nftstorage/uploader.go
package nftstorage

import (
	"bytes"
	"context"
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
	DefaultBaseURL = "https://api.nft.storage"
	DefaultGateway = "https://ipfs.io/ipfs/"
)

var (
	ErrNotConfigured = errors.New("nftstorage: api key not configured")
	ErrEmptyContent  = errors.New("nftstorage: content is empty")
	ErrEmptyCID      = errors.New("nftstorage: upload response has empty cid")
)

// HTTPUploader pins content through the nft.storage upload API.
type HTTPUploader struct {
	client  *http.Client
	baseURL string
	gateway string
	apiKey  string
}

func NewHTTPUploader(baseURL, gateway, apiKey string) *HTTPUploader {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	gateway = strings.TrimSpace(gateway)
	if gateway == "" {
		gateway = DefaultGateway
	}
	if !strings.HasSuffix(gateway, "/") {
		gateway += "/"
	}
	return &HTTPUploader{
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL: baseURL,
		gateway: gateway,
		apiKey:  apiKey,
	}
}

// GatewayURL renders a CID as an HTTP gateway link.
func (u *HTTPUploader) GatewayURL(cid string) string {
	return u.gateway + cid
}

// PinFile uploads raw bytes and returns their CID.
func (u *HTTPUploader) PinFile(ctx context.Context, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return u.upload(ctx, data, contentType)
}

// PinJSON uploads v encoded as JSON and returns its CID.
func (u *HTTPUploader) PinJSON(ctx context.Context, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("nftstorage: marshal json: %w", err)
	}
	return u.upload(ctx, b, "application/json")
}

func (u *HTTPUploader) upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if u.apiKey == "" {
		return "", ErrNotConfigured
	}
	if len(data) == 0 {
		return "", ErrEmptyContent
	}

	log.WithFields(log.Fields{"len": len(data), "type": contentType}).Info("[nftstorage] upload start")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+"/upload", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("nftstorage: create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+u.apiKey)

	resp, err := u.client.Do(req)
	if err != nil {
		log.WithError(err).Error("[nftstorage] http request FAILED")
		return "", fmt.Errorf("nftstorage: upload: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.WithField("status", resp.StatusCode).Errorf("[nftstorage] upload FAILED body=%s", string(bodyBytes))
		return "", fmt.Errorf("nftstorage: upload failed: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var res struct {
		OK    bool `json:"ok"`
		Value struct {
			CID string `json:"cid"`
		} `json:"value"`
		Error *struct {
			Name    string `json:"name"`
			Message string `json:"message"`
		} `json:"error,omitempty"`
	}
	if err := json.Unmarshal(bodyBytes, &res); err != nil {
		return "", fmt.Errorf("nftstorage: decode upload response: %w", err)
	}
	if !res.OK {
		msg := "ok=false"
		if res.Error != nil {
			msg = res.Error.Name + ": " + res.Error.Message
		}
		return "", fmt.Errorf("nftstorage: upload rejected: %s", msg)
	}
	if res.Value.CID == "" {
		return "", ErrEmptyCID
	}

	log.WithField("cid", res.Value.CID).Info("[nftstorage] upload OK")
	return res.Value.CID, nil
}
