package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxImageBytes caps how much image data a provider response may carry.
const maxImageBytes = 8 << 20

// HTTPAssetProvider renders images through a hosted image-generation
// endpoint. The endpoint takes {"prompt": "..."} and responds with raw
// image bytes.
type HTTPAssetProvider struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

// NewHTTPAssetProvider returns a provider with a 60s request timeout.
func NewHTTPAssetProvider(endpoint, apiKey string) *HTTPAssetProvider {
	return &HTTPAssetProvider{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// RenderImage implements AssetProvider.
func (p *HTTPAssetProvider) RenderImage(ctx context.Context, prompt string) ([]byte, error) {
	if p.Endpoint == "" {
		return nil, fmt.Errorf("no asset endpoint configured")
	}

	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return nil, fmt.Errorf("encoding render request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("render request returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("reading rendered image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("render request returned an empty image")
	}
	return data, nil
}
