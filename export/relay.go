package export

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Relay endpoints are GET passthroughs: the target image URL is appended as
// an escaped query value and the relay answers with the raw image bytes.
const (
	primaryRelayEndpoint  = "https://images.weserv.nl/?url="
	fallbackRelayEndpoint = "https://api.allorigins.win/raw?url="
)

// maxRelayImageBytes bounds a single relayed image.
const maxRelayImageBytes = 16 << 20

// HTTPRelay fetches image bytes through a passthrough endpoint.
type HTTPRelay struct {
	Label    string
	Endpoint string
	Client   *http.Client
}

// NewHTTPRelay creates a relay for an endpoint prefix.
func NewHTTPRelay(label, endpoint string) *HTTPRelay {
	return &HTTPRelay{
		Label:    label,
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// DefaultRelays returns the ordered relay strategy list: the primary relay
// first, then exactly one fallback.
func DefaultRelays() []Relay {
	return []Relay{
		NewHTTPRelay("weserv", primaryRelayEndpoint),
		NewHTTPRelay("allorigins", fallbackRelayEndpoint),
	}
}

func (r *HTTPRelay) Name() string {
	return r.Label
}

// Fetch retrieves the image bytes and reported content type.
func (r *HTTPRelay) Fetch(ctx context.Context, imageURL string) ([]byte, string, error) {
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.Endpoint+url.QueryEscape(imageURL), nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("relay %s returned status %d", r.Label, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRelayImageBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("relay %s returned an empty body", r.Label)
	}
	if len(data) > maxRelayImageBytes {
		return nil, "", fmt.Errorf("relay %s response exceeds %d bytes", r.Label, maxRelayImageBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}
