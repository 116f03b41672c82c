// Package management talks to the browser-side bridge that exposes the
// installed extensions and lets the scheduler flip their enabled state.
package management

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Extension describes one installed extension as reported by the bridge.
type Extension struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// Controller changes an extension's enabled state.
type Controller interface {
	SetEnabled(ctx context.Context, extensionID string, enabled bool) error
}

// Lister enumerates installed extensions.
type Lister interface {
	ListExtensions(ctx context.Context) ([]Extension, error)
}

// BridgeClient is an HTTP client for the management bridge.
type BridgeClient struct {
	baseURL string
	client  *http.Client
}

// NewBridgeClient builds a client against the given bridge base URL.
func NewBridgeClient(baseURL string, timeout time.Duration) *BridgeClient {
	return &BridgeClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// ListExtensions fetches the installed extensions from the bridge.
func (c *BridgeClient) ListExtensions(ctx context.Context) ([]Extension, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/extensions", nil)
	if err != nil {
		return nil, fmt.Errorf("list extensions: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list extensions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list extensions: bridge returned status %d", resp.StatusCode)
	}

	var extensions []Extension
	if err := json.NewDecoder(resp.Body).Decode(&extensions); err != nil {
		return nil, fmt.Errorf("list extensions: decode response: %w", err)
	}
	return extensions, nil
}

// SetEnabled asks the bridge to enable or disable one extension.
func (c *BridgeClient) SetEnabled(ctx context.Context, extensionID string, enabled bool) error {
	body, err := json.Marshal(map[string]bool{"enabled": enabled})
	if err != nil {
		return fmt.Errorf("set enabled: %w", err)
	}

	endpoint := c.baseURL + "/extensions/" + url.PathEscape(extensionID) + "/enabled"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("set enabled: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("set enabled: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("set enabled: bridge returned status %d for extension %s", resp.StatusCode, extensionID)
	}
	return nil
}
