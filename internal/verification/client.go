// Package verification checks extension identifiers against a published
// list of verified extensions, caching the list to keep lookups cheap.
package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Client fetches the verified-extension list and answers membership
// queries. The fetched list is cached for a TTL so a page of extensions
// can be checked against a single upstream request.
type Client struct {
	listURL string
	client  *http.Client
	now     func() time.Time
	ttl     time.Duration

	mu        sync.Mutex
	verified  map[string]struct{}
	expiresAt time.Time
}

// NewClient builds a Client against the given list URL. now defaults to
// time.Now and a non-positive ttl falls back to one hour.
func NewClient(listURL string, timeout time.Duration, ttl time.Duration, now func() time.Time) *Client {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &Client{
		listURL: listURL,
		client:  &http.Client{Timeout: timeout},
		now:     now,
		ttl:     ttl,
	}
}

// Verify reports whether the given extension identifier appears on the
// verified list, refreshing the cached list when it has expired.
func (c *Client) Verify(ctx context.Context, extensionID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.verified == nil || c.now().After(c.expiresAt) {
		verified, err := c.fetch(ctx)
		if err != nil {
			return false, err
		}
		c.verified = verified
		c.expiresAt = c.now().Add(c.ttl)
	}

	_, ok := c.verified[extensionID]
	return ok, nil
}

// Invalidate discards the cached list so the next Verify refetches it.
func (c *Client) Invalidate() {
	c.mu.Lock()
	c.verified = nil
	c.mu.Unlock()
}

func (c *Client) fetch(ctx context.Context) (map[string]struct{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch verified list: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch verified list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch verified list: upstream returned status %d", resp.StatusCode)
	}

	var ids []string
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, fmt.Errorf("fetch verified list: decode response: %w", err)
	}

	verified := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		verified[id] = struct{}{}
	}
	return verified, nil
}
