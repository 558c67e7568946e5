package messenger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"golang.org/x/sync/singleflight"
)

// profileCacheLimit bounds the in-process name cache. Profiles are tiny and
// stable, so a simple size cap beats TTL bookkeeping here.
const profileCacheLimit = 4096

// profile is the subset of the Graph user profile the bot uses.
type profile struct {
	FirstName string `json:"first_name"`
}

// profileCache memoizes first names per sender id, deduplicating concurrent
// lookups for the same id through singleflight.
type profileCache struct {
	mu    sync.RWMutex
	names map[string]string
	group singleflight.Group
}

// FetchFirstName returns the sender's first name, best effort. An empty
// string with a nil error means the profile had no usable name; callers
// degrade to an unnamed greeting either way.
func (c *Client) FetchFirstName(ctx context.Context, senderID string) (string, error) {
	if c.profiles == nil {
		return "", nil
	}

	c.profiles.mu.RLock()
	name, ok := c.profiles.names[senderID]
	c.profiles.mu.RUnlock()
	if ok {
		if c.metrics != nil {
			c.metrics.RecordProfileLookup("cached")
		}
		return name, nil
	}

	v, err, _ := c.profiles.group.Do(senderID, func() (any, error) {
		return c.fetchProfile(ctx, senderID)
	})
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordProfileLookup("error")
		}
		return "", err
	}

	name = v.(string)
	c.profiles.mu.Lock()
	if len(c.profiles.names) < profileCacheLimit {
		c.profiles.names[senderID] = name
	}
	c.profiles.mu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordProfileLookup("success")
	}
	return name, nil
}

func (c *Client) fetchProfile(ctx context.Context, senderID string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/%s?fields=first_name&access_token=%s",
		c.baseURL, c.version, url.PathEscape(senderID), url.QueryEscape(c.accessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("profile lookup: unexpected status %d", resp.StatusCode)
	}

	var p profile
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&p); err != nil {
		return "", fmt.Errorf("profile lookup: decode: %w", err)
	}

	return p.FirstName, nil
}
