package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iksnae/procrastinator/internal"
)

// Services bundles the resource endpoints sharing one Client and cache
type Services struct {
	Auth       *AuthService
	Tasks      *TaskService
	Categories *CategoryService
}

// NewServices wires the endpoint groups. cache may be nil to disable caching.
func NewServices(client *Client, cache *internal.ResponseCache) *Services {
	rc := &responseCache{cache: cache}
	return &Services{
		Auth:       &AuthService{client: client, cache: rc},
		Tasks:      &TaskService{client: client, cache: rc},
		Categories: &CategoryService{client: client, cache: rc},
	}
}

// responseCache is a nil-tolerant view of internal.ResponseCache. Cache
// failures are logged and never fail a request.
type responseCache struct {
	cache *internal.ResponseCache
}

func cacheKey(req Request) string {
	key := req.Method + " " + req.Path
	if len(req.Query) > 0 {
		key += "?" + req.Query.Encode()
	}
	return key
}

func (rc *responseCache) store(req Request, v interface{}, tags ...internal.Tag) {
	if rc.cache == nil {
		return
	}
	if err := rc.cache.Store(cacheKey(req), v, tags...); err != nil {
		internal.LogWarn("Failed to cache %s: %v", cacheKey(req), err)
	}
}

// fallback fills v from the cache after a network failure.
func (rc *responseCache) fallback(req Request, v interface{}, err error) bool {
	var netErr *internal.NetworkError
	if rc.cache == nil || !errors.As(err, &netErr) {
		return false
	}
	hit, lerr := rc.cache.Lookup(cacheKey(req), v)
	if lerr != nil {
		internal.LogDebug("Cache lookup for %s failed: %v", cacheKey(req), lerr)
		return false
	}
	if hit {
		internal.LogWarn("API unreachable, showing cached %s", req.Path)
	}
	return hit
}

func (rc *responseCache) invalidate(tags ...internal.Tag) {
	if rc.cache == nil {
		return
	}
	if _, err := rc.cache.Invalidate(tags...); err != nil {
		internal.LogWarn("Failed to invalidate cache: %v", err)
	}
}

func (rc *responseCache) bind(baseURL, userID string) {
	if rc.cache == nil {
		return
	}
	if err := rc.cache.Bind(baseURL, userID); err != nil {
		internal.LogWarn("Failed to bind cache: %v", err)
	}
}

// call performs req and decodes a 2xx body into out. Non-2xx responses
// become *internal.APIError.
func (c *Client) call(ctx context.Context, req Request, out interface{}) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return resp.Error(req)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return resp.Decode(out)
}

// decodeEnvelope decodes body into v, unwrapping {key: ...} when present.
func decodeEnvelope(body []byte, key string, v interface{}) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil {
		if inner, ok := fields[key]; ok && string(inner) != "null" {
			return json.Unmarshal(inner, v)
		}
	}
	return json.Unmarshal(body, v)
}
