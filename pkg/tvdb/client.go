package tvdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const defaultBaseURL = "https://api.thetvdb.com"

// Client is a TVDB API v2 client with JWT authentication and per-locale
// response caching.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
	store      Store
	gw         *gateway

	// JWT token management: flight guarantees a single login request
	// across concurrent callers; mu guards the cached value.
	flight singleflight.Group
	mu     sync.RWMutex
	token  string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "tvdb")
	}
}

// WithStore sets the cache store. The default is an in-process map; pass a
// persistent store to share responses across runs.
func WithStore(store Store) Option {
	return func(c *Client) {
		c.store = store
	}
}

// New creates a new TVDB API v2 client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = newMemoryStore()
	}
	c.gw = &gateway{store: c.store, log: c.log}
	return c
}

// authToken returns the session token, performing the login exchange on
// first use. Only one login request is ever in flight; concurrent callers
// share its outcome. The token is kept for the life of the process unless
// the API rejects it.
func (c *Client) authToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		return token, nil
	}

	v, err, _ := c.flight.Do("login", func() (any, error) {
		// Another caller may have stored a token before this flight started.
		c.mu.RLock()
		token := c.token
		c.mu.RUnlock()
		if token != "" {
			return token, nil
		}
		return c.login(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// login performs the credential exchange and caches the resulting token.
func (c *Client) login(ctx context.Context) (string, error) {
	doc, err := c.postJSON(ctx, "login", map[string]string{"apikey": c.apiKey})
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	token := doc.str("token")
	if token == "" {
		return "", errors.New("login response missing token")
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	if c.log != nil {
		c.log.Debug("authenticated with TVDB")
	}

	return token, nil
}

// invalidateToken clears the cached token after a 401 so the next request
// logs in again.
func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// postJSON performs an uncached POST and decodes the response. Used only
// for login, which must never hit the cache since the body carries the
// API key.
func (c *Client) postJSON(ctx context.Context, path string, body any) (document, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return decodeDocument(data)
}

// requestJSON performs an authenticated, localized GET through the cache.
func (c *Client) requestJSON(ctx context.Context, path, locale string, ttl time.Duration) (document, error) {
	key := Key{Endpoint: path, Locale: locale}
	body, err := c.gw.fetch(ctx, key, ttl, func(ctx context.Context, stale *Entry) (Entry, bool, error) {
		return c.fetchEntry(ctx, path, locale, stale)
	})
	if err != nil {
		return nil, err
	}
	return decodeDocument(body)
}

// fetchEntry performs the network fetch behind requestJSON, re-logging-in
// once when the token is rejected.
func (c *Client) fetchEntry(ctx context.Context, path, locale string, stale *Entry) (Entry, bool, error) {
	resp, err := c.get(ctx, path, locale, stale)
	if err != nil {
		return Entry{}, false, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()

		if c.log != nil {
			c.log.Debug("token rejected, re-authenticating")
		}
		c.invalidateToken()

		if resp, err = c.get(ctx, path, locale, stale); err != nil {
			return Entry{}, false, err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && stale != nil {
		return Entry{}, true, nil
	}
	if err := checkResponse(resp); err != nil {
		return Entry{}, false, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Entry{}, false, fmt.Errorf("read response: %w", err)
	}
	return Entry{Body: body, ETag: resp.Header.Get("ETag"), FetchedAt: time.Now()}, false, nil
}

// get builds and executes one authenticated GET. A stale cache entry makes
// the request conditional.
func (c *Client) get(ctx context.Context, path, locale string, stale *Entry) (*http.Response, error) {
	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if locale != "" {
		req.Header.Set("Accept-Language", locale)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if stale != nil {
		if stale.ETag != "" {
			req.Header.Set("If-None-Match", stale.ETag)
		}
		req.Header.Set("If-Modified-Since", stale.FetchedAt.UTC().Format(http.TimeFormat))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

// Languages returns the abbreviations of all languages the API can serve.
func (c *Client) Languages(ctx context.Context) ([]string, error) {
	doc, err := c.requestJSON(ctx, "languages", "", ttlMonth)
	if err != nil {
		return nil, err
	}

	var langs []string
	for _, it := range doc.objects("data") {
		if abbr := it.str("abbreviation"); abbr != "" {
			langs = append(langs, abbr)
		}
	}
	return langs, nil
}

// checkResponse maps HTTP status codes to sentinel errors.
func checkResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return fmt.Errorf("TVDB API error: %s", resp.Status)
	}
}
