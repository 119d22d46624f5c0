package tvdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTVDB creates a test server that simulates the TVDB API.
func mockTVDB(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.URL.Path]; ok {
			handler(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)
	return server
}

// rawJSON returns a handler serving a fixed JSON body.
func rawJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}
}

// loginHandler returns a handler that validates the API key and returns a
// token.
func loginHandler(validAPIKey, token string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var body struct {
			APIKey string `json:"apikey"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if body.APIKey != validAPIKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"token":%q}`, token)
	}
}

// requireAuth wraps a handler with token validation.
func requireAuth(validToken string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+validToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		handler(w, r)
	}
}

func TestNew(t *testing.T) {
	client := New("test-api-key")
	assert.NotNil(t, client)
	assert.Equal(t, "test-api-key", client.apiKey)
	assert.Equal(t, defaultBaseURL, client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.IsType(t, &memoryStore{}, client.store)
}

func TestNew_WithOptions(t *testing.T) {
	customHTTP := &http.Client{Timeout: 5 * time.Second}
	customStore := newMemoryStore()

	client := New("test-key",
		WithBaseURL("https://custom.url"),
		WithHTTPClient(customHTTP),
		WithStore(customStore),
	)

	assert.Equal(t, "https://custom.url", client.baseURL)
	assert.Same(t, customHTTP, client.httpClient)
	assert.Same(t, customStore, client.store)
}

func TestLogin_Success(t *testing.T) {
	server := mockTVDB(t, map[string]http.HandlerFunc{
		"/login": loginHandler("valid-key", "jwt-token-123"),
	})

	client := New("valid-key", WithBaseURL(server.URL))
	token, err := client.authToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "jwt-token-123", token)
	assert.Equal(t, "jwt-token-123", client.token)
}

func TestLogin_InvalidAPIKey(t *testing.T) {
	server := mockTVDB(t, map[string]http.HandlerFunc{
		"/login": loginHandler("valid-key", "jwt-token-123"),
	})

	client := New("wrong-key", WithBaseURL(server.URL))
	_, err := client.authToken(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogin_MissingToken(t *testing.T) {
	server := mockTVDB(t, map[string]http.HandlerFunc{
		"/login": rawJSON(`{}`),
	})

	client := New("api-key", WithBaseURL(server.URL))
	_, err := client.authToken(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing token")
}

func TestLogin_SingleFlight(t *testing.T) {
	var loginCount atomic.Int32

	server := mockTVDB(t, map[string]http.HandlerFunc{
		"/login": func(w http.ResponseWriter, r *http.Request) {
			loginCount.Add(1)
			// Widen the window so all callers join the same flight.
			time.Sleep(100 * time.Millisecond)
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"token":"shared-token"}`)
		},
	})

	client := New("api-key", WithBaseURL(server.URL))

	const callers = 10
	tokens := make([]string, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens[i], errs[i] = client.authToken(context.Background())
		}()
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "shared-token", tokens[i])
	}
	assert.Equal(t, int32(1), loginCount.Load(), "concurrent callers should share one login request")
}

func TestLogin_FailureSharedThenRetried(t *testing.T) {
	var loginCount atomic.Int32
	var fail atomic.Bool
	fail.Store(true)

	server := mockTVDB(t, map[string]http.HandlerFunc{
		"/login": func(w http.ResponseWriter, r *http.Request) {
			loginCount.Add(1)
			if fail.Load() {
				time.Sleep(50 * time.Millisecond)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"token":"second-try"}`)
		},
	})

	client := New("api-key", WithBaseURL(server.URL))

	const callers = 5
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = client.authToken(context.Background())
		}()
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.Error(t, errs[i])
	}
	assert.Equal(t, int32(1), loginCount.Load(), "concurrent callers should share one failed login")

	// The failed attempt must not poison the client: the next call retries.
	fail.Store(false)
	token, err := client.authToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second-try", token)
	assert.Equal(t, int32(2), loginCount.Load())
}

func TestTokenRefresh_On401(t *testing.T) {
	var loginCount atomic.Int32
	var requestCount atomic.Int32

	server := mockTVDB(t, map[string]http.HandlerFunc{
		"/login": func(w http.ResponseWriter, r *http.Request) {
			token := "token-1"
			if loginCount.Add(1) > 1 {
				token = "token-2"
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"token":%q}`, token)
		},
		"/series/123": func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")

			// First token is treated as expired.
			if requestCount.Add(1) == 1 && auth == "Bearer token-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if auth == "Bearer token-2" {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"data":{"seriesName":"Test Series"}}`)
				return
			}
			w.WriteHeader(http.StatusUnauthorized)
		},
	})

	client := New("api-key", WithBaseURL(server.URL))
	info, err := client.GetSeriesInfo(context.Background(), SearchResult{ID: 123}, "")

	require.NoError(t, err)
	assert.Equal(t, "Test Series", info.Name)
	assert.Equal(t, int32(2), loginCount.Load(), "should have logged in twice")
	assert.Equal(t, int32(2), requestCount.Load(), "should have made two requests")
}

func TestRequestHeaders(t *testing.T) {
	const token = "test-token"

	server := mockTVDB(t, map[string]http.HandlerFunc{
		"/login": loginHandler("api-key", token),
		"/series/7": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			assert.Equal(t, "de", r.Header.Get("Accept-Language"))
			assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"data":{"seriesName":"Sendung"}}`)
		},
		"/languages": func(w http.ResponseWriter, r *http.Request) {
			_, hasLang := r.Header["Accept-Language"]
			assert.False(t, hasLang, "unlocalized requests must not send Accept-Language")

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"data":[{"abbreviation":"en"}]}`)
		},
	})

	client := New("api-key", WithBaseURL(server.URL))

	_, err := client.GetSeriesInfo(context.Background(), SearchResult{ID: 7}, "de")
	require.NoError(t, err)

	_, err = client.Languages(context.Background())
	require.NoError(t, err)
}

func TestLanguages(t *testing.T) {
	const token = "test-token"

	server := mockTVDB(t, map[string]http.HandlerFunc{
		"/login": loginHandler("api-key", token),
		"/languages": requireAuth(token, rawJSON(
			`{"data":[{"abbreviation":"en"},{"abbreviation":"de"},{"id":99},{"abbreviation":"fr"}]}`,
		)),
	})

	client := New("api-key", WithBaseURL(server.URL))
	langs, err := client.Languages(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"en", "de", "fr"}, langs)
}

func TestConditionalRefetch_NotModified(t *testing.T) {
	const token = "test-token"
	var conditional atomic.Bool

	server := mockTVDB(t, map[string]http.HandlerFunc{
		"/login": loginHandler("api-key", token),
		"/languages": requireAuth(token, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("If-None-Match") == "v1" && r.Header.Get("If-Modified-Since") != "" {
				conditional.Store(true)
				w.WriteHeader(http.StatusNotModified)
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
		}),
	})

	store := newMemoryStore()
	key := Key{Endpoint: "languages"}
	err := store.Set(context.Background(), key, Entry{
		Body:      []byte(`{"data":[{"abbreviation":"en"}]}`),
		ETag:      "v1",
		FetchedAt: time.Now().Add(-45 * 24 * time.Hour), // past every TTL
	})
	require.NoError(t, err)

	client := New("api-key", WithBaseURL(server.URL), WithStore(store))
	langs, err := client.Languages(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"en"}, langs, "stale body should be served after a 304")
	assert.True(t, conditional.Load(), "expired entry should trigger a conditional request")

	refreshed, ok := store.Get(context.Background(), key)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), refreshed.FetchedAt, time.Minute, "304 should refresh the entry timestamp")
}

func TestCacheHit_SkipsNetworkAndLogin(t *testing.T) {
	var requests atomic.Int32

	server := mockTVDB(t, map[string]http.HandlerFunc{
		"/login": func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		},
		"/languages": func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		},
	})

	store := newMemoryStore()
	err := store.Set(context.Background(), Key{Endpoint: "languages"}, Entry{
		Body:      []byte(`{"data":[{"abbreviation":"en"}]}`),
		FetchedAt: time.Now(),
	})
	require.NoError(t, err)

	client := New("api-key", WithBaseURL(server.URL), WithStore(store))
	langs, err := client.Languages(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"en"}, langs)
	assert.Zero(t, requests.Load(), "a fresh cache entry must be served without network traffic")
}

func TestLocaleCachePartitioning(t *testing.T) {
	const token = "test-token"

	server := mockTVDB(t, map[string]http.HandlerFunc{
		"/login": loginHandler("api-key", token),
		"/series/5": requireAuth(token, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"data":{"seriesName":%q}}`, "name-"+r.Header.Get("Accept-Language"))
		}),
	})

	client := New("api-key", WithBaseURL(server.URL))

	en, err := client.GetSeriesInfo(context.Background(), SearchResult{ID: 5}, "en")
	require.NoError(t, err)
	de, err := client.GetSeriesInfo(context.Background(), SearchResult{ID: 5}, "de")
	require.NoError(t, err)

	assert.Equal(t, "name-en", en.Name)
	assert.Equal(t, "name-de", de.Name, "responses for different locales must not share cache entries")
}

func TestServerError(t *testing.T) {
	const token = "test-token"

	server := mockTVDB(t, map[string]http.HandlerFunc{
		"/login":    loginHandler("api-key", token),
		"/series/1": requireAuth(token, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }),
	})

	client := New("api-key", WithBaseURL(server.URL))
	_, err := client.GetSeriesInfo(context.Background(), SearchResult{ID: 1}, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestRateLimited(t *testing.T) {
	const token = "test-token"

	server := mockTVDB(t, map[string]http.HandlerFunc{
		"/login":    loginHandler("api-key", token),
		"/series/1": requireAuth(token, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) }),
	})

	client := New("api-key", WithBaseURL(server.URL))
	_, err := client.GetSeriesInfo(context.Background(), SearchResult{ID: 1}, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestDecodeError(t *testing.T) {
	const token = "test-token"

	server := mockTVDB(t, map[string]http.HandlerFunc{
		"/login":    loginHandler("api-key", token),
		"/series/1": requireAuth(token, rawJSON(`{not json`)),
	})

	client := New("api-key", WithBaseURL(server.URL))
	_, err := client.GetSeriesInfo(context.Background(), SearchResult{ID: 1}, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestContextCancellation(t *testing.T) {
	server := mockTVDB(t, map[string]http.HandlerFunc{
		"/login": func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		},
	})

	client := New("api-key", WithBaseURL(server.URL))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Languages(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context canceled")
}
