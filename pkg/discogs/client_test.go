package discogs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmhodges/clock"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, serverURL string, mutate func(*Config)) *Client {
	t.Helper()
	cfg := Config{
		BaseURL: serverURL,
		Settings: Settings{
			BackoffInterval: time.Millisecond,
			BackoffRate:     2,
		},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

// TestClient_Do_Headers tests the request headers and the parsed response.
func TestClient_Do_Headers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/releases/249504" {
			t.Errorf("expected path /releases/249504, got %s", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != "crates-test/0.1" {
			t.Errorf("expected User-Agent crates-test/0.1, got %s", ua)
		}
		if accept := r.Header.Get("Accept"); accept != "application/vnd.discogs.v2.plaintext+json" {
			t.Errorf("unexpected Accept header %s", accept)
		}
		if auth := r.Header.Get("Authorization"); auth != "Discogs token=secret-token" {
			t.Errorf("unexpected Authorization header %s", auth)
		}

		w.Header().Set(HeaderRateLimit, "60")
		w.Header().Set(HeaderRateLimitUsed, "23")
		w.Header().Set(HeaderRateLimitRemaining, "37")
		_, _ = w.Write([]byte(`{"id":249504,"title":"Never Gonna Give You Up"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.Auth = NewTokenAuth("secret-token")
		cfg.UserAgent = "crates-test/0.1"
		cfg.OutputFormat = "plaintext"
	})

	release, resp, err := client.Database().GetRelease(context.Background(), 249504, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if release.Title != "Never Gonna Give You Up" {
		t.Errorf("unexpected title %q", release.Title)
	}
	if resp.RateLimit == nil || *resp.RateLimit != (RateLimit{Limit: 60, Used: 23, Remaining: 37}) {
		t.Errorf("unexpected rate limit %+v", resp.RateLimit)
	}
}

// TestClient_Retry tests the retry controller against sequences of statuses.
func TestClient_Retry(t *testing.T) {
	tests := []struct {
		name        string
		statuses    []int
		maxRetries  int
		wantCalls   int32
		wantErr     bool
		wantStatus  int
		wantMessage string
	}{
		{
			name:       "429 then success",
			statuses:   []int{429, 200},
			maxRetries: 1,
			wantCalls:  2,
		},
		{
			name:        "retries exhausted returns last error",
			statuses:    []int{429, 429},
			maxRetries:  1,
			wantCalls:   2,
			wantErr:     true,
			wantStatus:  429,
			wantMessage: "attempt 2",
		},
		{
			name:        "retries disabled",
			statuses:    []int{429, 200},
			maxRetries:  0,
			wantCalls:   1,
			wantErr:     true,
			wantStatus:  429,
			wantMessage: "attempt 1",
		},
		{
			name:        "server error not retried",
			statuses:    []int{503, 200},
			maxRetries:  3,
			wantCalls:   1,
			wantErr:     true,
			wantStatus:  503,
			wantMessage: "attempt 1",
		},
		{
			name:       "several retries",
			statuses:   []int{429, 429, 429, 200},
			maxRetries: 3,
			wantCalls:  4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := calls.Add(1)
				status := tt.statuses[n-1]
				w.WriteHeader(status)
				if status == http.StatusOK {
					_, _ = w.Write([]byte(`{"id":1,"name":"Persuader"}`))
					return
				}
				_, _ = w.Write([]byte(`{"message":"attempt ` + string(rune('0'+n)) + `"}`))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL, func(cfg *Config) {
				cfg.BackoffMaxRetries = tt.maxRetries
			})

			artist, _, err := client.Database().GetArtist(context.Background(), 1)

			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("expected %d calls, got %d", tt.wantCalls, got)
			}

			if tt.wantErr {
				var apiErr *Error
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected *Error, got %T: %v", err, err)
				}
				if apiErr.StatusCode != tt.wantStatus {
					t.Errorf("expected status %d, got %d", tt.wantStatus, apiErr.StatusCode)
				}
				if apiErr.Message != tt.wantMessage {
					t.Errorf("expected message %q, got %q", tt.wantMessage, apiErr.Message)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if artist.Name != "Persuader" {
				t.Errorf("unexpected artist %+v", artist)
			}
		})
	}
}

// TestClient_BackoffSchedule tests the delays between retries.
func TestClient_BackoffSchedule(t *testing.T) {
	client := newTestClient(t, "http://example.invalid", nil)
	bo := client.newBackOff(Settings{
		BackoffMaxRetries: 3,
		BackoffInterval:   2 * time.Second,
		BackoffRate:       2.7,
	})

	want := []time.Duration{2 * time.Second, 5400 * time.Millisecond, 14580 * time.Millisecond}
	for i, w := range want {
		if got := bo.NextBackOff(); got != w {
			t.Errorf("retry %d: expected %v, got %v", i+1, w, got)
		}
	}
	if got := bo.NextBackOff(); got >= 0 {
		t.Errorf("expected stop after 3 retries, got %v", got)
	}
}

// TestClient_AuthRequired tests that auth levels are checked before any network call.
func TestClient_AuthRequired(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	_, _, err := client.Database().Search(context.Background(), SearchParams{Query: "nirvana"}, nil)
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	var authErr *AuthError
	if !errors.As(err, &authErr) || authErr.Required != AuthConsumer || authErr.Have != AuthNone {
		t.Errorf("unexpected auth error %+v", authErr)
	}

	if err := client.SetAuth(NewKeyAuth("k", "s")); err != nil {
		t.Fatalf("failed to set auth: %v", err)
	}
	_, _, err = client.User().GetIdentity(context.Background())
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired for user endpoint, got %v", err)
	}

	if got := calls.Load(); got != 0 {
		t.Errorf("expected no network calls, got %d", got)
	}
}

// TestClient_TransportError tests that network failures are typed and not retried.
func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	client := newTestClient(t, serverURL, func(cfg *Config) {
		cfg.BackoffMaxRetries = 3
	})

	_, _, err := client.Database().GetLabel(context.Background(), 1)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
}

// TestClient_InvalidRequest tests request validation.
func TestClient_InvalidRequest(t *testing.T) {
	client := newTestClient(t, "http://example.invalid", nil)

	tests := []struct {
		name string
		req  *Request
	}{
		{"nil", nil},
		{"missing method", &Request{URL: "/artists/1"}},
		{"unknown method", &Request{Method: "PATCH", URL: "/artists/1"}},
		{"missing url", &Request{Method: "GET"}},
		{"auth level out of range", &Request{Method: "GET", URL: "/artists/1", AuthLevel: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := client.Do(context.Background(), tt.req); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

// TestClient_NonJSONResponse tests that JSON is required unless Raw is set.
func TestClient_NonJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("\x89PNG"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	_, err := client.Do(context.Background(), &Request{Method: "GET", URL: "/artists/1"})
	if err == nil || !strings.Contains(err.Error(), "not valid JSON") {
		t.Fatalf("expected JSON error, got %v", err)
	}

	data, _, err := client.Database().GetImage(context.Background(), server.URL+"/image.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "\x89PNG" {
		t.Errorf("unexpected image data %q", data)
	}
}

// TestClient_OnResponse tests the per-attempt hook.
func TestClient_OnResponse(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderRateLimit, "25")
		w.Header().Set(HeaderRateLimitUsed, "1")
		w.Header().Set(HeaderRateLimitRemaining, "24")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"message":"slow down"}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	var mu sync.Mutex
	var infos []ResponseInfo
	client := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.BackoffMaxRetries = 1
		cfg.OnResponse = func(info ResponseInfo) {
			mu.Lock()
			infos = append(infos, info)
			mu.Unlock()
		}
	})

	if _, _, err := client.Database().GetMaster(context.Background(), 1000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(infos) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(infos))
	}
	if infos[0].StatusCode != 429 || infos[0].Attempt != 1 {
		t.Errorf("unexpected first attempt %+v", infos[0])
	}
	if infos[1].StatusCode != 200 || infos[1].Attempt != 2 {
		t.Errorf("unexpected second attempt %+v", infos[1])
	}
	if infos[1].RateLimit == nil || infos[1].RateLimit.Remaining != 24 {
		t.Errorf("unexpected rate limit %+v", infos[1].RateLimit)
	}
}

// TestClient_SharedQueue tests that clients sharing a queue share its budget,
// and that a cleared queue abandons waiting calls.
func TestClient_SharedQueue(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	fc := clock.NewFake()
	q := NewQueue(QueueConfig{Clock: fc})
	mutate := func(cfg *Config) {
		cfg.Queue = q
		cfg.Clock = fc
		cfg.RequestLimit = 1
	}
	a := newTestClient(t, server.URL, mutate)
	b := newTestClient(t, server.URL, mutate)

	_, _, err := a.Database().GetArtist(context.Background(), 1)
	require.NoError(t, err)

	errs := make(chan error, 1)
	go func() {
		_, _, err := b.Database().GetArtist(context.Background(), 2)
		errs <- err
	}()

	require.Eventually(t, func() bool { return q.Len() == 1 }, time.Second, time.Millisecond)
	q.Clear()

	select {
	case err := <-errs:
		require.ErrorIs(t, err, ErrQueueCleared)
	case <-time.After(time.Second):
		t.Fatal("expected the queued call to be abandoned")
	}
	require.Equal(t, int32(1), calls.Load())
}

// TestClient_QueueContextCancel tests that a caller can stop waiting for
// admission, and that its entry holds a stack slot until its slot time.
func TestClient_QueueContextCancel(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	fc := clock.NewFake()
	client := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.Clock = fc
		cfg.RequestLimit = 1
		cfg.MaxStack = 1
	})

	_, _, err := client.Database().GetArtist(context.Background(), 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, _, err := client.Database().GetArtist(ctx, 2)
		errs <- err
	}()

	require.Eventually(t, func() bool { return client.Queue().Len() == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-errs:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("expected the call to return after cancel")
	}

	// The cancelled entry still fills the stack.
	require.Equal(t, 1, client.Queue().Len())
	_, _, err = client.Database().GetArtist(context.Background(), 3)
	require.ErrorIs(t, err, ErrRateLimitExceeded)

	// Its slot is released without a network call.
	fc.Add(time.Minute)
	require.Eventually(t, func() bool { return client.Queue().Len() == 0 }, time.Second, time.Millisecond)
	require.Equal(t, int32(1), calls.Load())
}

// newRateLimitedServer answers 429 to the first request and 200 afterwards.
func newRateLimitedServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"message":"You are making requests too quickly."}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":1,"name":"Persuader"}`))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

// TestClient_RetryUsesAdmission tests that a retry goes back through the
// queue and is throttled like any other call.
func TestClient_RetryUsesAdmission(t *testing.T) {
	t.Run("retry takes a second admission", func(t *testing.T) {
		server, calls := newRateLimitedServer(t)
		fc := clock.NewFake()
		client := newTestClient(t, server.URL, func(cfg *Config) {
			cfg.Clock = fc
			cfg.RequestLimit = 2
			cfg.BackoffMaxRetries = 1
		})

		errs := make(chan error, 1)
		go func() {
			_, _, err := client.Database().GetArtist(context.Background(), 1)
			errs <- err
		}()

		// Advance the fake clock past the backoff wait.
		require.Eventually(t, func() bool {
			if len(errs) == 1 {
				return true
			}
			fc.Add(time.Millisecond)
			return false
		}, time.Second, time.Millisecond)

		require.NoError(t, <-errs)
		require.Equal(t, int32(2), calls.Load())
		require.Equal(t, 0, client.Queue().Status().RemainingCalls)
	})

	t.Run("retry waits for the window", func(t *testing.T) {
		server, calls := newRateLimitedServer(t)
		fc := clock.NewFake()
		client := newTestClient(t, server.URL, func(cfg *Config) {
			cfg.Clock = fc
			cfg.RequestLimit = 1
			cfg.BackoffMaxRetries = 1
		})

		errs := make(chan error, 1)
		go func() {
			_, _, err := client.Database().GetArtist(context.Background(), 1)
			errs <- err
		}()

		// After the backoff the retry is queued behind the spent budget.
		require.Eventually(t, func() bool {
			if client.Queue().Len() == 1 {
				return true
			}
			fc.Add(time.Millisecond)
			return false
		}, time.Second, time.Millisecond)
		require.Equal(t, int32(1), calls.Load())

		fc.Add(time.Minute)

		select {
		case err := <-errs:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("expected the retry to be sent once the window rolled over")
		}
		require.Equal(t, int32(2), calls.Load())
	})
}

// TestClient_AuthenticatedBudget tests that authenticated clients are
// throttled by RequestLimitAuth.
func TestClient_AuthenticatedBudget(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	fc := clock.NewFake()
	client := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.Auth = NewKeyAuth("k", "s")
		cfg.Clock = fc
		cfg.RequestLimit = 1
		cfg.RequestLimitAuth = 3
	})

	for id := 1; id <= 3; id++ {
		_, _, err := client.Database().GetArtist(context.Background(), id)
		require.NoError(t, err)
	}
	require.Equal(t, int32(3), calls.Load())

	errs := make(chan error, 1)
	go func() {
		_, _, err := client.Database().GetArtist(context.Background(), 4)
		errs <- err
	}()

	require.Eventually(t, func() bool { return client.Queue().Len() == 1 }, time.Second, time.Millisecond)
	require.Equal(t, int32(3), calls.Load())

	client.Queue().Clear()
	select {
	case err := <-errs:
		require.ErrorIs(t, err, ErrQueueCleared)
	case <-time.After(time.Second):
		t.Fatal("expected the queued call to be abandoned")
	}
}

// TestClient_BypassQueue tests that BypassQueue requests skip admission.
func TestClient_BypassQueue(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	fc := clock.NewFake()
	client := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.Clock = fc
		cfg.RequestLimit = 1
	})

	_, _, err := client.Database().GetArtist(context.Background(), 1)
	require.NoError(t, err)
	before := client.Queue().Status()
	require.Equal(t, 0, before.RemainingCalls)

	_, err = client.Do(context.Background(), &Request{Method: "GET", URL: "/artists/2", BypassQueue: true})
	require.NoError(t, err)

	require.Equal(t, before, client.Queue().Status())
	require.Equal(t, 0, client.Queue().Len())
	require.Equal(t, int32(2), calls.Load())
}

// TestClient_UpdateSettings tests that settings changes apply to later calls.
func TestClient_UpdateSettings(t *testing.T) {
	var accept atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept.Store(r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	client.UpdateSettings(func(s *Settings) {
		s.OutputFormat = "html"
		s.RequestLimit = 0
	})

	if _, _, err := client.Database().GetLabel(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := accept.Load(); got != "application/vnd.discogs.v2.html+json" {
		t.Errorf("unexpected Accept header %v", got)
	}
	if got := client.Settings().RequestLimit; got != 25 {
		t.Errorf("expected zero RequestLimit to fall back to 25, got %d", got)
	}
}

func TestClient_RootURL(t *testing.T) {
	client := newTestClient(t, "", nil)
	if got := client.rootURL(client.Settings()); got != "https://api.discogs.com" {
		t.Errorf("unexpected root %s", got)
	}
	if got := client.rootURL(Settings{Host: "localhost", Port: 8443}); got != "https://localhost:8443" {
		t.Errorf("unexpected root %s", got)
	}
}
