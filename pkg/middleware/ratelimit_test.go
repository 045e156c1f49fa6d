package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClockedLimiter(config *RateLimitConfig) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(config)
	rl.now = clock.Now
	return rl, clock
}

func TestRateLimiter_Allow(t *testing.T) {
	config := &RateLimitConfig{
		RequestsPerWindow: 10,
		WindowDuration:    time.Second,
		BurstSize:         2,
	}
	limiter, clock := newClockedLimiter(config)
	ctx := context.Background()

	allowedCount := 0
	for i := 0; i < config.RequestsPerWindow+config.BurstSize+5; i++ {
		ok, err := limiter.Allow(ctx, "session:abc")
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		if ok {
			allowedCount++
		}
	}

	expected := config.RequestsPerWindow + config.BurstSize
	if allowedCount != expected {
		t.Errorf("Allowed %d requests, want %d", allowedCount, expected)
	}

	clock.Advance(time.Second)
	if ok, _ := limiter.Allow(ctx, "session:abc"); !ok {
		t.Error("Should allow request after refill")
	}
}

func TestRateLimiter_Remaining(t *testing.T) {
	limiter, _ := newClockedLimiter(&RateLimitConfig{
		RequestsPerWindow: 10,
		WindowDuration:    time.Second,
		BurstSize:         2,
	})
	ctx := context.Background()

	remaining, _ := limiter.Remaining(ctx, "ip:10.0.0.1")
	if remaining != 12 {
		t.Errorf("Initial remaining = %d, want 12", remaining)
	}

	for i := 0; i < 5; i++ {
		limiter.Allow(ctx, "ip:10.0.0.1")
	}
	remaining, _ = limiter.Remaining(ctx, "ip:10.0.0.1")
	if remaining != 7 {
		t.Errorf("Remaining after 5 requests = %d, want 7", remaining)
	}
}

func TestRateLimiter_TokenCapRefill(t *testing.T) {
	limiter, clock := newClockedLimiter(&RateLimitConfig{
		RequestsPerWindow: 5,
		WindowDuration:    time.Second,
		BurstSize:         1,
	})
	ctx := context.Background()

	limiter.Allow(ctx, "k")
	clock.Advance(10 * time.Second)
	limiter.Allow(ctx, "k")

	remaining, _ := limiter.Remaining(ctx, "k")
	if remaining != 5 {
		t.Errorf("Remaining = %d, want capacity minus one (5)", remaining)
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	limiter, clock := newClockedLimiter(&RateLimitConfig{
		RequestsPerWindow: 10,
		WindowDuration:    time.Minute,
	})
	ctx := context.Background()

	limiter.Allow(ctx, "old")
	clock.Advance(3 * time.Minute)
	limiter.Allow(ctx, "fresh")
	limiter.Cleanup()

	limiter.mu.RLock()
	defer limiter.mu.RUnlock()
	if _, ok := limiter.buckets["old"]; ok {
		t.Error("idle bucket should be removed")
	}
	if _, ok := limiter.buckets["fresh"]; !ok {
		t.Error("active bucket should be kept")
	}
}

func TestRateLimiter_StartCleanup(t *testing.T) {
	limiter := NewRateLimiter(&RateLimitConfig{RequestsPerWindow: 1, WindowDuration: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	limiter.StartCleanup(ctx, nil)

	limiter.Allow(ctx, "k")
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		limiter.mu.RLock()
		n := len(limiter.buckets)
		limiter.mu.RUnlock()
		if n == 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	limiter.mu.RLock()
	defer limiter.mu.RUnlock()
	if len(limiter.buckets) != 0 {
		t.Errorf("buckets = %d, want 0 after cleanup", len(limiter.buckets))
	}
}

func TestRateLimitConfig_Defaults(t *testing.T) {
	tests := []struct {
		name   string
		config *RateLimitConfig
		limit  int
		window time.Duration
	}{
		{"default", DefaultRateLimitConfig(), 100, time.Minute},
		{"session", SessionRateLimitConfig(), 300, time.Minute},
		{"otp", OTPRateLimitConfig(), 5, 10 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.config.RequestsPerWindow != tt.limit {
				t.Errorf("RequestsPerWindow = %d, want %d", tt.config.RequestsPerWindow, tt.limit)
			}
			if tt.config.WindowDuration != tt.window {
				t.Errorf("WindowDuration = %v, want %v", tt.config.WindowDuration, tt.window)
			}
		})
	}

	if OTPRateLimitConfig().BurstSize != 0 {
		t.Error("OTP limits should not allow bursts")
	}
}

func TestNewRateLimiter_NilConfig(t *testing.T) {
	limiter := NewRateLimiter(nil)
	if limiter.Config().RequestsPerWindow != DefaultRateLimitConfig().RequestsPerWindow {
		t.Error("nil config should fall back to defaults")
	}
}

func TestRateLimiter_Concurrency(t *testing.T) {
	limiter := NewRateLimiter(&RateLimitConfig{
		RequestsPerWindow: 50,
		WindowDuration:    time.Hour,
	})
	ctx := context.Background()

	var allowed int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := limiter.Allow(ctx, "shared"); ok {
				atomic.AddInt64(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("allowed = %d, want 50", allowed)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expectedIP string
	}{
		{
			name:       "X-Forwarded-For header",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.1"},
			remoteAddr: "10.0.0.1:12345",
			expectedIP: "192.168.1.1",
		},
		{
			name:       "X-Forwarded-For chain",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"},
			remoteAddr: "10.0.0.1:12345",
			expectedIP: "203.0.113.7",
		},
		{
			name:       "X-Real-IP header",
			headers:    map[string]string{"X-Real-IP": "192.168.1.2"},
			remoteAddr: "10.0.0.1:12345",
			expectedIP: "192.168.1.2",
		},
		{
			name:       "RemoteAddr fallback strips port",
			headers:    map[string]string{},
			remoteAddr: "10.0.0.1:12345",
			expectedIP: "10.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			if ip := getClientIP(req); ip != tt.expectedIP {
				t.Errorf("getClientIP() = %v, want %v", ip, tt.expectedIP)
			}
		})
	}
}

func TestRequestKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/sessions/abc/balance", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	if key := requestKey(req); key != "ip:10.0.0.1" {
		t.Errorf("requestKey() = %q, want ip key", key)
	}

	req = mux.SetURLVars(req, map[string]string{"id": "abc"})
	if key := requestKey(req); key != "session:abc" {
		t.Errorf("requestKey() = %q, want session key", key)
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitMiddleware_Handler(t *testing.T) {
	limiter := NewRateLimiter(&RateLimitConfig{RequestsPerWindow: 2, WindowDuration: time.Hour})
	handler := NewRateLimitMiddleware(limiter, nil).Handler(okHandler())

	var codes []int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)

		if i == 0 && w.Header().Get("X-RateLimit-Remaining") != "1" {
			t.Errorf("X-RateLimit-Remaining = %q, want 1", w.Header().Get("X-RateLimit-Remaining"))
		}
		if i == 2 {
			if w.Header().Get("Retry-After") != "3600" {
				t.Errorf("Retry-After = %q, want 3600", w.Header().Get("Retry-After"))
			}
			if w.Header().Get("X-RateLimit-Remaining") != "0" {
				t.Error("exhausted response should report zero remaining")
			}
		}
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d: status = %d, want %d", i, codes[i], want[i])
		}
	}

	// a different client has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("other IP status = %d, want 200", w.Code)
	}
}

func TestRateLimitMiddleware_PerSession(t *testing.T) {
	limiter := NewRateLimiter(&RateLimitConfig{RequestsPerWindow: 1, WindowDuration: time.Hour})
	router := mux.NewRouter()
	router.Use(NewRateLimitMiddleware(limiter, nil).Handler)
	router.Handle("/sessions/{id}/balance", okHandler())

	call := func(id string) int {
		req := httptest.NewRequest(http.MethodGet, "/sessions/"+id+"/balance", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	if code := call("a"); code != http.StatusOK {
		t.Errorf("first call = %d", code)
	}
	if code := call("a"); code != http.StatusTooManyRequests {
		t.Errorf("second call on same session = %d, want 429", code)
	}
	// same IP, other session
	if code := call("b"); code != http.StatusOK {
		t.Errorf("other session = %d, want 200", code)
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("connection refused")
}

func (failingLimiter) Remaining(context.Context, string) (int, error) {
	return 0, errors.New("connection refused")
}

func (failingLimiter) Config() RateLimitConfig { return *DefaultRateLimitConfig() }

func TestRateLimitMiddleware_FailOpen(t *testing.T) {
	m := NewRateLimitMiddleware(failingLimiter{}, nil)
	w := httptest.NewRecorder()
	m.Handler(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when limiter is down", w.Code)
	}

	m.failOpen = false
	w = httptest.NewRecorder()
	m.Handler(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when failing closed", w.Code)
	}
}
