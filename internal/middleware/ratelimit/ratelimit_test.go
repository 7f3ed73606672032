package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, perMinute int, methods ...string) (*Limiter, *time.Time) {
	t.Helper()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	rl := NewLimiter(Config{RequestsPerMinute: perMinute, Methods: methods})
	rl.now = func() time.Time { return now }
	t.Cleanup(rl.Stop)
	return rl, &now
}

func TestLimiter_Allow(t *testing.T) {
	rl, now := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("fourth request should be rejected")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatal("other clients are counted separately")
	}

	if got := rl.RetryAfter("10.0.0.1"); got != 60 {
		t.Errorf("RetryAfter() = %d, want 60", got)
	}

	*now = now.Add(time.Minute)
	if !rl.Allow("10.0.0.1") {
		t.Fatal("window should reset after a minute")
	}

	m := rl.GetMetrics()
	if m.TotalHits != 1 || m.ClientCount != 2 {
		t.Errorf("GetMetrics() = %+v, want 1 hit and 2 clients", m)
	}
}

func TestLimiter_CleanupStaleEntries(t *testing.T) {
	rl, now := newTestLimiter(t, 10)

	rl.Allow("10.0.0.1")
	*now = now.Add(11 * time.Minute)
	rl.Allow("10.0.0.2")
	rl.cleanupStaleEntries()

	if got := rl.ActiveClients(); got != 1 {
		t.Errorf("ActiveClients() = %d, want 1", got)
	}
}

func TestLimiter_Middleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, http.MethodPost)
	ip := func(*http.Request) string { return "192.0.2.1" }
	h := rl.Middleware(ip, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(method string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(method, "/ask", nil))
		return rr
	}

	if rr := do(http.MethodPost); rr.Code != http.StatusNoContent {
		t.Fatalf("first POST status = %d", rr.Code)
	}
	rr := do(http.MethodPost)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second POST status = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
	for i := 0; i < 3; i++ {
		if rr := do(http.MethodGet); rr.Code != http.StatusNoContent {
			t.Fatalf("GET should not be limited, status = %d", rr.Code)
		}
	}
}

func TestLimiter_CustomOnLimit(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	ip := func(*http.Request) string { return "192.0.2.1" }
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}
	h := rl.Middleware(ip, onLimit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Body.String() != "slow down" {
		t.Errorf("body = %q, want custom limit response", rr.Body.String())
	}
}
