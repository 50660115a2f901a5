package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/MikeSquared-Agency/Circularity/internal/metrics"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestFrom(addr string) *http.Request {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = addr
	return req
}

func TestRateLimitMiddleware_AllowsWithinLimit(t *testing.T) {
	handler := RateLimitMiddleware(5)(okHandler())

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFrom("10.0.0.1:4000"))

		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}
}

func TestRateLimitMiddleware_BlocksOverLimit(t *testing.T) {
	handler := RateLimitMiddleware(3)(okHandler())

	for i := 0; i < 3; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), requestFrom("10.0.0.1:4000"))
	}

	// burst exhausted, next token is 20s away
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("10.0.0.1:4000"))

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}
}

func TestRateLimitMiddleware_PortsShareBucket(t *testing.T) {
	handler := RateLimitMiddleware(2)(okHandler())

	var codes []int
	for port := 5000; port < 5005; port++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFrom(fmt.Sprintf("10.0.0.1:%d", port)))
		codes = append(codes, w.Code)
	}

	want := []int{200, 200, 429, 429, 429}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("codes = %v, want %v", codes, want)
		}
	}
}

func TestRateLimitMiddleware_IgnoresClientHeaders(t *testing.T) {
	handler := RateLimitMiddleware(1)(okHandler())

	for i, id := range []string{"a", "b"} {
		req := requestFrom("10.0.0.1:4000")
		req.Header.Set("X-Session-ID", id)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if i == 1 && w.Code != http.StatusTooManyRequests {
			t.Errorf("a new header value must not open a new bucket, got %d", w.Code)
		}
	}
}

func TestRateLimitMiddleware_KeysByClient(t *testing.T) {
	handler := RateLimitMiddleware(2)(okHandler())

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), requestFrom("10.0.0.1:4000"))
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("10.0.0.2:4000"))
	if w.Code != http.StatusOK {
		t.Errorf("10.0.0.2 should not be rate-limited, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("10.0.0.1:4001"))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("10.0.0.1 should be rate-limited, got %d", w.Code)
	}
}

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2)
	rl.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		rl.allow(fmt.Sprintf("10.0.0.%d", i))
	}
	if got := rl.size(); got != 10 {
		t.Fatalf("expected 10 buckets, got %d", got)
	}

	now = now.Add(30 * time.Second)
	rl.allow("10.0.0.1")
	now = now.Add(40 * time.Second)
	if !rl.allow("10.0.0.99") {
		t.Error("fresh client should be allowed")
	}

	// only the client seen 40s ago and the new one survive
	if got := rl.size(); got != 2 {
		t.Errorf("expected 2 buckets after pruning, got %d", got)
	}
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	handler := RateLimitMiddleware(0)(okHandler())

	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}
}

func TestRequestLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	called := false
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusAccepted)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	if !called {
		t.Error("inner handler was not called")
	}
	if w.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d", w.Code)
	}
}

func TestMetricsMiddleware_LabelsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	r := chi.NewRouter()
	r.Use(MetricsMiddleware(m))
	r.Get("/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Millisecond)
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/sessions/"+id, nil))
	}

	expected := `
# HELP circularity_http_requests_total HTTP requests, by method, route and status.
# TYPE circularity_http_requests_total counter
circularity_http_requests_total{method="GET",route="/sessions/{id}",status="404"} 3
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "circularity_http_requests_total"); err != nil {
		t.Error(err)
	}
}
