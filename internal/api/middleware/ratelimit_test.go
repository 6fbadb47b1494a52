package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func hit(t *testing.T, mw echo.MiddlewareFunc, ip string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = ip + ":1234"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
}

func TestRateLimit_BurstThenReject(t *testing.T) {
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 0.5, Burst: 2})

	for i := 0; i < 2; i++ {
		if _, err := hit(t, mw, "10.0.0.1"); err != nil {
			t.Fatalf("request %d rejected: %v", i, err)
		}
	}

	rec, err := hit(t, mw, "10.0.0.1")
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
	if got := rec.Header().Get("Retry-After"); got != "2" {
		t.Errorf("Retry-After = %q, want 2", got)
	}
}

func TestRateLimit_ClientsAreIndependent(t *testing.T) {
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 0.1, Burst: 1})

	if _, err := hit(t, mw, "10.0.0.1"); err != nil {
		t.Fatalf("first client rejected: %v", err)
	}
	if _, err := hit(t, mw, "10.0.0.2"); err != nil {
		t.Fatalf("second client rejected: %v", err)
	}
}

func TestLimiterStore_SweepsIdleClients(t *testing.T) {
	store := newLimiterStore(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, IdleTTL: time.Minute})
	now := time.Date(2030, 6, 10, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	store.lastSweep = now

	store.get("10.0.0.1")
	store.get("10.0.0.2")
	if store.size() != 2 {
		t.Fatalf("size = %d, want 2", store.size())
	}

	now = now.Add(2 * time.Minute)
	store.get("10.0.0.3")
	if store.size() != 1 {
		t.Fatalf("size after sweep = %d, want 1", store.size())
	}
}
