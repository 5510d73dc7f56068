package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"
)

func TestDefaultRateLimiterConfig(t *testing.T) {
	cfg := DefaultRateLimiterConfig()
	if cfg.Rate != rate.Limit(5) {
		t.Errorf("Rate = %v, want 5", cfg.Rate)
	}
	if cfg.Burst != 10 {
		t.Errorf("Burst = %d, want 10", cfg.Burst)
	}
}

func TestRateLimiterConfig_ZeroRate_Unlimited(t *testing.T) {
	l := RateLimiterConfig{}.NewLimiter()
	if l.Limit() != rate.Inf {
		t.Errorf("Limit = %v, want Inf", l.Limit())
	}
}

func TestRateLimiterConfig_BurstAtLeastOne(t *testing.T) {
	l := RateLimiterConfig{Rate: 1, Burst: 0}.NewLimiter()
	if l.Burst() != 1 {
		t.Errorf("Burst = %d, want 1", l.Burst())
	}
}

func TestRateLimitMiddleware_AllowsWithinBurst(t *testing.T) {
	limiter := rate.NewLimiter(rate.Limit(1), 3)
	calls := 0
	base := RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		return httptest.NewRecorder().Result(), nil
	})
	rt := NewRateLimitMiddleware(limiter)(base)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "http://backend.test/api/games/all/", nil)
		if _, err := rt.RoundTrip(req); err != nil {
			t.Fatalf("%d回目のリクエストがエラーを返した: %v", i+1, err)
		}
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

// TestRateLimitMiddleware_CanceledContext はトークン待機中にコンテキストが終了した場合、
// リクエストを送信せずにエラーを返すことを検証する。
func TestRateLimitMiddleware_CanceledContext(t *testing.T) {
	limiter := rate.NewLimiter(rate.Limit(0.001), 1)
	limiter.Allow() // バーストを使い切る

	base := RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		t.Fatal("レート制限中にリクエストが送信された")
		return nil, nil
	})
	rt := NewRateLimitMiddleware(limiter)(base)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodGet, "http://backend.test/api/user/", nil).WithContext(ctx)
	if _, err := rt.RoundTrip(req); err == nil {
		t.Fatal("キャンセル済みコンテキストではエラーを返すべき")
	}
}
