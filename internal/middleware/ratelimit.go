package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig はクライアント側レート制限の設定を保持する。
type RateLimiterConfig struct {
	Rate  rate.Limit // 1秒あたりのリクエスト数
	Burst int        // バーストサイズ
}

// DefaultRateLimiterConfig はデフォルトのレート制限設定を返す。
// 連打による大量リクエストでバックエンドを圧迫しないための上限。
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Rate:  rate.Limit(5),
		Burst: 10,
	}
}

// NewLimiter は設定からrate.Limiterを生成する。
// Rateが0以下の場合は無制限とする。
func (c RateLimiterConfig) NewLimiter() *rate.Limiter {
	if c.Rate <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := c.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(c.Rate, burst)
}

// NewRateLimitMiddleware はトークンが補充されるまで送信を待機するミドルウェアを返す。
// 待機中にリクエストのコンテキストが終了した場合は送信せずにエラーを返す。
func NewRateLimitMiddleware(limiter *rate.Limiter) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			if err := limiter.Wait(req.Context()); err != nil {
				slog.Warn("rate limit wait aborted",
					slog.String("path", req.URL.Path),
					slog.String("error", err.Error()),
				)
				return nil, fmt.Errorf("rate limit wait: %w", err)
			}
			if waited := time.Since(start); waited > 100*time.Millisecond {
				slog.Debug("rate limited request delayed",
					slog.String("path", req.URL.Path),
					slog.Duration("waited", waited),
				)
			}
			return next.RoundTrip(req)
		})
	}
}
