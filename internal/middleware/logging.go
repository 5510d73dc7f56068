package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// NewLoggingMiddleware は外向きリクエストのJSON構造化ログを出力するミドルウェアを返す。
// ログにはmethod、path、status、duration_msを含む。
// Authorizationヘッダーの値はログに出さない。
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()

			resp, err := next.RoundTrip(req)

			duration := time.Since(start)
			durationMs := float64(duration.Nanoseconds()) / float64(time.Millisecond)

			attrs := []any{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Float64("duration_ms", durationMs),
				slog.Bool("authenticated", req.Header.Get("Authorization") != ""),
			}

			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.Log(req.Context(), slog.LevelError, "api_request", attrs...)
				return nil, err
			}

			attrs = append(attrs, slog.Int("status", resp.StatusCode))

			// ステータスコードに応じてログレベルを変更
			level := slog.LevelInfo
			if resp.StatusCode >= 500 {
				level = slog.LevelError
			} else if resp.StatusCode >= 400 {
				level = slog.LevelWarn
			}

			logger.Log(req.Context(), level, "api_request", attrs...)
			return resp, nil
		})
	}
}
