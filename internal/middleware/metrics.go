package middleware

import (
	"net/http"
	"time"

	"github.com/hitoshi/storefront/internal/metrics"
)

// NewMetricsMiddleware はリクエストごとのステータスとレイテンシを記録するミドルウェアを返す。
// 通信エラーはステータス0として記録する。
func NewMetricsMiddleware(rec metrics.Recorder) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)

			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			rec.RecordRequest(req.URL.Path, status, time.Since(start))

			return resp, err
		})
	}
}
