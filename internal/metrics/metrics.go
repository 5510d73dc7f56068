// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder はメトリクス収集のインターフェース。
// APIクライアント、セッションストア、通知キューから利用する。
type Recorder interface {
	RecordRequest(endpoint string, statusCode int, duration time.Duration)
	RecordTeardown(reason string)
	RecordToast(severity string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	teardowns      *prometheus.CounterVec
	toasts         *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_api_requests_total",
			Help: "エンドポイントとステータスコード別のAPIリクエスト数",
		}, []string{"endpoint", "status_code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_api_request_duration_seconds",
			Help:    "APIリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		teardowns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_session_teardowns_total",
			Help: "理由別のセッション破棄数",
		}, []string{"reason"}),
		toasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_toasts_total",
			Help: "重要度別の通知数",
		}, []string{"severity"}),
	}

	reg.MustRegister(
		c.requests,
		c.requestLatency,
		c.teardowns,
		c.toasts,
	)

	return c
}

// RecordRequest はAPIリクエストの結果とレイテンシを記録する。
// 通信エラーでレスポンスがない場合はstatusCodeに0を渡す。
func (c *Collector) RecordRequest(endpoint string, statusCode int, duration time.Duration) {
	c.requests.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	c.requestLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordTeardown はセッション破棄を記録する。
func (c *Collector) RecordTeardown(reason string) {
	c.teardowns.WithLabelValues(reason).Inc()
}

// RecordToast は通知の発行を記録する。
func (c *Collector) RecordToast(severity string) {
	c.toasts.WithLabelValues(severity).Inc()
}

// Nop は何も記録しないRecorder。
type Nop struct{}

func (Nop) RecordRequest(string, int, time.Duration) {}
func (Nop) RecordTeardown(string)                    {}
func (Nop) RecordToast(string)                       {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsと/healthを提供するchi.Routerを返す。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/metrics", Handler(gatherer))
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}
