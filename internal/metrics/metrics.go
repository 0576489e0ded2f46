// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// auth.MetricsRecorderとミドルウェアのHTTPStatusRecorderを満たす。
type Collector struct {
	loginSuccess    prometheus.Counter
	loginFail       *prometheus.CounterVec
	exchangeLatency prometheus.Histogram
	sessionsCreated prometheus.Counter
	tokenVerify     *prometheus.CounterVec
	httpStatus      *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "walletauth_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "walletauth_login_fail_total",
			Help: "ログイン失敗の合計数（失敗ステップのエラーコード別）",
		}, []string{"code"}),
		exchangeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "walletauth_oauth_exchange_latency_seconds",
			Help:    "認可コード交換のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "walletauth_sessions_created_total",
			Help: "作成されたセッションの合計数",
		}),
		tokenVerify: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "walletauth_token_verify_total",
			Help: "トークン検証の合計数（結果別）",
		}, []string{"result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "walletauth_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.loginSuccess,
		c.loginFail,
		c.exchangeLatency,
		c.sessionsCreated,
		c.tokenVerify,
		c.httpStatus,
	)

	return c
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure は失敗したステップのエラーコード付きでログイン失敗を記録する。
func (c *Collector) RecordLoginFailure(code string) {
	c.loginFail.WithLabelValues(code).Inc()
}

// RecordExchangeLatency は認可コード交換のレイテンシを記録する。
func (c *Collector) RecordExchangeLatency(d time.Duration) {
	c.exchangeLatency.Observe(d.Seconds())
}

// RecordSessionCreated はセッション作成を記録する。
func (c *Collector) RecordSessionCreated() {
	c.sessionsCreated.Inc()
}

// RecordTokenVerify はトークン検証の結果を記録する。
func (c *Collector) RecordTokenVerify(ok bool) {
	result := "ok"
	if !ok {
		result = "fail"
	}
	c.tokenVerify.WithLabelValues(result).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
