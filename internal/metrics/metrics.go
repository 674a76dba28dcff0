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
// ゲートウェイクライアントとキャッシュ層から利用する。
type Collector struct {
	gatewayCalls       *prometheus.CounterVec
	gatewayFailures    *prometheus.CounterVec
	gatewayLatency     *prometheus.HistogramVec
	roomCacheSize      prometheus.Gauge
	reservationsInView prometheus.Gauge
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		gatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "innman_gateway_calls_total",
			Help: "ゲートウェイ呼び出しの合計数（操作・ステータスコード別）",
		}, []string{"operation", "status_code"}),
		gatewayFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "innman_gateway_failures_total",
			Help: "レスポンスが得られなかったゲートウェイ呼び出しの合計数",
		}, []string{"operation"}),
		gatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "innman_gateway_latency_seconds",
			Help:    "ゲートウェイ呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		roomCacheSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "innman_room_cache_size",
			Help: "客室キャッシュの現在の件数",
		}),
		reservationsInView: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "innman_reservation_cache_size",
			Help: "予約キャッシュの現在の件数",
		}),
	}

	reg.MustRegister(
		c.gatewayCalls,
		c.gatewayFailures,
		c.gatewayLatency,
		c.roomCacheSize,
		c.reservationsInView,
	)

	return c
}

// RecordGatewayCall はレスポンスが得られたゲートウェイ呼び出しを記録する。
func (c *Collector) RecordGatewayCall(operation string, statusCode int, duration time.Duration) {
	c.gatewayCalls.WithLabelValues(operation, strconv.Itoa(statusCode)).Inc()
	c.gatewayLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordGatewayFailure はレスポンスが得られなかった呼び出しを記録する。
func (c *Collector) RecordGatewayFailure(operation string) {
	c.gatewayFailures.WithLabelValues(operation).Inc()
}

// SetRoomCacheSize は客室キャッシュの件数を記録する。
func (c *Collector) SetRoomCacheSize(size int) {
	c.roomCacheSize.Set(float64(size))
}

// SetReservationCacheSize は予約キャッシュの件数を記録する。
func (c *Collector) SetReservationCacheSize(size int) {
	c.reservationsInView.Set(float64(size))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
