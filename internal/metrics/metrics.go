// Package metrics 定义 Prometheus 指标以及记录请求指标的 gin 中间件。
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hrimajin"

// 重定向结果标签
const (
	RedirectHit  = "hit"
	RedirectMiss = "miss"
)

var (
	metricsOnce sync.Once

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	directLinkRedirects *prometheus.CounterVec
)

func initMetrics() {
	metricsOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status",
		}, []string{"method", "route", "status"})

		httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"})

		directLinkRedirects = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "directlink",
			Name:      "redirects_total",
			Help:      "Direct link resolutions by result",
		}, []string{"result"})
	})
}

// Middleware 记录请求数量与耗时；未匹配路由统一标记为 unmatched，避免标签爆炸。
func Middleware() gin.HandlerFunc {
	initMetrics()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordRedirect 记录一次直达链接解析结果。
func RecordRedirect(result string) {
	initMetrics()
	directLinkRedirects.WithLabelValues(result).Inc()
}

// Handler 返回 Prometheus 抓取端点。
func Handler() http.Handler {
	initMetrics()
	return promhttp.Handler()
}
