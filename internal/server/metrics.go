package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	resultOK    = "ok"
	resultError = "error"

	unknownKindLabel = "unknown"
)

// Metrics 持有服务私有的 Prometheus 注册表，避免测试之间共享全局默认注册表。
type Metrics struct {
	registry *prometheus.Registry
	renders  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics 注册渲染计数、耗时直方图以及 Go 运行时/进程采集器。
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "snapgen_renders_total",
			Help: "Number of render requests served, by scaffold kind and result.",
		}, []string{"kind", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "snapgen_render_duration_seconds",
			Help:    "Render request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}
	reg.MustRegister(
		m.renders,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRender 记录一次渲染；未知类型统一归入 unknown 标签，限制标签基数。
func (m *Metrics) ObserveRender(kind, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	kind = strings.TrimSpace(kind)
	if kind == "" {
		kind = unknownKindLabel
	}
	m.renders.WithLabelValues(kind, result).Inc()
	m.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// Registry 暴露底层注册表，供测试直接读取指标值。
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 通过 adaptor 将 promhttp 的 net/http Handler 挂到 Fiber 路由上。
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
