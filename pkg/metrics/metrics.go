// Package metrics 提供基于Prometheus的指标收集
//
// 指标分三类：
// - HTTP请求指标（总数、耗时、在途数）
// - 命令指标（各写命令的成功/失败计数、事务耗时）
// - 缓存与消息队列指标
//
// 使用promauto注册到默认Registry，通过 GET /metrics 暴露（promhttp）。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册）
	initialized bool

	// HTTP请求指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method、path、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（秒）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 命令指标

	// CommandsTotal 写命令执行总数
	// 标签：command（add_to_wishlist/upsert_stock/change_password）、result（success/failure）
	CommandsTotal *prometheus.CounterVec

	// CommandDuration 写命令事务耗时（秒）
	// 标签：command
	CommandDuration *prometheus.HistogramVec

	// AllocatorRetriesTotal 标识分配器重试次数
	AllocatorRetriesTotal prometheus.Counter

	// 缓存指标

	// CacheRequestsTotal 目录缓存请求总数
	// 标签：result（hit/miss/bypass/error）
	CacheRequestsTotal *prometheus.CounterVec

	// CircuitBreakerState 缓存熔断器状态（0=CLOSED 1=OPEN 2=HALF_OPEN）
	CircuitBreakerState *prometheus.GaugeVec

	// 消息队列指标

	// MessagesPublishedTotal 事件发布总数
	// 标签：routing_key、result（success/failure）
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
// 必须在程序启动时调用一次；重复调用是空操作
func InitMetrics() {
	if initialized {
		return
	}
	initialized = true

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "HTTP requests currently being processed",
		},
	)

	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commands_total",
			Help: "Total write commands executed",
		},
		[]string{"command", "result"},
	)

	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Write command transaction latency in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
		},
		[]string{"command"},
	)

	AllocatorRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wishlist_id_allocator_retries_total",
			Help: "Wishlist identifier allocation retries after duplicate-key conflicts",
		},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_requests_total",
			Help: "Catalog cache lookups by result",
		},
		[]string{"result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"name"},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "Domain events published to the message broker",
		},
		[]string{"routing_key", "result"},
	)
}

// =========================================
// 辅助函数（未初始化时是空操作，避免单元测试强依赖Registry）
// =========================================

// ObserveHTTPRequest 记录一次HTTP请求的结果与耗时
func ObserveHTTPRequest(method, path, status string, seconds float64) {
	if !initialized {
		return
	}
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// AddHTTPInProgress 调整在途HTTP请求数（delta为±1）
func AddHTTPInProgress(delta float64) {
	if !initialized {
		return
	}
	HTTPRequestsInProgress.Add(delta)
}

// ObserveCommand 记录一次写命令的结果与耗时
func ObserveCommand(command string, seconds float64, err error) {
	if !initialized {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	CommandsTotal.WithLabelValues(command, result).Inc()
	CommandDuration.WithLabelValues(command).Observe(seconds)
}

// IncAllocatorRetry 记录一次标识分配重试
func IncAllocatorRetry() {
	if !initialized {
		return
	}
	AllocatorRetriesTotal.Inc()
}

// IncPublish 记录一次事件发布结果
func IncPublish(routingKey string, success bool) {
	if !initialized {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	MessagesPublishedTotal.WithLabelValues(routingKey, result).Inc()
}

// IncCacheRequest 记录一次缓存访问结果（hit/miss/bypass/error）
func IncCacheRequest(result string) {
	if !initialized {
		return
	}
	CacheRequestsTotal.WithLabelValues(result).Inc()
}

// SetBreakerState 更新熔断器状态指标
func SetBreakerState(name string, state int) {
	if !initialized {
		return
	}
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
