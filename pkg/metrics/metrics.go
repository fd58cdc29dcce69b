// Package metrics 提供基于Prometheus的指标收集
//
// # 指标类型
//
//   - Counter（计数器）：只增不减，如请求总数、目录操作次数
//   - Gauge（仪表盘）：可增可减的瞬时值，如目录中的图书数量、正在处理的请求数
//   - Histogram（直方图）：观测值分布，如请求耗时、种子数据加载耗时
//
// # 使用示例
//
//	// 1. 启动时初始化（重复调用是安全的）
//	metrics.InitMetrics()
//
//	// 2. 暴露/metrics端点
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	// 3. 在业务代码中记录
//	metrics.IncCounterVec(metrics.CatalogOperationsTotal, map[string]string{"op": "create", "result": "success"})
//	metrics.SetGauge(metrics.CatalogBooks, float64(n))
//
// 所有辅助函数对未初始化（nil）的指标是空操作，单元测试里不需要先调用InitMetrics。
//
// # 命名规范
//
//  1. Counter以`_total`结尾
//  2. Histogram以单位结尾（`_seconds`、`_bytes`）
//  3. 避免高基数标签：不要用book id、请求路径参数作为标签，路径使用gin的路由模板（/books/:id）
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	initOnce sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method（GET/POST）、path（/books/:id）、status（200/404）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 目录业务指标

	// CatalogBooks 当前目录中的图书数量（Gauge）
	CatalogBooks prometheus.Gauge

	// CatalogOperationsTotal 目录操作总数（Counter）
	// 标签：op（search/create/replace/patch/delete）、result（success/not_found/invalid/error）
	CatalogOperationsTotal *prometheus.CounterVec

	// ImagesStoredTotal 已保存的图片数量（Counter）
	ImagesStoredTotal prometheus.Counter

	// ImageBytesStored 已保存的图片字节数（Counter）
	ImageBytesStored prometheus.Counter

	// 种子数据指标

	// SeedDuration 启动时加载种子数据的耗时（Histogram）
	SeedDuration prometheus.Histogram

	// SeedBooksLoaded 种子数据加载的图书数量（Gauge）
	SeedBooksLoaded prometheus.Gauge

	// SeedCacheLookups 种子缓存查询次数（Counter）
	// 标签：result（hit/miss/error）
	SeedCacheLookups *prometheus.CounterVec

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（Gauge）
	// 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数（Counter）
	// 标签：name（熔断器名称）、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// Saga指标

	// SagaExecutionsTotal Saga执行总数（Counter）
	// 标签：saga（名称）、result（success/failure/timeout）
	SagaExecutionsTotal *prometheus.CounterVec

	// SagaExecutionDuration Saga执行耗时（Histogram）
	SagaExecutionDuration prometheus.Histogram

	// SagaCompensationsTotal Saga补偿执行总数（Counter）
	SagaCompensationsTotal prometheus.Counter

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数（Counter）
	// 标签：exchange（交换机）、routing_key（路由键）、result（success/failure）
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标并注册到默认Registry
//
// 设计要点：
// 1. 使用promauto.New*自动注册
// 2. sync.Once保证只注册一次（重复注册会panic）
// 3. Histogram的Buckets根据场景定制
func InitMetrics() {
	initOnce.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP请求总数",
			},
			[]string{"method", "path", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP请求耗时（秒）",
				// 内存目录的请求通常在毫秒级，带图片上传的请求可能到秒级
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"method", "path"},
		)

		HTTPRequestsInProgress = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_progress",
				Help: "正在处理的HTTP请求数",
			},
		)

		CatalogBooks = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "catalog_books",
				Help: "目录中的图书数量",
			},
		)

		CatalogOperationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_operations_total",
				Help: "目录操作总数",
			},
			[]string{"op", "result"},
		)

		ImagesStoredTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "catalog_images_stored_total",
				Help: "已保存的图片数量",
			},
		)

		ImageBytesStored = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "catalog_image_bytes_stored_total",
				Help: "已保存的图片字节数",
			},
		)

		SeedDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name: "catalog_seed_duration_seconds",
				Help: "种子数据加载耗时（秒）",
				// 外部搜索接口较慢，且带重试
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
		)

		SeedBooksLoaded = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "catalog_seed_books_loaded",
				Help: "种子数据加载的图书数量",
			},
		)

		SeedCacheLookups = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_seed_cache_lookups_total",
				Help: "种子缓存查询次数",
			},
			[]string{"result"},
		)

		CircuitBreakerState = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
			},
			[]string{"name"},
		)

		CircuitBreakerRequests = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "circuit_breaker_requests_total",
				Help: "熔断器请求总数",
			},
			[]string{"name", "result"},
		)

		SagaExecutionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saga_executions_total",
				Help: "Saga执行总数",
			},
			[]string{"saga", "result"},
		)

		SagaExecutionDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "saga_execution_duration_seconds",
				Help:    "Saga执行耗时（秒）",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
			},
		)

		SagaCompensationsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "saga_compensations_total",
				Help: "Saga补偿执行总数",
			},
		)

		MessagesPublishedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "messages_published_total",
				Help: "消息发布总数",
			},
			[]string{"exchange", "routing_key", "result"},
		)
	})
}

// IncCounter 递增Counter
func IncCounter(counter prometheus.Counter) {
	if counter == nil {
		return
	}
	counter.Inc()
}

// AddCounter 按给定值增加Counter
func AddCounter(counter prometheus.Counter, value float64) {
	if counter == nil {
		return
	}
	counter.Add(value)
}

// IncCounterVec 递增带标签的Counter
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	if counter == nil {
		return
	}
	counter.With(labels).Inc()
}

func IncGauge(gauge prometheus.Gauge) {
	if gauge == nil {
		return
	}
	gauge.Inc()
}

func DecGauge(gauge prometheus.Gauge) {
	if gauge == nil {
		return
	}
	gauge.Dec()
}

func SetGauge(gauge prometheus.Gauge, value float64) {
	if gauge == nil {
		return
	}
	gauge.Set(value)
}

func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	if gauge == nil {
		return
	}
	gauge.With(labels).Set(value)
}

func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	if histogram == nil {
		return
	}
	histogram.Observe(value)
}

func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	if histogram == nil {
		return
	}
	histogram.With(labels).Observe(value)
}
