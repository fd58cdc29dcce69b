package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

// TestInitMetrics 测试指标初始化（可重复调用）
func TestInitMetrics(t *testing.T) {
	InitMetrics()
	InitMetrics()

	assert.NotNil(t, HTTPRequestsTotal, "HTTPRequestsTotal未初始化")
	assert.NotNil(t, HTTPRequestDuration, "HTTPRequestDuration未初始化")
	assert.NotNil(t, HTTPRequestsInProgress, "HTTPRequestsInProgress未初始化")
	assert.NotNil(t, CatalogBooks, "CatalogBooks未初始化")
	assert.NotNil(t, CatalogOperationsTotal, "CatalogOperationsTotal未初始化")
	assert.NotNil(t, SeedDuration, "SeedDuration未初始化")
}

// TestNilSafe 未初始化的指标调用辅助函数不应panic
func TestNilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		IncCounter(nil)
		AddCounter(nil, 3)
		IncCounterVec(nil, map[string]string{"op": "create"})
		IncGauge(nil)
		DecGauge(nil)
		SetGauge(nil, 1)
		SetGaugeVec(nil, map[string]string{"name": "x"}, 1)
		ObserveHistogram(nil, 1)
		ObserveHistogramVec(nil, map[string]string{"method": "GET"}, 1)
	})
}

// TestCounterVec 测试目录操作计数
func TestCounterVec(t *testing.T) {
	InitMetrics()

	labels := map[string]string{"op": "create", "result": "success"}
	before := getCounterVecValue(t, CatalogOperationsTotal, labels)

	IncCounterVec(CatalogOperationsTotal, labels)
	IncCounterVec(CatalogOperationsTotal, labels)
	IncCounterVec(CatalogOperationsTotal, map[string]string{"op": "delete", "result": "not_found"})

	assert.Equal(t, before+2, getCounterVecValue(t, CatalogOperationsTotal, labels))
}

// TestGauge 测试Gauge指标
func TestGauge(t *testing.T) {
	InitMetrics()

	SetGauge(CatalogBooks, 0)
	IncGauge(CatalogBooks)
	IncGauge(CatalogBooks)
	assert.Equal(t, float64(2), getGaugeValue(t, CatalogBooks))

	DecGauge(CatalogBooks)
	assert.Equal(t, float64(1), getGaugeValue(t, CatalogBooks))

	SetGauge(CatalogBooks, 58)
	assert.Equal(t, float64(58), getGaugeValue(t, CatalogBooks))
}

// TestGaugeVec 测试熔断器状态
func TestGaugeVec(t *testing.T) {
	InitMetrics()

	SetGaugeVec(CircuitBreakerState, map[string]string{"name": "openlibrary"}, 1) // OPEN
	SetGaugeVec(CircuitBreakerState, map[string]string{"name": "other"}, 0)       // CLOSED

	assert.Equal(t, float64(1), getGaugeVecValue(t, CircuitBreakerState, map[string]string{"name": "openlibrary"}))
	assert.Equal(t, float64(0), getGaugeVecValue(t, CircuitBreakerState, map[string]string{"name": "other"}))
}

// TestHistogram 测试Histogram指标
func TestHistogram(t *testing.T) {
	InitMetrics()

	beforeCount, beforeSum := getHistogramStats(t, SeedDuration)

	ObserveHistogram(SeedDuration, 0.5)
	ObserveHistogram(SeedDuration, 1.5)

	count, sum := getHistogramStats(t, SeedDuration)
	assert.Equal(t, beforeCount+2, count)
	assert.InDelta(t, beforeSum+2.0, sum, 1e-9)
}

// TestHistogramVec 测试按路由模板记录耗时
func TestHistogramVec(t *testing.T) {
	InitMetrics()

	labels := map[string]string{"method": "GET", "path": "/books"}
	before := getHistogramVecCount(t, HTTPRequestDuration, labels)

	ObserveHistogramVec(HTTPRequestDuration, labels, 0.002)
	ObserveHistogramVec(HTTPRequestDuration, labels, 0.004)
	ObserveHistogramVec(HTTPRequestDuration, map[string]string{"method": "POST", "path": "/books"}, 0.2)

	assert.Equal(t, before+2, getHistogramVecCount(t, HTTPRequestDuration, labels))
}

// 辅助函数：获取CounterVec值
func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels map[string]string) float64 {
	var metric dto.Metric
	if err := counterVec.With(labels).Write(&metric); err != nil {
		t.Fatalf("读取CounterVec值失败: %v", err)
	}
	return metric.Counter.GetValue()
}

// 辅助函数：获取Gauge值
func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	var metric dto.Metric
	if err := gauge.Write(&metric); err != nil {
		t.Fatalf("读取Gauge值失败: %v", err)
	}
	return metric.Gauge.GetValue()
}

// 辅助函数：获取GaugeVec值
func getGaugeVecValue(t *testing.T, gaugeVec *prometheus.GaugeVec, labels map[string]string) float64 {
	var metric dto.Metric
	if err := gaugeVec.With(labels).Write(&metric); err != nil {
		t.Fatalf("读取GaugeVec值失败: %v", err)
	}
	return metric.Gauge.GetValue()
}

// 辅助函数：获取Histogram观测次数与总和
func getHistogramStats(t *testing.T, histogram prometheus.Histogram) (uint64, float64) {
	var metric dto.Metric
	if err := histogram.Write(&metric); err != nil {
		t.Fatalf("读取Histogram值失败: %v", err)
	}
	return metric.Histogram.GetSampleCount(), metric.Histogram.GetSampleSum()
}

// 辅助函数：获取HistogramVec观测次数
func getHistogramVecCount(t *testing.T, histogramVec *prometheus.HistogramVec, labels map[string]string) uint64 {
	var metric dto.Metric
	histogram := histogramVec.With(labels)
	if err := histogram.(prometheus.Histogram).Write(&metric); err != nil {
		t.Fatalf("读取HistogramVec值失败: %v", err)
	}
	return metric.Histogram.GetSampleCount()
}
