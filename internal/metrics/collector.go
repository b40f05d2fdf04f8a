// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 产物存储指标收集器
type Collector struct {
	// 存储指标
	artifactsStored   *prometheus.CounterVec
	artifactsUpdated  *prometheus.CounterVec
	artifactsDeleted  *prometheus.CounterVec
	artifactsArchived prometheus.Counter
	contentBytes      prometheus.Gauge

	// 校验指标
	validationsTotal   *prometheus.CounterVec
	validationIssues   *prometheus.CounterVec
	validationDuration prometheus.Histogram

	// 缓存指标
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	logger *zap.Logger
}

// NewCollector 创建指标收集器
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// 存储指标
	c.artifactsStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_stored_total",
			Help:      "Total number of artifacts stored",
		},
		[]string{"type"},
	)

	c.artifactsUpdated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_updated_total",
			Help:      "Total number of artifact updates",
		},
		[]string{"type"},
	)

	c.artifactsDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_deleted_total",
			Help:      "Total number of artifacts deleted",
		},
		[]string{"type"},
	)

	c.artifactsArchived = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_archived_total",
			Help:      "Total number of artifacts moved to the archive",
		},
	)

	c.contentBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "content_bytes",
			Help:      "Best-effort total size of live content blobs in bytes",
		},
	)

	// 校验指标
	c.validationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Total number of artifact validations",
		},
		[]string{"type", "result"},
	)

	c.validationIssues = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_issues_total",
			Help:      "Total number of validation issues by code",
		},
		[]string{"code", "severity"},
	)

	c.validationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_duration_seconds",
			Help:      "Artifact validation duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	// 缓存指标
	c.cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_cache_hits_total",
			Help:      "Total number of content cache hits",
		},
	)

	c.cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_cache_misses_total",
			Help:      "Total number of content cache misses",
		},
	)

	c.logger.Debug("metrics collector initialized", zap.String("namespace", namespace))
	return c
}

// RecordStored 记录产物写入
func (c *Collector) RecordStored(artifactType string) {
	c.artifactsStored.WithLabelValues(artifactType).Inc()
}

// RecordUpdated 记录产物更新
func (c *Collector) RecordUpdated(artifactType string) {
	c.artifactsUpdated.WithLabelValues(artifactType).Inc()
}

// RecordDeleted 记录产物删除
func (c *Collector) RecordDeleted(artifactType string) {
	c.artifactsDeleted.WithLabelValues(artifactType).Inc()
}

// RecordArchived 记录归档数量
func (c *Collector) RecordArchived(count int) {
	c.artifactsArchived.Add(float64(count))
}

// SetContentBytes 更新内容总字节数
func (c *Collector) SetContentBytes(bytes int64) {
	c.contentBytes.Set(float64(bytes))
}

// RecordValidation 记录一次校验及其耗时
func (c *Collector) RecordValidation(artifactType string, valid bool, durationSeconds float64) {
	result := "passed"
	if !valid {
		result = "failed"
	}
	c.validationsTotal.WithLabelValues(artifactType, result).Inc()
	c.validationDuration.Observe(durationSeconds)
}

// RecordValidationIssue 按问题码记录校验问题
func (c *Collector) RecordValidationIssue(code, severity string) {
	c.validationIssues.WithLabelValues(code, severity).Inc()
}

// RecordCacheHit 记录缓存命中
func (c *Collector) RecordCacheHit() {
	c.cacheHits.Inc()
}

// RecordCacheMiss 记录缓存未命中
func (c *Collector) RecordCacheMiss() {
	c.cacheMisses.Inc()
}
