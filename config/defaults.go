// =============================================================================
// 📦 ArtifactFlow 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Storage:    DefaultStorageConfig(),
		Cache:      DefaultCacheConfig(),
		Validation: DefaultValidationConfig(),
		Summary:    DefaultSummaryConfig(),
		Log:        DefaultLogConfig(),
		Metrics:    DefaultMetricsConfig(),
	}
}

// DefaultStorageConfig 返回默认持久化配置
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		RootDir:          "./artifacts",
		ArchiveOlderThan: 7 * 24 * time.Hour,
	}
}

// DefaultCacheConfig 返回默认缓存配置
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Backend: "memory",
		MaxSize: 100,
		Redis:   DefaultRedisConfig(),
	}
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:      "localhost:6379",
		Password:  "",
		DB:        0,
		KeyPrefix: "artifactflow:content:",
		TTL:       30 * time.Minute,
		PoolSize:  10,
	}
}

// DefaultValidationConfig 返回默认校验配置
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		MaxContentSizeBytes: 10 * 1024 * 1024,
		MinContentLength:    1,
		ValidateStructure:   true,
		Strict:              true,
		FailFast:            false,
	}
}

// DefaultSummaryConfig 返回默认摘要配置
func DefaultSummaryConfig() SummaryConfig {
	return SummaryConfig{
		MaxBriefLength: 100,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   false,
		Namespace: "artifactflow",
	}
}
