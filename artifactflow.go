// Package artifactflow provides a top-level convenience entry point for
// assembling a fully wired artifact store from configuration.
//
// Usage:
//
//	import "github.com/BaSui01/artifactflow"
//
//	st, err := artifactflow.New(ctx, nil)                       // defaults
//	st, err := artifactflow.NewFromFile(ctx, "config.yaml")     // yaml + env
//
// The assembled store uses file persistence under the configured root,
// the configured content cache backend (in-process FIFO or Redis), and
// optionally a prometheus metrics collector.
package artifactflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/artifactflow/config"
	icache "github.com/BaSui01/artifactflow/internal/cache"
	"github.com/BaSui01/artifactflow/internal/metrics"
	"github.com/BaSui01/artifactflow/storage"
	"github.com/BaSui01/artifactflow/store"
	"github.com/BaSui01/artifactflow/validate"
)

// New assembles a store from cfg. A nil cfg uses config.DefaultConfig.
func New(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := buildLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	persist, err := storage.NewFileStore(cfg.Storage.RootDir, logger)
	if err != nil {
		return nil, err
	}

	opts := store.Options{
		MaxCacheSize:     cfg.Cache.MaxSize,
		MaxBriefLength:   cfg.Summary.MaxBriefLength,
		ArchiveOlderThan: cfg.Storage.ArchiveOlderThan,
	}

	if cfg.Metrics.Enabled {
		opts.Collector = metrics.NewCollector(cfg.Metrics.Namespace, logger)
	}

	if cfg.Cache.Backend == "redis" {
		redisCache, err := icache.NewRedisCache(icache.RedisConfig{
			Addr:      cfg.Cache.Redis.Addr,
			Password:  cfg.Cache.Redis.Password,
			DB:        cfg.Cache.Redis.DB,
			KeyPrefix: cfg.Cache.Redis.KeyPrefix,
			TTL:       cfg.Cache.Redis.TTL,
			PoolSize:  cfg.Cache.Redis.PoolSize,
		}, logger)
		if err != nil {
			return nil, err
		}
		opts.Cache = redisCache
	}

	validator := validate.NewValidator(logger, opts.Collector)
	validator.SetDefaultOptions(&validate.Options{
		MaxContentSizeBytes: cfg.Validation.MaxContentSizeBytes,
		MinContentLength:    cfg.Validation.MinContentLength,
		ValidateStructure:   validate.Bool(cfg.Validation.ValidateStructure),
		Strict:              validate.Bool(cfg.Validation.Strict),
		FailFast:            cfg.Validation.FailFast,
	})

	return store.NewStore(ctx, persist, validator, logger, opts)
}

// NewFromFile loads configuration from a YAML file (with environment
// overrides) and assembles a store from it.
func NewFromFile(ctx context.Context, path string) (*store.Store, error) {
	cfg, err := config.NewLoader().WithConfigPath(path).Load()
	if err != nil {
		return nil, err
	}
	return New(ctx, cfg)
}

// buildLogger constructs a zap logger from the log section.
func buildLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if len(cfg.OutputPaths) > 0 {
		zc.OutputPaths = cfg.OutputPaths
	}
	zc.DisableCaller = !cfg.EnableCaller
	zc.DisableStacktrace = !cfg.EnableStacktrace

	return zc.Build()
}
