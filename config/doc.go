// Copyright (c) ArtifactFlow Authors.
// Licensed under the MIT License.

/*
Package config 提供 ArtifactFlow 的统一配置加载。

# 概述

配置覆盖存储、缓存、校验、摘要、日志与指标六个部分，
加载优先级固定为：默认值 → YAML 文件 → 环境变量。

环境变量键按结构层级拼接，前缀默认 ARTIFACTFLOW，例如：

	ARTIFACTFLOW_STORAGE_ROOT_DIR=/var/lib/artifactflow
	ARTIFACTFLOW_CACHE_BACKEND=redis
	ARTIFACTFLOW_CACHE_REDIS_ADDR=localhost:6379

# 使用示例

	cfg, err := config.NewLoader().
	    WithConfigPath("config.yaml").
	    WithValidator((*config.Config).Validate).
	    Load()
*/
package config
