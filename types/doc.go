// Copyright (c) ArtifactFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 ArtifactFlow 产物存储的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 store、storage、validate、
summarize 等上层模块提供统一的类型契约。所有跨包共享的结构体、枚举和
错误码均定义于此，以避免循环依赖。

# 核心类型

  - Artifact          — 产物元数据模型（ID、类型、状态、版本、摘要、
    元数据袋、ContentRef），时间戳为毫秒级 Unix 时间
  - ArtifactType      — 八种产物类型的封闭枚举（user_task、code 等）
  - ArtifactStatus    — 开放的生命周期状态（in_progress、completed、
    approved 等，允许上层自定义扩展）
  - ArtifactSummary   — 面向下游智能体的轻量摘要（brief、keyPoints、
    filesAffected、可选指标）
  - ValidationIssue   — 校验问题（code + severity + message）
  - ValidationResult  — 单次校验的聚合结果，仅 error 级问题影响有效性
  - Error / ErrorCode — 结构化错误体系，含产物 ID 标记与 Unwrap 链

# 约定

  - Metadata 是开放的 map[string]any 袋子，更新时浅合并而非整体替换，
    MetaParentArtifactID 等常量定义了存储与索引理解的保留键
  - Version 从 1 开始，仅在内容变化时递增
*/
package types
