// Copyright (c) ArtifactFlow Authors.
// Licensed under the MIT License.

/*
Package store 是产物存储的门面层，协调摘要、持久化、校验、索引与缓存，
对外提供智能体流水线消费的全部操作。

# 概述

Store 将各子系统编排为一组高层操作：

  - 写入 — StoreArtifact 生成 "{type}_{timestamp}_{random}" 形式的
    标识符，生成摘要，先写内容后写元数据，更新索引与缓存；
    StoreValidatedArtifact 在持久化之前对临时产物壳执行完整校验，
    校验不通过则不落盘
  - 更新 — UpdateArtifact 对同一 id 的更新串行化（按 id 加锁），
    内容变更递增版本号并重新生成摘要，元数据浅合并；
    UpdateStatus 仅更新状态与更新时间，版本号不变
  - 读取 — LoadArtifactContent 先查内容缓存，未命中经 singleflight
    合并后从磁盘加载并回填缓存；GetArtifact 与各查询方法返回
    索引投影（不含摘要），不触达磁盘
  - 生命周期 — ArchiveOldArtifacts 按时间与状态归档并从索引和缓存
    移除；DeleteArtifact 硬删除；Clear 清空活跃存储但保留归档区

索引是持久化元数据的内存投影，启动时通过全量扫描重建，
永远不是事实来源。

内容缓存默认为进程内有界 FIFO 缓存（默认容量 100），
可替换为 Redis 后端。

# 使用示例

	persist, _ := storage.NewFileStore("/var/lib/artifactflow", logger)
	st, _ := store.NewStore(ctx, persist, nil, logger, store.Options{})
	defer st.Close()

	artifact, _ := st.StoreArtifact(ctx, store.StoreArtifactOptions{
		Type:     types.ArtifactTypeCode,
		Producer: "coder_agent",
		Content:  "// File: main.go\npackage main",
	})
	content, _ := st.LoadArtifactContent(ctx, artifact.ID)
	_ = content
*/
package store
