// Copyright (c) ArtifactFlow Authors.
// Licensed under the MIT License.

/*
Package validate 实现产物在被下游智能体信任之前必须通过的分级校验流水线。

# 概述

校验分四个有序阶段，每个阶段可独立调用：

 1. 内容校验 — 字节大小、最小长度、非空白检查，随后按类型做结构性
    检查（仅 warning/info 级，单独不阻断），最后执行本次调用传入的
    CustomRules
 2. 模式校验 — 对产物记录本身的字段级断言（id、producer 非空，
    version >= 1），严格模式下为 error 级
 3. 完整性校验 — 重算内容哈希与 ExpectedHash 比对（不匹配为 error），
    并无条件扫描损坏标记（替换字符、NUL 字节，warning 级）
 4. 自定义规则引擎 — 按优先级降序执行已注册的启用规则；规则内部的
    panic 或返回错误被隔离降级为 RULE_EXECUTION_ERROR warning，
    引擎永不因坏规则中断

FailFast 选项在阶段 1、2 结束时检查累积问题：一旦出现 error 级问题
立即返回，阶段 3、4 被跳过。规则阶段不参与 fail-fast 短路。

# 派生操作

  - IsValid                  — 布尔包装
  - ValidateBeforeDownstream — 下游消费闸门，失败时以 "; " 连接全部
    error 级消息抛出单个聚合错误
  - GetTypedValidation       — 仅结构检查 + 轻量元数据提取
  - ComputeContentHash       — sha256/sha1/md5 内容哈希

# 状态与事件

统计计数器与事件监听器都是 Validator 实例状态（非包级全局）。
每次 ValidateArtifact 发出 validation:started，结束时按最终有效性
发出 validation:completed 或 validation:failed 之一，终态事件携带
完整结果。
*/
package validate
