// Copyright (c) ArtifactFlow Authors.
// Licensed under the MIT License.

/*
Package summarize 为产物内容生成轻量级、类型感知的摘要。

# 概述

下游智能体的上下文窗口是稀缺资源。summarize 在产物写入时对内容做单遍
正则/字符串扫描，产出 ArtifactSummary（brief、keyPoints、filesAffected、
可选数值指标），使消费方无需加载完整内容即可判断产物是否相关。

# 行为约定

  - 纯函数：无 I/O、无内部状态（仅配置的 brief 长度上限），
    对相同输入产出相同结果，永不失败
  - 未识别类型回退到通用策略（首行 + 前 5 个非空行 + 文件路径提取）
  - 每类型的提取规则各不相同：计划/文档取 Markdown 标题，伪代码取
    Structure 条目，代码取声明片段，评审取 issue 片段并计数，
    测试结果取 passed/failed/skipped 计数与失败用例名
  - 所有提取统一封顶：关键点 ≤100 字符（代码声明 ≤80），
    文件列表去重后 ≤20 条，brief 超限追加省略号
*/
package summarize
