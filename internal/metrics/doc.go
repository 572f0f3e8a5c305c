// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的指标采集能力，覆盖 HTTP、LLM
生成与辩论流程三个维度。

# 概述

Collector 使用 promauto 注册全部指标，按 namespace 隔离。它同时满足
senate.Recorder（轮次、发言、提示词 token）与
middleware.MetricsRecorder（生成耗时、用量、错误码）两个接口，
由 CLI 在启动时注入。

# 主要能力

  - HTTP 指标：请求总数与耗时，状态码归类为 2xx/3xx/4xx/5xx。
  - LLM 指标：按 backend 分组的请求总数、耗时、token 用量，
    失败按 types.ErrorCode 分组计数，本地提示词 token 直方图。
  - 辩论指标：按类型的轮次数、按参议员的发言数、
    交互命令结果（continue/question/miss/invalid）、场景数。
*/
package metrics
