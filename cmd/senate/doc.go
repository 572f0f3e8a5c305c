// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package main 提供 senate 命令行程序入口。

# 概述

cmd/senate 装配参议院辩论模拟器：加载配置与人设文件，
注册 LLM 后端并包裹中间件链，创建编排器与交互会话，
可选地在独立端口暴露 Prometheus 指标。

# 子命令

  - debate：开始交互式辩论（--personas、--config、--scenarios、
    --transcript、--seed、--metrics-addr）
  - personas：校验并列出人设
  - version：显示版本信息

# 装配

  - 后端：gpt-4、gpt-4o（OpenAI），openai-compatible（配置了
    llm.base_url 时），echo（离线）
  - 中间件：Recovery、Tracing、Logging、Metrics、RateLimit、Timeout
  - 生命周期：errgroup 同时运行会话与指标服务器，会话结束或收到
    中断信号后一并退出
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main
