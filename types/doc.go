// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 senate 模拟器的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 persona、llm、
agent/senate 与 internal/session 等上层模块提供统一的错误契约与
Context 传播工具，以避免循环依赖。

# 核心类型

  - Error / ErrorCode — 结构化错误体系，含 Retryable、Provider 标记
  - ErrUnsupportedBackend — 配置错误，致命
  - ErrAgentNotFound — 定向提问时未找到参议员，可恢复
  - ErrInvalidCommand — 非法交互命令，可恢复
  - ErrInvalidPersona — 人设记录缺失或格式错误，启动期致命

# 主要能力

  - 错误工具链：AsError / GetErrorCode / IsErrorCode / IsRecoverable
  - Context 传播：WithSessionID / WithRoundID / WithAgentName
*/
package types
