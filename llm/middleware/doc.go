// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 middleware 提供生成请求的中间件链机制，在请求发送到上游模型
服务之前和响应返回之后插入可组合的横切逻辑。

# 核心类型

  - Handler：func(ctx, *GenerateRequest) (*GenerateResponse, error)
  - Middleware：func(Handler) Handler
  - Chain：中间件链，支持 Use / Then / Wrap

# 内置中间件

  - LoggingMiddleware：基于 zap 记录后端、参议员与耗时
  - TimeoutMiddleware：为请求添加 context 超时
  - MetricsMiddleware：通过 MetricsRecorder 上报耗时、用量与错误
  - RateLimitMiddleware：基于 golang.org/x/time/rate 的阻塞式限流
  - RecoveryMiddleware：捕获 panic 并转为 PanicError
  - TracingMiddleware：基于 OpenTelemetry 的 span

生成失败不会被重试；一次失败即终止当前轮次。
*/
package middleware
