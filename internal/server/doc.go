// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 server 提供指标 HTTP 服务器的生命周期管理。

# 概述

本包通过 Manager 封装 net/http.Server，统一管理监听、服务、
关闭与错误传播流程。辩论会话运行期间，CLI 通过 errgroup 调用
Manager.Serve 暴露 Prometheus 指标；会话结束或收到中断信号时
ctx 被取消，服务器随之优雅关闭。

# 核心类型

  - Manager：HTTP 服务器管理器，持有 http.Server、net.Listener
    与异步错误通道，提供 Start/Serve/Shutdown 等生命周期方法。
  - Config：服务器配置，包含监听地址、读写超时、空闲超时、
    最大请求头大小与优雅关闭超时。
  - NewMetricsHandler：/metrics（promhttp）与 /health 路由，
    可选 HTTPRecorder 记录请求指标。
*/
package server
