// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 llm 提供参议员响应生成的统一接入层。

# 概述

每位参议员在人设中声明一个后端（[Backend]），生成请求
（[GenerateRequest]）由 [Registry] 按后端分发给具体的 [Generator]。
后端是封闭枚举，未知取值在人设加载阶段就会被 [ParseBackend] 拒绝；
运行期若请求了未注册的后端，[Registry.Generate] 返回
UNSUPPORTED_BACKEND 错误，调用方应终止当前轮次。

# 核心接口

  - [Generator]：同步生成接口，取消通过 context 传递，不做重试
  - [GeneratorFunc]：函数适配器

# 核心类型

  - [Backend]：gpt-4 / gpt-4o / openai-compatible / echo
  - [GenerateRequest] / [GenerateResponse]：生成请求与响应
  - [Usage]：token 用量

# 相关子包

  - llm/providers/openai：基于 go-openai 的 OpenAI 及兼容服务实现
  - llm/providers/echo：离线确定性实现
  - llm/middleware：生成器中间件（限流、日志）
  - llm/tokenizer：提示词 token 计数
*/
package llm
