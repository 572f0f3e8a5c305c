// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 openai 基于 github.com/sashabaranov/go-openai 实现 llm.Generator。

同一个 Provider 类型同时服务 gpt-4、gpt-4o 与 openai-compatible 三个后端：
前两者使用官方地址与固定模型名，后者使用配置中的 base_url 与 model，
可对接 LocalAI、vLLM 等兼容服务。

错误映射：429 映射为 RATE_LIMITED，其余 HTTP 失败与传输错误映射为
UPSTREAM_ERROR，空候选映射为 EMPTY_RESPONSE。context 取消原样返回。
*/
package openai
