// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil 提供 senate 测试的共享工具和辅助函数。

# 核心能力

  - 上下文辅助: TestContext / TestContextWithTimeout / CancelledContext，
    自动注册 Cleanup 防止泄漏
  - 交互输入: ScriptedInput 将多行命令拼成会话循环的输入流
  - 等待辅助: WaitFor 轮询等待条件满足

# 子包

  - testutil/mocks: MockGenerator（llm.Generator），支持 Builder 模式、
    脚本化响应、调用记录与错误注入
  - testutil/fixtures: 参议员人设工厂

# 使用示例

	ctx := testutil.TestContext(t)
	gen := mocks.NewMockGenerator().WithScript("a1", "b1")
	resp, err := gen.Generate(ctx, req)
*/
package testutil
