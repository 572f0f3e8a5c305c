// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 session 实现终端上的交互式辩论循环。

每个场景从候选议题中随机选取一个（种子可配置），打印
"Presenting problem: ..."，所有参议员依次开场发言。随后循环读取命令：

  - C：读取一段用户发言，所有参议员再轮流回应一次，本场景结束。
  - Q：读取参议员姓名（忽略大小写）与问题，由该参议员单独回答；
    姓名不存在时提示后继续循环。
  - 其他输入：提示无效并重新询问。

输入结束（EOF）时会话正常结束；生成失败等错误直接返回给调用方。
每条发言同时写入 transcript.Sink。
*/
package session
