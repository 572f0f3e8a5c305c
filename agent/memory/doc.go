// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 memory 提供参议员的议题上下文记忆。

# 概述

每位参议员独占一个 [ContextMemory]：以议题字符串为键，保存该参议员
自己在此议题下最近的若干条发言。生成下一次发言前，编排器调用
[ContextMemory.Retrieve] 取回压缩后的历史并拼入提示词；生成完成后
调用 [ContextMemory.Record] 写回。

# 淘汰策略

每个 (参议员, 议题) 对应一个固定容量的环形缓冲区，容量默认为
[DefaultCapacity]（5）。写满后新条目覆盖最旧条目，即 FIFO 滑动窗口，
Retrieve 总是按时间从旧到新返回全部保存的条目。

# 副作用

纯内存状态，无 I/O。内部互斥锁只为了让指标与调试读取安全，写入方
始终是单线程的编排器。
*/
package memory
