// Package config 提供 senate 的配置管理功能。
//
// 配置按 默认值 → YAML 文件 → 环境变量（前缀 SENATE）的顺序叠加，
// 覆盖 LLM 后端、参议员记忆容量、交互会话、日志、指标与遥测。
package config
