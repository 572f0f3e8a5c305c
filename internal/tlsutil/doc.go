// Package tlsutil 提供调用 LLM 服务时使用的 HTTP 客户端（TLS 1.2+，仅 AEAD 密码套件）。
package tlsutil
