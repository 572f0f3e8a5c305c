// =============================================================================
// 📦 Senate 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultProblems 是未配置议题时使用的候选议题
var DefaultProblems = []string{
	"How should the Senate address climate change?",
	"What are the best steps to improve the healthcare system?",
	"How can we reform the education system to be more inclusive?",
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		LLM:       DefaultLLMConfig(),
		Memory:    DefaultMemoryConfig(),
		Session:   DefaultSessionConfig(),
		Log:       DefaultLogConfig(),
		Metrics:   DefaultMetricsConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultLLMConfig 返回默认 LLM 配置
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		APIKey:         "",
		BaseURL:        "",
		Model:          "gpt-4",
		Timeout:        2 * time.Minute,
		Temperature:    0.7,
		RateLimitRPS:   0,
		RateLimitBurst: 1,
	}
}

// DefaultMemoryConfig 返回默认记忆配置
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		Capacity: 5,
	}
}

// DefaultSessionConfig 返回默认会话配置
func DefaultSessionConfig() SessionConfig {
	problems := make([]string, len(DefaultProblems))
	copy(problems, DefaultProblems)
	return SessionConfig{
		Scenarios: 1,
		Seed:      0,
		Problems:  problems,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		EnableCaller:     false,
		EnableStacktrace: false,
	}
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   false,
		Addr:      ":9091",
		Namespace: "senate",
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "senate",
		SampleRate:   1.0,
	}
}
