package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// =============================================================================
// 📈 指标与健康检查路由
// =============================================================================

// HTTPRecorder 记录 HTTP 请求指标
type HTTPRecorder interface {
	RecordHTTPRequest(method, path string, status int, duration time.Duration)
}

// HealthFunc 返回当前健康状态的附加信息
type HealthFunc func() map[string]any

// NewMetricsHandler 返回提供 /metrics 与 /health 的路由。
// recorder 与 health 均可为 nil。
func NewMetricsHandler(gatherer prometheus.Gatherer, recorder HTTPRecorder, health HealthFunc) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{"status": "ok"}
		if health != nil {
			for k, v := range health() {
				body[k] = v
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})

	if recorder == nil {
		return mux
	}
	return instrument(mux, recorder)
}

// statusWriter 记录写出的状态码
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func instrument(next http.Handler, recorder HTTPRecorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := r.URL.Path
		if path != "/metrics" && path != "/health" {
			path = "other"
		}
		recorder.RecordHTTPRequest(r.Method, path, sw.status, time.Since(start))
	})
}
