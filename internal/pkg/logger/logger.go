// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// base 是进程级别的根日志器，所有带上下文的日志器都从它派生。
var base = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init 初始化全局日志器，绑定服务名并设置日志级别。
// 应该在服务启动时（bootstrap）调用一次。
func Init(serviceName, level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	base = zerolog.New(os.Stdout).
		Level(lvl).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// L 返回不带请求上下文的根日志器，用于启动/关停阶段。
func L() *zerolog.Logger {
	return &base
}

// Ctx 返回一个绑定了追踪信息的日志器。
// 如果上下文中存在有效的 Span，日志会自动携带 trace_id/span_id，
// 方便在 Jaeger 和日志系统之间互相跳转。
func Ctx(ctx context.Context) *zerolog.Logger {
	l := base
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		l = l.With().
			Str("trace_id", sc.TraceID().String()).
			Str("span_id", sc.SpanID().String()).
			Logger()
	}
	return &l
}
