package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Logger 是全局日志实例。服务启动时通过 Init 完成初始化。
var Logger zerolog.Logger

func init() {
	// 未显式 Init 时也要可用（例如单元测试）
	Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Init 初始化全局结构化日志。
// 本地开发输出易读的控制台格式，其余环境输出 JSON。
func Init(serviceName string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var out = os.Stderr
	logger := zerolog.New(out)
	if os.Getenv("APP_ENV") == "local" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}

	Logger = logger.With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Ctx 返回携带追踪上下文的日志器。
// 如果 ctx 中存在有效的 Span，会自动附加 trace_id/span_id 字段，
// 方便在 Jaeger 和日志之间互相跳转。
func Ctx(ctx context.Context) *zerolog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return &Logger
	}
	l := Logger.With().
		Str("trace_id", span.SpanContext().TraceID().String()).
		Str("span_id", span.SpanContext().SpanID().String()).
		Logger()
	return &l
}
