package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

const (
	FormatJSON = "json"
	FormatText = "text"
)

// Options controls handler selection. Zero values fall back to the
// environment: JSON inside Kubernetes or when ENV is prod/dev, colored
// text otherwise.
type Options struct {
	Format string
	Level  string
	Writer io.Writer
}

func New() *slog.Logger {
	return NewWithOptions(Options{})
}

func NewWithOptions(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}

	format := opts.Format
	if format == "" {
		format = defaultFormat()
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     parseLevel(opts.Level, slog.LevelInfo),
			AddSource: true,
		})
	} else {
		handler = &colorTextHandler{
			handler: slog.NewTextHandler(w, &slog.HandlerOptions{
				Level: parseLevel(opts.Level, slog.LevelDebug),
			}),
		}
	}
	return slog.New(&traceContextHandler{handler: handler})
}

func NewWithServiceContext(serviceName, version string) *slog.Logger {
	return New().With(
		slog.String("service", serviceName),
		slog.String("version", version),
		slog.String("environment", os.Getenv("ENV")),
	)
}

// Discard returns a logger that drops every record. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultFormat() string {
	if _, inK8s := os.LookupEnv("KUBERNETES_SERVICE_HOST"); inK8s {
		return FormatJSON
	}
	switch os.Getenv("ENV") {
	case "prod", "dev", "production", "development":
		return FormatJSON
	}
	return FormatText
}

func parseLevel(level string, fallback slog.Level) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return fallback
}

// colorTextHandler paints ERROR messages red for local terminals
type colorTextHandler struct {
	handler slog.Handler
}

func (h *colorTextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *colorTextHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level < slog.LevelError {
		return h.handler.Handle(ctx, r)
	}

	colored := slog.NewRecord(r.Time, r.Level, "\x1b[31m"+r.Message+"\x1b[0m", r.PC)
	r.Attrs(func(a slog.Attr) bool {
		colored.AddAttrs(a)
		return true
	})
	return h.handler.Handle(ctx, colored)
}

func (h *colorTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &colorTextHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *colorTextHandler) WithGroup(name string) slog.Handler {
	return &colorTextHandler{handler: h.handler.WithGroup(name)}
}

// traceContextHandler adds trace_id and span_id when the context carries a span
type traceContextHandler struct {
	handler slog.Handler
}

func (h *traceContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *traceContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	return h.handler.Handle(ctx, r)
}

func (h *traceContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceContextHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *traceContextHandler) WithGroup(name string) slog.Handler {
	return &traceContextHandler{handler: h.handler.WithGroup(name)}
}

type requestIDKey struct{}

// WithRequestID stores a request id that every record logged with ctx will carry.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored by WithRequestID.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
