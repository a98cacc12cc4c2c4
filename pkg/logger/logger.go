// Package logger provides a structured, levelled logger built on log/slog.
//
// WithCtx returns the per-request logger injected by middleware.Logger, so
// every line from a handler carries the request ID:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order placed", "total", order.TotalAmount)
//	// → time=... level=INFO msg="order placed" request_id=a1b2c3d4 total=5099.99
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/diamantrouge/maison/config"
)

var L *slog.Logger

func init() {
	L = slog.New(baseHandler())
	slog.SetDefault(L)
}

func baseHandler() slog.Handler {
	switch config.AppEnv() {
	case "production", "prod":
		return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	case "test":
		return slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn})
	default:
		return slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}

// Setup mirrors records at LOG_MONGO_LEVEL and above to MongoDB when
// LOG_MONGO_URI is set. The returned function flushes pending records and
// must be called on shutdown.
func Setup() func() {
	uri := config.LogMongoURI()
	if uri == "" {
		return func() {}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(config.LogMongoLevel())); err != nil {
		L.Warn("logger: bad LOG_MONGO_LEVEL, using info", "value", config.LogMongoLevel())
		level = slog.LevelInfo
	}
	mh, err := NewMongoHandler(uri, config.LogMongoDB(), config.LogMongoCollection(), level)
	if err != nil {
		L.Warn("logger: mongo sink disabled", "error", err)
		return func() {}
	}

	L = slog.New(tee{baseHandler(), mh})
	slog.SetDefault(L)
	L.Info("logger: mirroring to mongo", "db", config.LogMongoDB(), "collection", config.LogMongoCollection(), "level", level)
	return mh.Close
}

type ctxKey struct{}

// WithCtx returns the logger stored in ctx by InjectLogger, or the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a *slog.Logger (pre-tagged with request_id) into ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }

func Info(msg string, args ...any) { L.Info(msg, args...) }

func Warn(msg string, args ...any) { L.Warn(msg, args...) }

func Error(msg string, args ...any) { L.Error(msg, args...) }
