package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMongoEntryLiftsIdentifiers(t *testing.T) {
	h := newMongoHandler(&mongoSink{queue: make(chan Entry, 1)}, slog.LevelWarn)

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))

	bound := h.WithAttrs([]slog.Attr{slog.String("request_id", "a1b2c3d4")}).WithGroup("payment").(*MongoHandler)
	r := slog.NewRecord(time.Now(), slog.LevelWarn, "order: payment declined", 0)
	r.AddAttrs(slog.Uint64("order_id", 42), slog.Uint64("user_id", 7), slog.String("method", "card"))

	require.NoError(t, bound.Handle(context.Background(), r))
	e := <-bound.sink.queue
	assert.Equal(t, "a1b2c3d4", e.RequestID)
	assert.Equal(t, uint64(42), e.OrderID)
	assert.Equal(t, uint64(7), e.UserID)
	assert.Equal(t, "card", e.Attrs["payment.method"])
	assert.Equal(t, "WARN", e.Level)

	assert.Empty(t, h.attrs, "WithAttrs must not touch the parent")
}

func TestMongoQueueFullDropsRecord(t *testing.T) {
	h := newMongoHandler(&mongoSink{queue: make(chan Entry, 1)}, nil)
	for i := 0; i < 3; i++ {
		require.NoError(t, h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "x", 0)))
	}
	assert.Len(t, h.sink.queue, 1)
}

func TestTeeRespectsEachLevel(t *testing.T) {
	var debug, errs bytes.Buffer
	log := slog.New(tee{
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	}).With("request_id", "r1")

	log.Info("cart: line added")
	log.Error("order: insert failed")

	assert.Contains(t, debug.String(), "cart: line added")
	assert.Contains(t, debug.String(), "request_id=r1")
	assert.NotContains(t, errs.String(), "cart: line added")
	assert.Contains(t, errs.String(), "order: insert failed")
}

func TestWithCtxFallsBack(t *testing.T) {
	assert.Same(t, L, WithCtx(context.Background()))
	tagged := L.With("request_id", "r2")
	assert.Same(t, tagged, WithCtx(InjectLogger(context.Background(), tagged)))
}
