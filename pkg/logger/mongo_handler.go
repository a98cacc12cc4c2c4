package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/diamantrouge/maison/config"
)

const (
	mongoQueueSize = 4096
	mongoBatchSize = 50
	mongoFlushTick = 2 * time.Second
	mongoRetention = 30 * 24 * time.Hour
)

// Entry is one mirrored log line. The identifiers the back office searches
// by are lifted out of Attrs into their own fields.
type Entry struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	App       string    `bson:"app"`
	Env       string    `bson:"env"`
	Msg       string    `bson:"msg"`
	RequestID string    `bson:"request_id,omitempty"`
	UserID    any       `bson:"user_id,omitempty"`
	OrderID   any       `bson:"order_id,omitempty"`
	Attrs     bson.M    `bson:"attrs,omitempty"`
}

// mongoSink owns the connection and the background writer shared by every
// handler derived through WithAttrs or WithGroup.
type mongoSink struct {
	client *mongo.Client
	col    *mongo.Collection
	queue  chan Entry
	done   chan struct{}
	closed sync.Once
	wg     sync.WaitGroup
}

// MongoHandler is a slog.Handler mirroring records at or above its level
// into a MongoDB collection. Writes are batched off the request path and a
// full queue drops the record.
type MongoHandler struct {
	sink     *mongoSink
	level    slog.Leveler
	app, env string
	attrs    []slog.Attr
	groups   []string
}

// NewMongoHandler connects to uri and mirrors records into db.collection.
// Close must be called on shutdown.
func NewMongoHandler(uri, db, collection string, level slog.Leveler) (*MongoHandler, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).
		SetConnectTimeout(5*time.Second).
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(10))
	if err != nil {
		return nil, fmt.Errorf("logger: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("logger: mongo ping: %w", err)
	}

	col := client.Database(db).Collection(collection)
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "time", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(int32(mongoRetention.Seconds()))},
		{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetSparse(true)},
	})

	s := &mongoSink{
		client: client,
		col:    col,
		queue:  make(chan Entry, mongoQueueSize),
		done:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()

	return newMongoHandler(s, level), nil
}

func newMongoHandler(s *mongoSink, level slog.Leveler) *MongoHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &MongoHandler{sink: s, level: level, app: config.AppName(), env: config.AppEnv()}
}

func (h *MongoHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *MongoHandler) Handle(_ context.Context, r slog.Record) error {
	select {
	case h.sink.queue <- h.entry(r):
	default:
	}
	return nil
}

// entry flattens r and the handler's bound attributes into a document.
func (h *MongoHandler) entry(r slog.Record) Entry {
	e := Entry{
		Time:  r.Time,
		Level: r.Level.String(),
		App:   h.app,
		Env:   h.env,
		Msg:   r.Message,
		Attrs: bson.M{},
	}
	prefix := strings.Join(h.groups, ".")
	add := func(a slog.Attr) bool {
		v := a.Value.Resolve().Any()
		switch a.Key {
		case "request_id":
			e.RequestID = fmt.Sprint(v)
			return true
		case "user_id":
			e.UserID = v
			return true
		case "order_id":
			e.OrderID = v
			return true
		}
		key := a.Key
		if prefix != "" {
			key = prefix + "." + key
		}
		e.Attrs[key] = v
		return true
	}
	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(add)
	if len(e.Attrs) == 0 {
		e.Attrs = nil
	}
	return e
}

func (h *MongoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &c
}

func (h *MongoHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.groups = append(append([]string(nil), h.groups...), name)
	return &c
}

// Close flushes queued records and disconnects. Calling it twice is safe.
func (h *MongoHandler) Close() {
	h.sink.closed.Do(func() {
		close(h.sink.done)
		h.sink.wg.Wait()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.sink.client.Disconnect(ctx)
	})
}

func (s *mongoSink) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(mongoFlushTick)
	defer ticker.Stop()

	batch := make([]any, 0, mongoBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := s.col.InsertMany(ctx, batch); err != nil {
			fmt.Fprintf(os.Stderr, "logger: mongo insert: %v\n", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case e := <-s.queue:
			batch = append(batch, e)
			if len(batch) == mongoBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.done:
			for len(s.queue) > 0 {
				batch = append(batch, <-s.queue)
				if len(batch) == mongoBatchSize {
					flush()
				}
			}
			flush()
			return
		}
	}
}
