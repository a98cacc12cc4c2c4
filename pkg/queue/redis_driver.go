package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/diamantrouge/maison/pkg/logger"
)

// RedisDriver stores ready jobs in a list and delayed jobs (order reminders,
// retries) in a sorted set scored by their due Unix time. Every worker
// process promotes due jobs; the script keeps that idempotent.
type RedisDriver struct {
	rdb     *redis.Client
	ready   string
	delayed string
	stop    context.CancelFunc
	done    chan struct{}
}

// promote moves up to 100 due members from the delayed set onto the ready
// list in one step.
var promote = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, 100)
for _, job in ipairs(due) do
  redis.call('ZREM', KEYS[1], job)
  redis.call('LPUSH', KEYS[2], job)
end
return #due
`)

// NewRedisDriver queues on the client shared with pkg/cache.
func NewRedisDriver(rdb *redis.Client) *RedisDriver {
	ctx, cancel := context.WithCancel(context.Background())
	d := &RedisDriver{
		rdb:     rdb,
		ready:   "diamant:queue:jobs",
		delayed: "diamant:queue:delayed",
		stop:    cancel,
		done:    make(chan struct{}),
	}
	go d.promoteLoop(ctx)
	return d
}

// Close stops the promotion loop and waits for it.
func (d *RedisDriver) Close() {
	d.stop()
	<-d.done
}

func (d *RedisDriver) Push(payload []byte) error {
	if err := d.rdb.LPush(context.Background(), d.ready, payload).Err(); err != nil {
		return fmt.Errorf("queue/redis: push: %w", err)
	}
	return nil
}

func (d *RedisDriver) PushDelayed(payload []byte, delay time.Duration) error {
	due := redis.Z{Score: float64(time.Now().Add(delay).Unix()), Member: payload}
	if err := d.rdb.ZAdd(context.Background(), d.delayed, due).Err(); err != nil {
		return fmt.Errorf("queue/redis: delay: %w", err)
	}
	return nil
}

// Pop waits up to five seconds; an empty list yields (nil, nil) so the
// worker can notice shutdown.
func (d *RedisDriver) Pop(ctx context.Context) ([]byte, error) {
	kv, err := d.rdb.BRPop(ctx, 5*time.Second, d.ready).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("queue/redis: pop: %w", err)
	case len(kv) != 2:
		return nil, nil
	}
	return []byte(kv[1]), nil
}

func (d *RedisDriver) promoteLoop(ctx context.Context) {
	defer close(d.done)
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
		now := strconv.FormatInt(time.Now().Unix(), 10)
		n, err := promote.Run(ctx, d.rdb, []string{d.delayed, d.ready}, now).Int()
		if err != nil && ctx.Err() == nil {
			logger.Warn("queue/redis: promote delayed", "error", err)
			continue
		}
		if n > 0 {
			logger.Debug("queue/redis: promoted", "jobs", n)
		}
	}
}
