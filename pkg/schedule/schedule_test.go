package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchCron(t *testing.T) {
	nine := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local) // Monday
	assert.True(t, matchCron("0 9 * * *", nine))
	assert.True(t, matchCron("*/15 8-10 * * 1", nine))
	assert.True(t, matchCron("0,30 9 * * *", nine))
	assert.False(t, matchCron("0 9 * * 0", nine))
	assert.False(t, matchCron("bad", nine))
}

func TestDailyAtRunsOncePerMinute(t *testing.T) {
	Reset()
	defer Reset()

	var runs atomic.Int32
	Daily().At("09:00").Name("appointments:remind").Run(func(context.Context) { runs.Add(1) })
	require.Equal(t, []string{"appointments:remind  [0 9 * * *]"}, List())

	nine := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	assert.Equal(t, 1, RunDue(context.Background(), nine))
	assert.Equal(t, 0, RunDue(context.Background(), nine.Add(30*time.Second)))
	assert.Equal(t, 0, RunDue(context.Background(), nine.Add(time.Hour)))

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestIntervalAndRunNamed(t *testing.T) {
	Reset()
	defer Reset()

	var runs atomic.Int32
	Every(15).Minutes().Name("sessions:sweep").Run(func(context.Context) { runs.Add(1) })

	start := time.Now()
	assert.Equal(t, 1, RunDue(context.Background(), start))
	assert.Equal(t, 0, RunDue(context.Background(), start.Add(time.Minute)))
	assert.Equal(t, 1, RunDue(context.Background(), start.Add(15*time.Minute)))

	require.NoError(t, RunNamed(context.Background(), "sessions:sweep"))
	assert.Error(t, RunNamed(context.Background(), "nope"))
	assert.Eventually(t, func() bool { return runs.Load() == 3 }, time.Second, 5*time.Millisecond)
}
