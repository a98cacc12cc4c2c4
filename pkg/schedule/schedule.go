// Package schedule runs the boutique's recurring jobs inside the serve or
// schedule:run process.
//
//	schedule.Daily().At("09:00").Name("appointments:reminders").WithoutOverlapping().Run(remind)
//	schedule.Every(10).Minutes().Name("sessions:sweep").Run(sweep)
//	schedule.Start(ctx)
package schedule

import (
	"context"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/diamantrouge/maison/pkg/logger"
)

type Task func(ctx context.Context)

type job struct {
	name   string
	expr   string
	cron   *cronSpec
	every  time.Duration
	single bool
	task   Task

	mu   sync.Mutex
	last time.Time
	busy bool
}

var registry struct {
	sync.Mutex
	jobs []*job
}

// Builder collects a job's timing and options until Run registers it.
type Builder struct{ j *job }

// Cron schedules on a five-field expression (minute hour day month
// weekday). Fields take *, n, a-b, */n and comma lists.
func Cron(expr string) *Builder { return &Builder{j: &job{expr: expr}} }

// Daily runs at midnight unless At moves it.
func Daily() *Builder { return Cron("0 0 * * *") }

type Interval struct{ n int }

func Every(n int) Interval { return Interval{n: n} }

func (i Interval) Minutes() *Builder { return &Builder{j: &job{every: time.Duration(i.n) * time.Minute}} }
func (i Interval) Hours() *Builder   { return &Builder{j: &job{every: time.Duration(i.n) * time.Hour}} }

// At pins the job to HH:MM every day. It panics on a malformed time since
// schedules are declared at boot.
func (b *Builder) At(hhmm string) *Builder {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(fmt.Sprintf("schedule: invalid time %q", hhmm))
	}
	b.j.expr, b.j.every = fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()), 0
	return b
}

func (b *Builder) Name(name string) *Builder {
	b.j.name = name
	return b
}

// WithoutOverlapping skips a tick while the previous run is still going.
func (b *Builder) WithoutOverlapping() *Builder {
	b.j.single = true
	return b
}

func (b *Builder) Run(task Task) {
	j := b.j
	j.task = task
	if j.expr != "" {
		spec, err := parseCron(j.expr)
		if err != nil {
			logger.Error("schedule: job will never run", "job", j.name, "error", err)
		}
		j.cron = spec
	}
	registry.Lock()
	defer registry.Unlock()
	if j.name == "" {
		j.name = "job-" + strconv.Itoa(len(registry.jobs)+1)
	}
	registry.jobs = append(registry.jobs, j)
}

func snapshot() []*job {
	registry.Lock()
	defer registry.Unlock()
	return append([]*job(nil), registry.jobs...)
}

// Start checks for due jobs every second until ctx ends.
func Start(ctx context.Context) {
	logger.Info("schedule: started", "jobs", len(snapshot()))
	go func() {
		tick := time.NewTicker(time.Second)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-tick.C:
				RunDue(ctx, now)
			}
		}
	}()
}

// RunDue starts every job due at now in its own goroutine and returns how
// many were started.
func RunDue(ctx context.Context, now time.Time) int {
	started := 0
	for _, j := range snapshot() {
		if j.claim(now) {
			go j.exec(ctx)
			started++
		}
	}
	return started
}

// RunNamed runs one job inline, whatever its timing (schedule:run --task).
func RunNamed(ctx context.Context, name string) error {
	for _, j := range snapshot() {
		if j.name == name {
			j.task(ctx)
			return nil
		}
	}
	return fmt.Errorf("schedule: no job named %q", name)
}

// List describes the jobs as "name  [timing]".
func List() []string {
	jobs := snapshot()
	out := make([]string, len(jobs))
	for i, j := range jobs {
		timing := j.expr
		if timing == "" {
			timing = "every " + j.every.String()
		}
		out[i] = fmt.Sprintf("%s  [%s]", j.name, timing)
	}
	return out
}

// Reset drops every job.
func Reset() {
	registry.Lock()
	registry.jobs = nil
	registry.Unlock()
}

// claim marks the job as started at now when it is due. Cron jobs fire at
// most once per matching minute.
func (j *job) claim(now time.Time) bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	var due bool
	switch {
	case j.cron != nil:
		due = j.cron.match(now) && !j.last.Truncate(time.Minute).Equal(now.Truncate(time.Minute))
	case j.every > 0:
		due = j.last.IsZero() || now.Sub(j.last) >= j.every
	}
	if !due {
		return false
	}
	if j.single && j.busy {
		logger.Warn("schedule: previous run still going", "job", j.name)
		return false
	}
	j.last, j.busy = now, true
	return true
}

func (j *job) exec(ctx context.Context) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("schedule: job panicked", "job", j.name, "panic", fmt.Sprint(r))
		}
		j.mu.Lock()
		j.busy = false
		j.mu.Unlock()
		logger.Debug("schedule: job done", "job", j.name, "duration_ms", time.Since(start).Milliseconds())
	}()
	j.task(ctx)
}

// cronSpec holds one bitset per field: minute, hour, day, month, weekday.
type cronSpec [5]uint64

var cronBounds = [5][2]int{{0, 59}, {0, 23}, {1, 31}, {1, 12}, {0, 6}}

func parseCron(expr string) (*cronSpec, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, fmt.Errorf("schedule: %q needs five fields", expr)
	}
	var s cronSpec
	for i, f := range fields {
		set, err := parseField(f, cronBounds[i][0], cronBounds[i][1])
		if err != nil {
			return nil, fmt.Errorf("schedule: %q: %w", expr, err)
		}
		s[i] = set
	}
	return &s, nil
}

func parseField(field string, lo, hi int) (uint64, error) {
	var set uint64
	for _, part := range strings.Split(field, ",") {
		from, to, step := lo, hi, 1
		rng, stepRaw, hasStep := strings.Cut(part, "/")
		if hasStep {
			n, err := strconv.Atoi(stepRaw)
			if err != nil || n <= 0 {
				return 0, fmt.Errorf("bad step in %q", part)
			}
			step = n
		}
		if rng != "*" {
			a, b, isRange := strings.Cut(rng, "-")
			x, err := strconv.Atoi(a)
			if err != nil {
				return 0, fmt.Errorf("bad value %q", part)
			}
			from, to = x, x
			if isRange {
				if to, err = strconv.Atoi(b); err != nil {
					return 0, fmt.Errorf("bad range %q", part)
				}
			}
		}
		if from < lo || to > hi || from > to {
			return 0, fmt.Errorf("%q out of %d-%d", part, lo, hi)
		}
		for v := from; v <= to; v += step {
			set |= 1 << uint(v)
		}
	}
	if bits.OnesCount64(set) == 0 {
		return 0, fmt.Errorf("empty field %q", field)
	}
	return set, nil
}

func (s *cronSpec) match(t time.Time) bool {
	vals := [5]int{t.Minute(), t.Hour(), t.Day(), int(t.Month()), int(t.Weekday())}
	for i, v := range vals {
		if s[i]&(1<<uint(v)) == 0 {
			return false
		}
	}
	return true
}

func matchCron(expr string, t time.Time) bool {
	s, err := parseCron(expr)
	return err == nil && s.match(t)
}
