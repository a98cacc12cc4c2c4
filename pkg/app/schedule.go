package app

import (
	"context"
	"sync"

	"github.com/diamantrouge/maison/pkg/logger"
	"github.com/diamantrouge/maison/pkg/schedule"
	"github.com/diamantrouge/maison/pkg/session"
)

const (
	TaskReminders    = "appointments:reminders"
	TaskSessionSweep = "sessions:sweep"
)

var scheduleOnce sync.Once

// RegisterSchedule declares the recurring tasks. Safe to call more than
// once.
func (a *App) RegisterSchedule() {
	scheduleOnce.Do(func() {
		schedule.Daily().At("09:00").Name(TaskReminders).WithoutOverlapping().Run(func(ctx context.Context) {
			n, err := a.Appointments.SendReminders(ctx)
			if err != nil {
				logger.Error("schedule: appointment reminders failed", "error", err)
				return
			}
			logger.Info("schedule: appointment reminders sent", "count", n)
		})

		schedule.Every(10).Minutes().Name(TaskSessionSweep).Run(func(context.Context) {
			if n := session.Sweep(); n > 0 {
				logger.Debug("schedule: expired sessions dropped", "count", n)
			}
		})
	})
}
