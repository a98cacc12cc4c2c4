package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/diamantrouge/maison/pkg/logger"
)

// FailedJobRecord is the failed_jobs row kept for `diamant queue:retry`.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	JobType  string    `gorm:"size:255;not null;index" json:"jobType"`
	Payload  string    `gorm:"type:text;not null" json:"payload"`
	Error    string    `gorm:"type:text" json:"error"`
	Attempts int       `gorm:"not null;default:0" json:"attempts"`
	FailedAt time.Time `gorm:"autoCreateTime" json:"failedAt"`
}

func (FailedJobRecord) TableName() string { return "failed_jobs" }

// UseDB also writes failed jobs to the failed_jobs table.
func UseDB(db *gorm.DB) { std.mu.Lock(); std.store = db; std.mu.Unlock() }

func (q *broker) fail(job Job, kind string, cause error, tries int) {
	now := time.Now()
	q.mu.Lock()
	q.failed = append(q.failed, FailedJob{Type: kind, Job: job, Err: cause, FailedAt: now, Attempts: tries})
	db := q.store
	q.mu.Unlock()
	if db == nil {
		return
	}

	rec := FailedJobRecord{JobType: kind, Attempts: tries, FailedAt: now}
	if cause != nil {
		rec.Error = cause.Error()
	}
	if body, err := json.Marshal(job); err == nil {
		rec.Payload = string(body)
	} else {
		rec.Payload = "{}"
		rec.Error += "; payload not encodable: " + err.Error()
	}
	if err := db.Create(&rec).Error; err != nil {
		logger.Error("queue: store failed job", "type", kind, "error", err)
	}
}

// RetryFailed pushes every stored failed job back onto the queue, deleting
// each row once it is queued, and returns how many went back.
func RetryFailed() (int, error) {
	std.mu.RLock()
	db, driver := std.store, std.driver
	std.mu.RUnlock()
	if db == nil {
		return 0, errors.New("queue: no database configured")
	}

	var rows []FailedJobRecord
	if err := db.Order("id").Find(&rows).Error; err != nil {
		return 0, fmt.Errorf("queue: load failed jobs: %w", err)
	}
	for i, row := range rows {
		raw, err := json.Marshal(message{Kind: row.JobType, Body: json.RawMessage(row.Payload), QueuedAt: time.Now()})
		if err != nil {
			return i, fmt.Errorf("queue: re-encode job %d: %w", row.ID, err)
		}
		if err := driver.Push(raw); err != nil {
			return i, err
		}
		if err := db.Delete(&FailedJobRecord{}, row.ID).Error; err != nil {
			return i + 1, fmt.Errorf("queue: delete failed job %d: %w", row.ID, err)
		}
	}
	return len(rows), nil
}
