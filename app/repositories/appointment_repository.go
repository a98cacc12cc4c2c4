package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/diamantrouge/maison/app/models"
)

type AppointmentRepository struct{ base }

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{base{db}}
}

// AppointmentFilter is the admin listing filter. Empty or "all" values are
// ignored. Date matches the whole calendar day.
type AppointmentFilter struct {
	Status   string
	Date     *time.Time
	Type     string
	Location string
}

func (r *AppointmentRepository) Create(ctx context.Context, a *models.Appointment) error {
	return mapErr(r.conn(ctx).Create(a).Error)
}

func (r *AppointmentRepository) ListForUser(ctx context.Context, userID uint) ([]models.Appointment, error) {
	var out []models.Appointment
	err := r.conn(ctx).Where("user_id = ?", userID).
		Order("appointment_date DESC").Order("id DESC").
		Find(&out).Error
	return out, mapErr(err)
}

func set(v string) bool { return v != "" && v != "all" }

func (r *AppointmentRepository) List(ctx context.Context, f AppointmentFilter) ([]models.Appointment, error) {
	q := r.conn(ctx).Model(&models.Appointment{})
	if set(f.Status) {
		q = q.Where("status = ?", f.Status)
	}
	if set(f.Type) {
		q = q.Where("appointment_type = ?", f.Type)
	}
	if set(f.Location) {
		q = q.Where("location = ?", f.Location)
	}
	if f.Date != nil {
		day := startOfDay(*f.Date)
		q = q.Where("appointment_date >= ? AND appointment_date < ?", day, day.AddDate(0, 0, 1))
	}
	var out []models.Appointment
	err := q.Order("created_at DESC").Order("id DESC").Find(&out).Error
	return out, mapErr(err)
}

func (r *AppointmentRepository) Find(ctx context.Context, id uint) (*models.Appointment, error) {
	var a models.Appointment
	if err := r.conn(ctx).First(&a, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

// Update writes the given columns and returns the fresh row.
func (r *AppointmentRepository) Update(ctx context.Context, id uint, fields map[string]any) (*models.Appointment, error) {
	if len(fields) > 0 {
		res := r.conn(ctx).Model(&models.Appointment{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, mapErr(res.Error)
		}
	}
	return r.Find(ctx, id)
}

func (r *AppointmentRepository) Delete(ctx context.Context, id uint) error {
	res := r.conn(ctx).Delete(&models.Appointment{}, id)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Upcoming returns the pending or confirmed appointments on the given day.
func (r *AppointmentRepository) Upcoming(ctx context.Context, day time.Time) ([]models.Appointment, error) {
	start := startOfDay(day)
	var out []models.Appointment
	err := r.conn(ctx).
		Where("status IN ?", []string{models.AppointmentPending, models.AppointmentConfirmed}).
		Where("appointment_date >= ? AND appointment_date < ?", start, start.AddDate(0, 0, 1)).
		Order("appointment_time").
		Find(&out).Error
	return out, mapErr(err)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
