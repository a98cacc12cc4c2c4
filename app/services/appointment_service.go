package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/diamantrouge/maison/app/jobs"
	"github.com/diamantrouge/maison/app/models"
	"github.com/diamantrouge/maison/app/notifications"
	"github.com/diamantrouge/maison/app/repositories"
	"github.com/diamantrouge/maison/pkg/logger"
	"github.com/diamantrouge/maison/pkg/notification"
	"github.com/diamantrouge/maison/pkg/validate"
)

type AppointmentService struct {
	appointments *repositories.AppointmentRepository
	users        *repositories.UserRepository
	now          func() time.Time
}

func NewAppointmentService(appointments *repositories.AppointmentRepository, users *repositories.UserRepository) *AppointmentService {
	return &AppointmentService{appointments: appointments, users: users, now: time.Now}
}

type BookAppointmentInput struct {
	AppointmentDate string         `json:"appointmentDate" validate:"required,date"`
	AppointmentTime string         `json:"appointmentTime" validate:"required,clock"`
	Location        string         `json:"location"        validate:"required,max=50"`
	AppointmentType string         `json:"appointmentType" validate:"required"`
	GuestCount      int            `json:"guestCount"      validate:"nullable,between=1,10"`
	Preferences     datatypes.JSON `json:"preferences"`
	SpecialRequests string         `json:"specialRequests"`
}

func appointmentType(key string) (models.AppointmentType, error) {
	t, ok := models.AppointmentTypes[key]
	if !ok {
		return t, invalid("Type de rendez-vous inconnu : " + key)
	}
	return t, nil
}

func parseDay(raw string) (time.Time, error) {
	d, err := validate.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, invalid("Date de rendez-vous invalide")
	}
	d = d.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Book reserves a consultation for the signed-in customer. Contact details
// come from the account.
func (s *AppointmentService) Book(ctx context.Context, userID uint, in BookAppointmentInput) (*models.Appointment, error) {
	typ, err := appointmentType(in.AppointmentType)
	if err != nil {
		return nil, err
	}
	day, err := parseDay(in.AppointmentDate)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Find(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, notFound("Utilisateur introuvable")
	}
	if err != nil {
		return nil, err
	}

	guests := in.GuestCount
	if guests < 1 {
		guests = 1
	}
	uid := u.ID
	a := &models.Appointment{
		UserID:          &uid,
		ClientName:      firstNonEmpty(u.Name, u.Email),
		ClientEmail:     u.Email,
		ClientPhone:     u.PhoneNumber,
		AppointmentDate: day,
		AppointmentTime: in.AppointmentTime,
		Location:        in.Location,
		AppointmentType: typ.Key,
		Duration:        typ.Duration,
		GuestCount:      guests,
		Preferences:     in.Preferences,
		SpecialRequests: in.SpecialRequests,
		Status:          models.AppointmentPending,
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}
	logger.WithCtx(ctx).Info("appointment: booked", "appointment_id", a.ID, "user_id", userID, "type", typ.Key)
	return a, nil
}

func (s *AppointmentService) ListForUser(ctx context.Context, userID uint) ([]models.Appointment, error) {
	return s.appointments.ListForUser(ctx, userID)
}

// AdminFilter is the raw back-office query; empty or "all" means no filter.
type AdminFilter struct {
	Status   string
	Date     string
	Type     string
	Location string
}

func (s *AppointmentService) AdminList(ctx context.Context, f AdminFilter) ([]models.Appointment, error) {
	rf := repositories.AppointmentFilter{
		Status:   strings.ToUpper(f.Status),
		Type:     f.Type,
		Location: f.Location,
	}
	if rf.Status == "ALL" {
		rf.Status = ""
	}
	if f.Date != "" && f.Date != "all" {
		day, err := parseDay(f.Date)
		if err != nil {
			return nil, err
		}
		rf.Date = &day
	}
	return s.appointments.List(ctx, rf)
}

type AdminAppointmentInput struct {
	UserID          *uint          `json:"userId"`
	ClientName      string         `json:"clientName"      validate:"required,max=255"`
	ClientEmail     string         `json:"clientEmail"     validate:"nullable,email"`
	ClientPhone     string         `json:"clientPhone"     validate:"max=40"`
	AppointmentDate string         `json:"appointmentDate" validate:"required,date"`
	AppointmentTime string         `json:"appointmentTime" validate:"required,clock"`
	Location        string         `json:"location"        validate:"max=50"`
	AppointmentType string         `json:"appointmentType"`
	Duration        int            `json:"duration"        validate:"nullable,between=15,480"`
	GuestCount      int            `json:"guestCount"      validate:"nullable,between=1,10"`
	Status          string         `json:"status"          validate:"nullable,in=PENDING,CONFIRMED,COMPLETED,CANCELLED"`
	Preferences     datatypes.JSON `json:"preferences"`
	SpecialRequests string         `json:"specialRequests"`
	AdminNotes      string         `json:"adminNotes"`
}

// AdminCreate records an appointment taken by the house, for example over
// the phone. Type and location default to a showroom discovery.
func (s *AppointmentService) AdminCreate(ctx context.Context, in AdminAppointmentInput) (*models.Appointment, error) {
	day, err := parseDay(in.AppointmentDate)
	if err != nil {
		return nil, err
	}
	key := firstNonEmpty(in.AppointmentType, "discovery")
	typ, err := appointmentType(key)
	if err != nil {
		return nil, err
	}
	a := &models.Appointment{
		UserID:          in.UserID,
		ClientName:      in.ClientName,
		ClientEmail:     in.ClientEmail,
		ClientPhone:     in.ClientPhone,
		AppointmentDate: day,
		AppointmentTime: in.AppointmentTime,
		Location:        firstNonEmpty(in.Location, models.ShowroomLocation),
		AppointmentType: typ.Key,
		Duration:        typ.Duration,
		GuestCount:      max(in.GuestCount, 1),
		Preferences:     in.Preferences,
		SpecialRequests: in.SpecialRequests,
		AdminNotes:      in.AdminNotes,
		Status:          firstNonEmpty(in.Status, models.AppointmentPending),
	}
	if in.Duration > 0 {
		a.Duration = in.Duration
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AppointmentService) Find(ctx context.Context, id uint) (*models.Appointment, error) {
	a, err := s.appointments.Find(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, notFound("Rendez-vous introuvable")
	}
	return a, err
}

// updatable maps the JSON keys an admin may change to their columns.
var updatable = map[string]string{
	"status":          "status",
	"appointmentDate": "appointment_date",
	"appointmentTime": "appointment_time",
	"location":        "location",
	"appointmentType": "appointment_type",
	"duration":        "duration",
	"adminNotes":      "admin_notes",
	"clientName":      "client_name",
	"clientEmail":     "client_email",
	"clientPhone":     "client_phone",
	"guestCount":      "guest_count",
	"preferences":     "preferences",
	"specialRequests": "special_requests",
}

// Update applies the whitelisted fields of body; other keys are ignored.
func (s *AppointmentService) Update(ctx context.Context, id uint, body map[string]any) (*models.Appointment, error) {
	if _, err := s.Find(ctx, id); err != nil {
		return nil, err
	}
	fields := make(map[string]any, len(body))
	for key, v := range body {
		col, ok := updatable[key]
		if !ok {
			continue
		}
		val, err := appointmentField(key, v)
		if err != nil {
			return nil, err
		}
		fields[col] = val
	}
	// A new type brings its own length unless one is given with it.
	if typ, ok := fields["appointment_type"].(string); ok {
		if _, given := body["duration"]; !given {
			fields["duration"] = models.AppointmentTypes[typ].Duration
		}
	}
	return s.appointments.Update(ctx, id, fields)
}

func appointmentField(key string, v any) (any, error) {
	switch key {
	case "status":
		st := strings.ToUpper(fmt.Sprint(v))
		if !slices.Contains(models.AppointmentStatuses, st) {
			return nil, invalid("Statut de rendez-vous invalide")
		}
		return st, nil
	case "appointmentDate":
		return parseDay(fmt.Sprint(v))
	case "appointmentTime":
		t := fmt.Sprint(v)
		if _, err := time.Parse("15:04", t); err != nil {
			return nil, invalid("Heure de rendez-vous invalide (HH:MM)")
		}
		return t, nil
	case "appointmentType":
		typ, err := appointmentType(fmt.Sprint(v))
		if err != nil {
			return nil, err
		}
		return typ.Key, nil
	case "duration", "guestCount":
		n, ok := v.(float64)
		if !ok || n < 1 {
			return nil, invalid(key + " doit être un entier positif")
		}
		return int(n), nil
	case "clientEmail":
		e := fmt.Sprint(v)
		if e != "" && !validate.IsEmail(e) {
			return nil, invalid("Email client invalide")
		}
		return e, nil
	case "preferences":
		b, err := json.Marshal(v)
		if err != nil {
			return nil, invalid("Préférences invalides")
		}
		return datatypes.JSON(b), nil
	default:
		if v == nil {
			return "", nil
		}
		return fmt.Sprint(v), nil
	}
}

func (s *AppointmentService) Delete(ctx context.Context, id uint) error {
	err := s.appointments.Delete(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound("Rendez-vous introuvable")
	}
	return err
}

// SendReminders notifies every customer with a pending or confirmed
// appointment tomorrow and returns how many were reminded.
func (s *AppointmentService) SendReminders(ctx context.Context) (int, error) {
	tomorrow := s.now().UTC().AddDate(0, 0, 1)
	list, err := s.appointments.Upcoming(ctx, tomorrow)
	if err != nil {
		return 0, err
	}
	sent := 0
	for i := range list {
		a := &list[i]
		// Walk-in bookings taken by the house have no account to notify.
		if a.UserID != nil {
			to := notification.Recipient{UserID: *a.UserID, Email: a.ClientEmail}
			if err := notification.Send(ctx, to, &notifications.AppointmentReminder{Appointment: a}); err != nil {
				logger.WithCtx(ctx).Warn("appointment: reminder notification failed", "appointment_id", a.ID, "error", err)
			}
		}
		if a.ClientEmail != "" {
			jobs.QueueMail(ctx, &jobs.SendMail{
				To:       a.ClientEmail,
				Subject:  "Rappel : votre rendez-vous Diamant Rouge",
				Template: "appointment_reminder.html",
				Data: map[string]any{
					"Name":     a.ClientName,
					"Type":     a.TypeLabel(),
					"Time":     a.AppointmentTime,
					"Location": models.LocationLabel(a.Location),
				},
			})
		}
		sent++
	}
	logger.WithCtx(ctx).Info("appointment: reminders sent", "count", sent, "day", tomorrow.Format("2006-01-02"))
	return sent, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
