package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diamantrouge/maison/app/models"
	"github.com/diamantrouge/maison/app/repositories"
	"github.com/diamantrouge/maison/internal/testdb"
)

func TestAppointmentFilters(t *testing.T) {
	db := testdb.Seeded(t)
	ctx := context.Background()
	u := customer(t, repositories.NewUserRepository(db))
	repo := repositories.NewAppointmentRepository(db)

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	for _, a := range []models.Appointment{
		{UserID: &u.ID, ClientName: u.Name, AppointmentDate: day, AppointmentTime: "11:00", Location: "casablanca", AppointmentType: "bridal", Status: models.AppointmentConfirmed},
		{UserID: &u.ID, ClientName: u.Name, AppointmentDate: day, AppointmentTime: "15:30", Location: "virtual", AppointmentType: "discovery", Status: models.AppointmentPending},
		{ClientName: "Walk-in", AppointmentDate: day.AddDate(0, 0, 1), AppointmentTime: "10:00", Location: "casablanca", AppointmentType: "bespoke", Status: models.AppointmentCancelled},
	} {
		require.NoError(t, repo.Create(ctx, &a))
	}

	all, err := repo.List(ctx, repositories.AppointmentFilter{Status: "all", Type: "", Location: "all"})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "Walk-in", all[0].ClientName, "newest first")

	onDay, err := repo.List(ctx, repositories.AppointmentFilter{Date: &day})
	require.NoError(t, err)
	assert.Len(t, onDay, 2)

	bridal, err := repo.List(ctx, repositories.AppointmentFilter{Type: "bridal", Location: "casablanca"})
	require.NoError(t, err)
	require.Len(t, bridal, 1)
	assert.Equal(t, "Collection Nuptiale", bridal[0].TypeLabel())

	upcoming, err := repo.Upcoming(ctx, day.Add(9*time.Hour))
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "11:00", upcoming[0].AppointmentTime)

	mine, err := repo.ListForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	updated, err := repo.Update(ctx, bridal[0].ID, map[string]any{"status": models.AppointmentCompleted, "admin_notes": "Bague choisie"})
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCompleted, updated.Status)
	assert.Equal(t, "Bague choisie", updated.AdminNotes)

	require.NoError(t, repo.Delete(ctx, bridal[0].ID))
	assert.ErrorIs(t, repo.Delete(ctx, bridal[0].ID), repositories.ErrNotFound)
}

func TestNewsletterAndNotifications(t *testing.T) {
	db := testdb.Seeded(t)
	ctx := context.Background()

	news := repositories.NewNewsletterRepository(db)
	_, created, err := news.Subscribe(ctx, " Sophie@Example.com ")
	require.NoError(t, err)
	assert.True(t, created)
	sub, created, err := news.Subscribe(ctx, "sophie@example.com")
	require.NoError(t, err)
	assert.False(t, created)

	emails, err := news.Emails(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sophie@example.com"}, emails)
	require.NoError(t, news.Delete(ctx, sub.ID))
	assert.ErrorIs(t, news.Delete(ctx, sub.ID), repositories.ErrNotFound)

	u := customer(t, repositories.NewUserRepository(db))
	notes := repositories.NewNotificationRepository(db)
	for _, msg := range []string{"Commande expédiée", "Rendez-vous demain"} {
		require.NoError(t, notes.Create(ctx, &models.Notification{UserID: u.ID, Type: models.NotificationOrderUpdate, Message: msg}))
	}
	n, err := notes.MarkAllRead(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	n, err = notes.MarkAllRead(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = notes.DeleteAll(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
