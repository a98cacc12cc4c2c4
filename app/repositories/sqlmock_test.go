package repositories_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/diamantrouge/maison/app/repositories"
	"github.com/diamantrouge/maison/pkg/database"
)

// newMockDB opens gorm on the postgres dialector over sqlmock so the SQL
// shape emitted for postgres can be pinned.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := database.OpenDialector(postgres.New(postgres.Config{Conn: sqlDB}))
	require.NoError(t, err)
	return db, mock
}

func TestUserFindByEmailPostgres(t *testing.T) {
	db, mock := newMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "email", "name", "role", "member_status"}).
		AddRow(3, "admin@diamant-rouge.com", "Diamant Rouge Admin", "admin", "vip")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE LOWER(email) = $1 ORDER BY "users"."id" LIMIT`)).
		WillReturnRows(rows)

	u, err := repositories.NewUserRepository(db).FindByEmail(context.Background(), " Admin@Diamant-Rouge.com")
	require.NoError(t, err)
	assert.Equal(t, uint(3), u.ID)
	assert.True(t, u.IsAdmin())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindNotFoundPostgres(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repositories.NewUserRepository(db).Find(context.Background(), 42)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationsMarkAllReadPostgres(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "notifications" SET "is_read"=$1 WHERE user_id = $2 AND is_read = $3`)).
		WithArgs(true, 7, false).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repositories.NewNotificationRepository(db).MarkAllRead(context.Background(), 7)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsletterEmailsPostgres(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "email" FROM "newsletter_subscribers" ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow("a@example.com").AddRow("b@example.com"))

	emails, err := repositories.NewNewsletterRepository(db).Emails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, emails)
	assert.NoError(t, mock.ExpectationsWereMet())
}
