package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diamantrouge/maison/pkg/database"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)

	database.Use(db)
	t.Cleanup(func() { database.Use(nil) })
	assert.NoError(t, database.Ping(context.Background()))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := database.Open("oracle", "x")
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}

func TestPingWithoutConnection(t *testing.T) {
	database.Use(nil)
	assert.Error(t, database.Ping(context.Background()))
}
