// Package repositories holds the gorm queries behind the services. Every
// method takes a context and maps driver errors onto the sentinels below.
package repositories

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("repositories: record not found")
	ErrDuplicate = errors.New("repositories: duplicate record")
	ErrInUse     = errors.New("repositories: record still referenced")
)

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return ErrDuplicate
	default:
		return err
	}
}

// Drivers without error translation still report the violation in text.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "Duplicate entry")
}

type base struct {
	db *gorm.DB
}

func (b base) conn(ctx context.Context) *gorm.DB {
	return b.db.WithContext(ctx)
}

// Transaction runs fn inside a transaction on the repository's handle.
func (b base) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return b.conn(ctx).Transaction(fn)
}
