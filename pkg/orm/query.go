// Package orm holds small gorm helpers shared by the repositories.
package orm

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/diamantrouge/maison/pkg/cache"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Pagination is the metadata returned alongside a page of results.
type Pagination struct {
	Page     int   `json:"page"`
	PerPage  int   `json:"perPage"`
	Total    int64 `json:"total"`
	LastPage int   `json:"lastPage"`
}

// Page normalises a requested page and page size.
func Page(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// NewPagination builds the metadata for a page of a result set of size total.
func NewPagination(page, perPage int, total int64) Pagination {
	page, perPage = Page(page, perPage)
	last := int((total + int64(perPage) - 1) / int64(perPage))
	if last < 1 {
		last = 1
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, LastPage: last}
}

// Paginate is a gorm scope applying OFFSET/LIMIT for the given page.
//
//	db.Scopes(orm.Paginate(2, 20)).Find(&products)
func Paginate(page, perPage int) func(*gorm.DB) *gorm.DB {
	page, perPage = Page(page, perPage)
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * perPage).Limit(perPage)
	}
}

// Remember returns the cached value under key or runs load and caches its
// result for ttl. When the cache is unavailable load always runs.
func Remember(ctx context.Context, key string, ttl time.Duration, dest interface{}, load func() error) error {
	if cache.Get(ctx, key, dest) {
		return nil
	}
	if err := load(); err != nil {
		return err
	}
	_ = cache.Set(ctx, key, dest, ttl)
	return nil
}

// IsNotFound reports whether err is gorm's record-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
