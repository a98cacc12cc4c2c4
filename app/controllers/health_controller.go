package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/diamantrouge/maison/pkg/ctx"
)

type HealthController struct {
	db *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db}
}

func (hc *HealthController) ping(c context.Context) error {
	if hc.db == nil {
		return errors.New("database: not connected")
	}
	sqlDB, err := hc.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(c)
}

func (hc *HealthController) Check(c *ctx.Context) {
	pctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()
	if err := hc.ping(pctx); err != nil {
		c.Message(http.StatusServiceUnavailable, "database unreachable", map[string]string{"database": "down"})
		return
	}
	c.Success(map[string]string{"database": "up"})
}
