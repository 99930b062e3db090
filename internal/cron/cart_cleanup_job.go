package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/luciagrant/mercadito-backend/pkg/logger"
)

const cartRetentionDays = 30

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CartCleanupJobParams configure the abandoned cart sweeper.
type CartCleanupJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository cartCleanupRepo
	Retention  int
}

type cartCleanupRepo interface {
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

// NewCartCleanupJob builds the job that drops saved cart lines nobody has
// touched within the retention window.
func NewCartCleanupJob(params CartCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = cartRetentionDays
	}
	return &cartCleanupJob{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type cartCleanupJob struct {
	logg      *logger.Logger
	db        txRunner
	repo      cartCleanupRepo
	retention int
	now       func() time.Time
}

func (j *cartCleanupJob) Name() string { return "cart-cleanup" }

func (j *cartCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.DeleteOlderThan(ctx, tx, cutoff)
		if err != nil {
			return err
		}
		deleted = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("cart cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "cart cleanup complete")
	return nil
}
