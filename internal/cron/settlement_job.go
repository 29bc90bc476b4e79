package cron

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mandibazaar/mandi-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type settlementSweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// SettlementJobParams configure the window settlement job.
type SettlementJobParams struct {
	Logger *logger.Logger
	Engine settlementSweeper
}

// NewSettlementJob wraps the settlement engine as a cron job.
func NewSettlementJob(params SettlementJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Engine == nil {
		return nil, fmt.Errorf("settlement engine required")
	}
	return &settlementJob{
		logg:   params.Logger,
		engine: params.Engine,
	}, nil
}

type settlementJob struct {
	logg   *logger.Logger
	engine settlementSweeper
}

func (j *settlementJob) Name() string { return "window-settlement" }

func (j *settlementJob) Run(ctx context.Context) error {
	processed, err := j.engine.SweepExpired(ctx)
	if err != nil {
		return fmt.Errorf("window settlement: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "windows_settled", processed)
	j.logg.Info(logCtx, "window settlement sweep complete")
	return nil
}
