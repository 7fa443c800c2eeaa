package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sajith213/fuelstation-backend/pkg/db/models"
	"github.com/sajith213/fuelstation-backend/pkg/enums"
	"github.com/sajith213/fuelstation-backend/pkg/logger"
	"github.com/sajith213/fuelstation-backend/pkg/outbox"
	"github.com/sajith213/fuelstation-backend/pkg/outbox/payloads"
)

const defaultPendingOverdue = 3 * 24 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type pendingReadingsRepo interface {
	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.MeterReading, error)
}

type overdueEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// PendingReadingsJobParams configure the pending-readings aging job.
type PendingReadingsJobParams struct {
	Logger   *logger.Logger
	DB       txRunner
	Readings pendingReadingsRepo
	Outbox   overdueEmitter
	Overdue  time.Duration
}

// NewPendingReadingsJob builds the job that flags readings left pending past
// the overdue window. It only queues events and never touches reading state.
func NewPendingReadingsJob(params PendingReadingsJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Readings == nil {
		return nil, fmt.Errorf("readings repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	overdue := params.Overdue
	if overdue <= 0 {
		overdue = defaultPendingOverdue
	}
	return &pendingReadingsJob{
		logg:     params.Logger,
		db:       params.DB,
		readings: params.Readings,
		outbox:   params.Outbox,
		overdue:  overdue,
		now:      time.Now,
	}, nil
}

type pendingReadingsJob struct {
	logg     *logger.Logger
	db       txRunner
	readings pendingReadingsRepo
	outbox   overdueEmitter
	overdue  time.Duration
	now      func() time.Time
}

func (j *pendingReadingsJob) Name() string { return "pending-readings-aging" }

func (j *pendingReadingsJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	cutoff := now.Add(-j.overdue)

	rows, err := j.readings.ListPendingBefore(ctx, cutoff, 0)
	if err != nil {
		return fmt.Errorf("list pending readings: %w", err)
	}

	err = j.db.WithTx(ctx, func(tx *gorm.DB) error {
		for i := range rows {
			reading := rows[i]
			event := outbox.DomainEvent{
				EventType:     enums.EventReadingPendingOverdue,
				AggregateType: enums.AggregateMeterReading,
				AggregateID:   reading.ID,
				OccurredAt:    now,
				Data: payloads.ReadingPendingOverdueEvent{
					ReadingID:   reading.ID,
					NozzleID:    reading.NozzleID,
					ReadingDate: reading.ReadingDate.Format(time.DateOnly),
					RecordedAt:  reading.CreatedAt.UTC(),
					PendingDays: int(now.Sub(reading.CreatedAt) / (24 * time.Hour)),
				},
			}
			if err := j.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
				return fmt.Errorf("queue overdue event for reading %s: %w", reading.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":   cutoff,
		"overdue":  j.overdue.String(),
		"examined": len(rows),
	})
	j.logg.Info(logCtx, "pending readings aging complete")
	return nil
}
