package readings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajith213/fuelstation-backend/internal/backdating"
	"github.com/sajith213/fuelstation-backend/internal/pumps"
	dbpkg "github.com/sajith213/fuelstation-backend/pkg/db"
	"github.com/sajith213/fuelstation-backend/pkg/db/models"
	"github.com/sajith213/fuelstation-backend/pkg/enums"
	pkgerrors "github.com/sajith213/fuelstation-backend/pkg/errors"
	"github.com/sajith213/fuelstation-backend/pkg/logger"
	"github.com/sajith213/fuelstation-backend/pkg/outbox"
	"github.com/sajith213/fuelstation-backend/pkg/outbox/payloads"
	"github.com/sajith213/fuelstation-backend/pkg/pagination"
	"github.com/sajith213/fuelstation-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type nozzleLookup interface {
	FindNozzle(ctx context.Context, id uuid.UUID) (*models.Nozzle, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service records and edits meter readings while they are pending.
type Service interface {
	RecordReading(ctx context.Context, input RecordReadingInput) (*models.MeterReading, error)
	EditReading(ctx context.Context, input EditReadingInput) (*models.MeterReading, error)
	GetReading(ctx context.Context, id uuid.UUID) (*models.MeterReading, error)
	ListReadings(ctx context.Context, filters ReadingFilters, params pagination.Params) (pagination.Page[models.MeterReading], error)
}

// RecordReadingInput carries raw operator input; Opening and Closing are decimal strings.
type RecordReadingInput struct {
	NozzleID       uuid.UUID
	ReadingDate    time.Time
	Opening        string
	Closing        string
	RecordedBy     uuid.UUID
	Notes          string
	BackdateReason string
}

// EditReadingInput replaces the values of a pending reading.
type EditReadingInput struct {
	ReadingID      uuid.UUID
	Opening        string
	Closing        string
	RecordedBy     uuid.UUID
	Notes          string
	BackdateReason string
}

// ServiceParams groups the recorder's collaborators.
type ServiceParams struct {
	Repository Repository
	Nozzles    nozzleLookup
	Policy     *backdating.Policy
	Outbox     eventEmitter
	TxRunner   txRunner
	Logger     *logger.Logger
}

type service struct {
	repo    Repository
	nozzles nozzleLookup
	policy  *backdating.Policy
	outbox  eventEmitter
	tx      txRunner
	logg    *logger.Logger
}

// NewService wires the reading recorder.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("reading repository required")
	}
	if params.Nozzles == nil {
		return nil, fmt.Errorf("nozzle lookup required")
	}
	if params.Policy == nil {
		return nil, fmt.Errorf("backdating policy required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:    params.Repository,
		nozzles: params.Nozzles,
		policy:  params.Policy,
		outbox:  params.Outbox,
		tx:      params.TxRunner,
		logg:    params.Logger,
	}, nil
}

func (s *service) RecordReading(ctx context.Context, input RecordReadingInput) (*models.MeterReading, error) {
	if input.NozzleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nozzle_id is required")
	}
	if input.ReadingDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reading_date is required")
	}
	opening, closing, dispensed, err := parseRange(input.Opening, input.Closing)
	if err != nil {
		return nil, err
	}
	if err := s.requireActiveNozzle(ctx, input.NozzleID); err != nil {
		return nil, err
	}

	readingDate := backdating.CalendarDay(input.ReadingDate)
	if err := s.policy.Validate(readingDate, input.BackdateReason); err != nil {
		return nil, err
	}
	var reason *string
	if s.policy.RequiresJustification(readingDate) {
		reason = backdating.Normalize(input.BackdateReason)
	}

	reading := &models.MeterReading{
		NozzleID:        input.NozzleID,
		ReadingDate:     readingDate,
		OpeningValue:    opening,
		ClosingValue:    closing,
		DispensedVolume: dispensed,
		RecordedBy:      input.RecordedBy,
		Notes:           strings.TrimSpace(input.Notes),
		BackdateReason:  reason,
		Status:          enums.ReadingStatusPending,
		CreatedAt:       s.policy.Now().UTC(),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindByNozzleAndDate(ctx, reading.NozzleID, reading.ReadingDate)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing reading")
		}
		if existing != nil {
			return ErrDuplicateReading
		}
		if err := repo.Create(ctx, reading); err != nil {
			if dbpkg.IsDuplicateKey(err) {
				return pkgerrors.Extend(ErrDuplicateReading, err)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reading")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReadingRecorded,
			AggregateType: enums.AggregateMeterReading,
			AggregateID:   reading.ID,
			Actor:         &outbox.ActorRef{OperatorID: reading.RecordedBy},
			Data: payloads.ReadingRecordedEvent{
				ReadingID:       reading.ID,
				NozzleID:        reading.NozzleID,
				ReadingDate:     reading.ReadingDate.Format(time.DateOnly),
				OpeningValue:    reading.OpeningValue.String(),
				ClosingValue:    reading.ClosingValue.String(),
				DispensedVolume: reading.DispensedVolume.String(),
				RecordedBy:      reading.RecordedBy,
				Backdated:       reading.BackdateReason != nil,
				Status:          reading.Status,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithReadingID(ctx, reading.ID)
		logCtx = s.logg.WithFields(logCtx, map[string]any{
			"nozzle_id":        reading.NozzleID.String(),
			"reading_date":     reading.ReadingDate.Format(time.DateOnly),
			"dispensed_volume": reading.DispensedVolume.String(),
			"backdated":        reading.BackdateReason != nil,
		})
		s.logg.Info(logCtx, "meter reading recorded")
	}
	return reading, nil
}

func (s *service) EditReading(ctx context.Context, input EditReadingInput) (*models.MeterReading, error) {
	opening, closing, dispensed, err := parseRange(input.Opening, input.Closing)
	if err != nil {
		return nil, err
	}

	var updated *models.MeterReading
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		reading, err := repo.FindByIDForUpdate(ctx, input.ReadingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReadingNotFound
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reading")
		}
		if reading.Status != enums.ReadingStatusPending {
			return ErrInvalidStateTransition
		}

		reason := reading.BackdateReason
		if s.policy.WasBackdated(reading.ReadingDate, reading.CreatedAt) {
			reason = s.policy.Preserve(reading.BackdateReason, input.BackdateReason)
			if reason == nil {
				return ErrBackdatingReasonRequired
			}
		}

		updates := map[string]any{
			"opening_value":    opening,
			"closing_value":    closing,
			"dispensed_volume": dispensed,
			"notes":            strings.TrimSpace(input.Notes),
			"backdate_reason":  reason,
			"updated_at":       s.policy.Now().UTC(),
		}
		if input.RecordedBy != uuid.Nil {
			updates["recorded_by"] = input.RecordedBy
		}
		rows, err := repo.UpdateWhilePending(ctx, reading.ID, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reading")
		}
		if rows == 0 {
			return ErrInvalidStateTransition
		}
		updated, err = repo.FindByID(ctx, reading.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload reading")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithReadingID(ctx, updated.ID)
		logCtx = s.logg.WithField(logCtx, "dispensed_volume", updated.DispensedVolume.String())
		s.logg.Info(logCtx, "meter reading edited")
	}
	return updated, nil
}

func (s *service) GetReading(ctx context.Context, id uuid.UUID) (*models.MeterReading, error) {
	reading, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReadingNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reading")
	}
	return reading, nil
}

func (s *service) ListReadings(ctx context.Context, filters ReadingFilters, params pagination.Params) (pagination.Page[models.MeterReading], error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return pagination.Page[models.MeterReading]{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	if filters.From != nil {
		from := backdating.CalendarDay(*filters.From)
		filters.From = &from
	}
	if filters.To != nil {
		to := backdating.CalendarDay(*filters.To)
		filters.To = &to
	}
	if filters.From != nil && filters.To != nil && filters.To.Before(*filters.From) {
		return pagination.Page[models.MeterReading]{}, pkgerrors.New(pkgerrors.CodeValidation, "to must not precede from")
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return pagination.Page[models.MeterReading]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return pagination.Page[models.MeterReading]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list readings")
	}
	return pagination.BuildPage(rows, params.Limit, func(r models.MeterReading) pagination.Cursor {
		return pagination.Cursor{At: r.ReadingDate, ID: r.ID}
	}), nil
}

func (s *service) requireActiveNozzle(ctx context.Context, nozzleID uuid.UUID) error {
	nozzle, err := s.nozzles.FindNozzle(ctx, nozzleID)
	if err != nil {
		if errors.Is(err, pumps.ErrNozzleNotFound) {
			return ErrUnknownOrInactiveNozzle
		}
		return err
	}
	if !nozzle.IsActive() {
		return ErrUnknownOrInactiveNozzle
	}
	return nil
}

// parseRange validates an opening/closing pair and derives the dispensed volume.
func parseRange(rawOpening, rawClosing string) (types.Quantity, types.Quantity, types.Quantity, error) {
	opening, err := types.ParseQuantity(rawOpening)
	if err != nil {
		return types.Quantity{}, types.Quantity{}, types.Quantity{}, pkgerrors.Extend(ErrInvalidReadingRange, fmt.Errorf("opening: %w", err)).
			WithDetails(map[string]string{"field": "opening", "reason": err.Error()})
	}
	closing, err := types.ParseQuantity(rawClosing)
	if err != nil {
		return types.Quantity{}, types.Quantity{}, types.Quantity{}, pkgerrors.Extend(ErrInvalidReadingRange, fmt.Errorf("closing: %w", err)).
			WithDetails(map[string]string{"field": "closing", "reason": err.Error()})
	}
	if closing.LessThan(opening) {
		return types.Quantity{}, types.Quantity{}, types.Quantity{}, pkgerrors.Extend(ErrInvalidReadingRange, nil).
			WithDetails(map[string]string{"opening": opening.String(), "closing": closing.String()})
	}
	return opening, closing, closing.Sub(opening), nil
}
