package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/sajith213/fuelstation-backend/internal/backdating"
	"github.com/sajith213/fuelstation-backend/internal/inventory"
	"github.com/sajith213/fuelstation-backend/internal/pumps"
	"github.com/sajith213/fuelstation-backend/internal/readings"
	"github.com/sajith213/fuelstation-backend/pkg/db/models"
	"github.com/sajith213/fuelstation-backend/pkg/enums"
	pkgerrors "github.com/sajith213/fuelstation-backend/pkg/errors"
	"github.com/sajith213/fuelstation-backend/pkg/logger"
	"github.com/sajith213/fuelstation-backend/pkg/metrics"
	"github.com/sajith213/fuelstation-backend/pkg/outbox"
	"github.com/sajith213/fuelstation-backend/pkg/outbox/payloads"
)

const (
	operationVerify  = "verify"
	operationDispute = "dispute"

	defaultBulkMaxIDs = 200
)

var (
	ErrDisputeReasonRequired = pkgerrors.New(pkgerrors.CodeValidation, "a reason is required to dispute a reading")
	ErrBulkVerifyEmpty       = pkgerrors.New(pkgerrors.CodeValidation, "reading_ids must not be empty")
	ErrBulkVerifyTooLarge    = pkgerrors.New(pkgerrors.CodeValidation, "too many reading_ids in one request")
	ErrVerifierRequired      = pkgerrors.New(pkgerrors.CodeValidation, "the reviewing operator is required")
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service moves pending readings to verified or disputed. Verification applies
// the dispensed volume to the backing tank exactly once.
type Service interface {
	Verify(ctx context.Context, input VerifyInput) (*VerifyResult, error)
	Dispute(ctx context.Context, input DisputeInput) (*models.MeterReading, error)
	BulkVerify(ctx context.Context, input BulkVerifyInput) (*BulkVerifyResult, error)
}

type VerifyInput struct {
	ReadingID  uuid.UUID
	VerifiedBy uuid.UUID
}

// VerifyResult reports the verified reading and its ledger entry. Applied is false
// when the entry already existed from an earlier attempt.
type VerifyResult struct {
	Reading     *models.MeterReading
	LedgerEntry *models.InventoryLedgerEntry
	TankID      uuid.UUID
	Applied     bool
}

type DisputeInput struct {
	ReadingID  uuid.UUID
	VerifiedBy uuid.UUID
	Reason     string
}

type BulkVerifyInput struct {
	ReadingIDs []uuid.UUID
	VerifiedBy uuid.UUID
}

// BulkFailure is the outcome of one reading that could not be verified.
type BulkFailure struct {
	ReadingID uuid.UUID      `json:"reading_id"`
	Code      pkgerrors.Code `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	err       error
}

// BulkVerifyResult lists per-reading outcomes in request order.
type BulkVerifyResult struct {
	Succeeded []uuid.UUID   `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// Err combines the individual failures, or returns nil when every reading was verified.
func (r *BulkVerifyResult) Err() error {
	if r == nil {
		return nil
	}
	var combined error
	for _, failure := range r.Failed {
		combined = multierr.Append(combined, fmt.Errorf("reading %s: %w", failure.ReadingID, failure.err))
	}
	return combined
}

// ServiceParams groups the verification engine's collaborators.
type ServiceParams struct {
	Readings   readings.Repository
	Pumps      pumps.Repository
	Inventory  inventory.Service
	Policy     *backdating.Policy
	Outbox     eventEmitter
	TxRunner   txRunner
	Logger     *logger.Logger
	Metrics    *metrics.ReconciliationMetrics
	BulkMaxIDs int
}

type service struct {
	readings   readings.Repository
	pumps      pumps.Repository
	inventory  inventory.Service
	policy     *backdating.Policy
	outbox     eventEmitter
	tx         txRunner
	logg       *logger.Logger
	metrics    *metrics.ReconciliationMetrics
	bulkMaxIDs int
}

// NewService wires the verification engine.
func NewService(params ServiceParams) (Service, error) {
	if params.Readings == nil {
		return nil, fmt.Errorf("reading repository required")
	}
	if params.Pumps == nil {
		return nil, fmt.Errorf("pump repository required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory service required")
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
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	bulkMax := params.BulkMaxIDs
	if bulkMax <= 0 {
		bulkMax = defaultBulkMaxIDs
	}
	return &service{
		readings:   params.Readings,
		pumps:      params.Pumps,
		inventory:  params.Inventory,
		policy:     params.Policy,
		outbox:     params.Outbox,
		tx:         params.TxRunner,
		logg:       params.Logger,
		metrics:    params.Metrics,
		bulkMaxIDs: bulkMax,
	}, nil
}

func (s *service) Verify(ctx context.Context, input VerifyInput) (*VerifyResult, error) {
	started := time.Now()
	if input.VerifiedBy == uuid.Nil {
		s.observe(operationVerify, metrics.OutcomeRejected, started)
		return nil, ErrVerifierRequired
	}
	logCtx := s.logg.WithReadingID(ctx, input.ReadingID)

	var result *VerifyResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		result, err = s.verifyTx(ctx, tx, input)
		return err
	})
	if err != nil {
		if isRejection(err) {
			s.observe(operationVerify, metrics.OutcomeRejected, started)
			logCtx = s.logg.WithField(logCtx, "reason", err.Error())
			s.logg.Warn(logCtx, "reading verification rejected")
			return nil, err
		}
		s.observe(operationVerify, metrics.OutcomeFailed, started)
		s.logg.Error(logCtx, "reading verification failed; rolled back", err)
		return nil, pkgerrors.Extend(readings.ErrVerificationFailed, err)
	}

	// an existing ledger entry means the volume was applied earlier
	outcome := metrics.OutcomeSuccess
	if !result.Applied {
		outcome = metrics.OutcomeSkipped
	}
	s.observe(operationVerify, outcome, started)
	if result.Applied && result.LedgerEntry != nil {
		s.metrics.AddDispensed(result.TankID.String(), result.LedgerEntry.ChangeAmount.Neg().InexactFloat64())
	}
	logCtx = s.logg.WithTankID(logCtx, result.TankID)
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"dispensed_volume": result.Reading.DispensedVolume.String(),
		"ledger_applied":   result.Applied,
	})
	s.logg.Info(logCtx, "reading verified")
	return result, nil
}

func (s *service) verifyTx(ctx context.Context, tx *gorm.DB, input VerifyInput) (*VerifyResult, error) {
	readingRepo := s.readings.WithTx(tx)
	reading, err := readingRepo.FindByIDForUpdate(ctx, input.ReadingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, readings.ErrReadingNotFound
		}
		return nil, fmt.Errorf("load reading: %w", err)
	}
	if reading.Status != enums.ReadingStatusPending {
		return nil, readings.ErrInvalidStateTransition
	}

	tankID, err := s.pumps.WithTx(tx).ResolveTankID(ctx, reading.NozzleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("resolve tank for nozzle %s: %w", reading.NozzleID, pumps.ErrNozzleNotFound)
		}
		return nil, fmt.Errorf("resolve tank: %w", err)
	}

	if s.policy.WasBackdated(reading.ReadingDate, reading.CreatedAt) && strings.TrimSpace(reading.Justification()) == "" {
		return nil, readings.ErrBackdatingReasonRequired
	}

	now := s.policy.Now().UTC()
	entry, applied, err := s.inventory.ApplyDispensing(ctx, tx, inventory.ApplyInput{
		TankID:      tankID,
		ReferenceID: reading.ID,
		Dispensed:   reading.DispensedVolume,
		AppliedBy:   input.VerifiedBy,
		AppliedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("apply inventory: %w", err)
	}

	rows, err := readingRepo.UpdateWhilePending(ctx, reading.ID, map[string]any{
		"status":      enums.ReadingStatusVerified,
		"verified_by": input.VerifiedBy,
		"verified_at": now,
		"updated_at":  now,
	})
	if err != nil {
		return nil, fmt.Errorf("update reading status: %w", err)
	}
	if rows == 0 {
		return nil, readings.ErrInvalidStateTransition
	}
	verifiedBy := input.VerifiedBy
	reading.Status = enums.ReadingStatusVerified
	reading.VerifiedBy = &verifiedBy
	reading.VerifiedAt = &now

	actor := &outbox.ActorRef{OperatorID: input.VerifiedBy}
	var entryID *uuid.UUID
	if entry != nil {
		id := entry.ID
		entryID = &id
	}
	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventReadingVerified,
		AggregateType: enums.AggregateMeterReading,
		AggregateID:   reading.ID,
		Actor:         actor,
		OccurredAt:    now,
		Data: payloads.ReadingVerifiedEvent{
			ReadingID:       reading.ID,
			NozzleID:        reading.NozzleID,
			TankID:          tankID,
			ReadingDate:     reading.ReadingDate.Format(time.DateOnly),
			DispensedVolume: reading.DispensedVolume.String(),
			VerifiedBy:      input.VerifiedBy,
			VerifiedAt:      now,
			LedgerEntryID:   entryID,
		},
	}); err != nil {
		return nil, fmt.Errorf("emit reading verified: %w", err)
	}
	if applied {
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInventoryApplied,
			AggregateType: enums.AggregateMeterReading,
			AggregateID:   reading.ID,
			Actor:         actor,
			OccurredAt:    now,
			Data: payloads.InventoryAppliedEvent{
				LedgerEntryID:  entry.ID,
				TankID:         entry.TankID,
				ReadingID:      reading.ID,
				OperationType:  entry.OperationType,
				PreviousVolume: entry.PreviousVolume.String(),
				ChangeAmount:   entry.ChangeAmount.String(),
				NewVolume:      entry.NewVolume.String(),
				AppliedAt:      entry.AppliedAt,
			},
		}); err != nil {
			return nil, fmt.Errorf("emit inventory applied: %w", err)
		}
	}

	return &VerifyResult{Reading: reading, LedgerEntry: entry, TankID: tankID, Applied: applied}, nil
}

func (s *service) Dispute(ctx context.Context, input DisputeInput) (*models.MeterReading, error) {
	started := time.Now()
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		s.observe(operationDispute, metrics.OutcomeRejected, started)
		return nil, ErrDisputeReasonRequired
	}
	if input.VerifiedBy == uuid.Nil {
		s.observe(operationDispute, metrics.OutcomeRejected, started)
		return nil, ErrVerifierRequired
	}
	logCtx := s.logg.WithReadingID(ctx, input.ReadingID)

	var disputed *models.MeterReading
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.readings.WithTx(tx)
		reading, err := repo.FindByIDForUpdate(ctx, input.ReadingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return readings.ErrReadingNotFound
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reading")
		}
		if reading.Status != enums.ReadingStatusPending {
			return readings.ErrInvalidStateTransition
		}

		now := s.policy.Now().UTC()
		notes := appendDisputeNote(reading.Notes, reason)
		rows, err := repo.UpdateWhilePending(ctx, reading.ID, map[string]any{
			"status":      enums.ReadingStatusDisputed,
			"verified_by": input.VerifiedBy,
			"verified_at": now,
			"notes":       notes,
			"updated_at":  now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reading status")
		}
		if rows == 0 {
			return readings.ErrInvalidStateTransition
		}
		verifiedBy := input.VerifiedBy
		reading.Status = enums.ReadingStatusDisputed
		reading.VerifiedBy = &verifiedBy
		reading.VerifiedAt = &now
		reading.Notes = notes
		disputed = reading

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReadingDisputed,
			AggregateType: enums.AggregateMeterReading,
			AggregateID:   reading.ID,
			Actor:         &outbox.ActorRef{OperatorID: input.VerifiedBy},
			OccurredAt:    now,
			Data: payloads.ReadingDisputedEvent{
				ReadingID:   reading.ID,
				NozzleID:    reading.NozzleID,
				ReadingDate: reading.ReadingDate.Format(time.DateOnly),
				DisputedBy:  input.VerifiedBy,
				DisputedAt:  now,
				Reason:      reason,
			},
		})
	})
	if err != nil {
		outcome := metrics.OutcomeFailed
		if isRejection(err) {
			outcome = metrics.OutcomeRejected
		}
		s.observe(operationDispute, outcome, started)
		return nil, err
	}

	s.observe(operationDispute, metrics.OutcomeSuccess, started)
	s.logg.Info(s.logg.WithField(logCtx, "reason", reason), "reading disputed")
	return disputed, nil
}

func (s *service) BulkVerify(ctx context.Context, input BulkVerifyInput) (*BulkVerifyResult, error) {
	if input.VerifiedBy == uuid.Nil {
		return nil, ErrVerifierRequired
	}
	ids := dedupe(input.ReadingIDs)
	if len(ids) == 0 {
		return nil, ErrBulkVerifyEmpty
	}
	if len(ids) > s.bulkMaxIDs {
		return nil, pkgerrors.Extend(ErrBulkVerifyTooLarge, nil).
			WithDetails(map[string]int{"max": s.bulkMaxIDs, "received": len(ids)})
	}

	result := &BulkVerifyResult{
		Succeeded: make([]uuid.UUID, 0, len(ids)),
		Failed:    make([]BulkFailure, 0),
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, failureFor(id, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "request canceled")))
			continue
		}
		if _, err := s.Verify(ctx, VerifyInput{ReadingID: id, VerifiedBy: input.VerifiedBy}); err != nil {
			result.Failed = append(result.Failed, failureFor(id, err))
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"requested": len(ids),
		"succeeded": len(result.Succeeded),
		"failed":    len(result.Failed),
	})
	s.logg.Info(logCtx, "bulk verification finished")
	return result, nil
}

func (s *service) observe(operation, outcome string, started time.Time) {
	s.metrics.ObserveTransition(operation, outcome, time.Since(started))
}

func failureFor(id uuid.UUID, err error) BulkFailure {
	code := pkgerrors.CodeOf(err)
	message := err.Error()
	if typed := pkgerrors.As(err); typed != nil {
		message = typed.Message()
	}
	return BulkFailure{
		ReadingID: id,
		Code:      code,
		Message:   message,
		Retryable: pkgerrors.IsRetryable(err),
		err:       err,
	}
}

// isRejection reports caller-fixable or stale-request errors that must surface unchanged.
func isRejection(err error) bool {
	for _, kind := range []error{
		readings.ErrReadingNotFound,
		readings.ErrInvalidStateTransition,
		readings.ErrBackdatingReasonRequired,
		ErrDisputeReasonRequired,
		ErrVerifierRequired,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

func appendDisputeNote(notes, reason string) string {
	entry := "Disputed: " + reason
	if strings.TrimSpace(notes) == "" {
		return entry
	}
	return notes + "\n" + entry
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
