package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajith213/fuelstation-backend/pkg/db/models"
	"github.com/sajith213/fuelstation-backend/pkg/enums"
	"github.com/sajith213/fuelstation-backend/pkg/logger"
)

var (
	ErrTransactionRequired = errors.New("transaction required")
	ErrInvalidEvent        = errors.New("invalid outbox event")
)

// DomainEvent is the in-process description of an event queued through the outbox.
type DomainEvent struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   uuid.UUID
	Actor         *ActorRef
	Data          interface{}
	Version       int
	OccurredAt    time.Time
}

func (e DomainEvent) validate() error {
	switch {
	case !e.EventType.IsValid():
		return fmt.Errorf("%w: unknown event type %q", ErrInvalidEvent, e.EventType)
	case !e.AggregateType.IsValid():
		return fmt.Errorf("%w: unknown aggregate type %q", ErrInvalidEvent, e.AggregateType)
	case e.AggregateID == uuid.Nil:
		return fmt.Errorf("%w: aggregate id is required", ErrInvalidEvent)
	case e.Version < 0 || e.Version > EnvelopeVersion:
		return fmt.Errorf("%w: envelope version %d", ErrInvalidEvent, e.Version)
	}
	return nil
}

// row wraps the event data in a fresh envelope ready for insertion.
func (e DomainEvent) row(now time.Time) (models.OutboxEvent, PayloadEnvelope, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return models.OutboxEvent{}, PayloadEnvelope{}, fmt.Errorf("encode %s data: %w", e.EventType, err)
	}
	occurred := e.OccurredAt
	if occurred.IsZero() {
		occurred = now
	}
	version := e.Version
	if version == 0 {
		version = EnvelopeVersion
	}
	envelope := PayloadEnvelope{
		Version:     version,
		EventID:     uuid.NewString(),
		EventType:   e.EventType,
		AggregateID: e.AggregateID,
		OccurredAt:  occurred.UTC(),
		Actor:       e.Actor,
		Data:        data,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return models.OutboxEvent{}, PayloadEnvelope{}, fmt.Errorf("encode %s envelope: %w", e.EventType, err)
	}
	return models.OutboxEvent{
		EventType:     e.EventType,
		AggregateType: e.AggregateType,
		AggregateID:   e.AggregateID,
		Payload:       json.RawMessage(body),
	}, envelope, nil
}

// Service writes outbox rows inside the caller's transaction, so an event
// exists only if the state change that produced it committed.
type Service struct {
	repo *Repository
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg, now: time.Now}
}

// Emit queues one event on tx.
func (s *Service) Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error {
	return s.queue(ctx, tx, event, func(row models.OutboxEvent) (bool, error) {
		return true, s.repo.Insert(tx, row)
	})
}

// EmitIfNotExists queues the event unless one with the same type already
// exists for the aggregate. A concurrent writer that wins the unique index
// race counts as already queued.
func (s *Service) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event DomainEvent) error {
	return s.queue(ctx, tx, event, func(row models.OutboxEvent) (bool, error) {
		return s.repo.InsertIfAbsent(tx, row)
	})
}

func (s *Service) queue(ctx context.Context, tx *gorm.DB, event DomainEvent, insert func(models.OutboxEvent) (bool, error)) error {
	if tx == nil {
		return ErrTransactionRequired
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := event.validate(); err != nil {
		return err
	}
	row, envelope, err := event.row(s.now())
	if err != nil {
		return err
	}
	inserted, err := insert(row)
	if err != nil || !inserted {
		return err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"event_id":       envelope.EventID,
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID.String(),
	}), "outbox event queued")
	return nil
}
