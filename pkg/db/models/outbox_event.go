package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajith213/fuelstation-backend/pkg/enums"
)

// OutboxEvent is a pending or delivered reconciliation event. Rows are written
// in the same transaction as the state change they describe and at most one
// exists per (event_type, aggregate_type, aggregate_id).
type OutboxEvent struct {
	ID            uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	EventType     enums.OutboxEventType     `gorm:"column:event_type;type:varchar(64);not null;uniqueIndex:ux_outbox_events_event_aggregate,priority:1"`
	AggregateType enums.OutboxAggregateType `gorm:"column:aggregate_type;type:varchar(32);not null;uniqueIndex:ux_outbox_events_event_aggregate,priority:2"`
	AggregateID   uuid.UUID                 `gorm:"column:aggregate_id;type:uuid;not null;uniqueIndex:ux_outbox_events_event_aggregate,priority:3"`
	Payload       json.RawMessage           `gorm:"column:payload;type:jsonb;not null"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
	PublishedAt   *time.Time                `gorm:"column:published_at"`
	AttemptCount  int                       `gorm:"column:attempt_count;not null;default:0"`
	LastError     *string                   `gorm:"column:last_error"`
}

func (OutboxEvent) TableName() string { return "outbox_events" }

func (o *OutboxEvent) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (o OutboxEvent) Published() bool { return o.PublishedAt != nil }

// OrderingKey keeps every event of one aggregate in publish order.
func (o OutboxEvent) OrderingKey() string {
	return string(o.AggregateType) + ":" + o.AggregateID.String()
}

// ExhaustedAfterNextFailure reports whether one more failed attempt reaches maxAttempts.
func (o OutboxEvent) ExhaustedAfterNextFailure(maxAttempts int) bool {
	return maxAttempts > 0 && o.AttemptCount+1 >= maxAttempts
}
