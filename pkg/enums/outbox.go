package enums

import "slices"

// OutboxAggregateType is the entity an outbox event describes. Events are
// unique per (event_type, aggregate_type, aggregate_id).
type OutboxAggregateType string

const (
	AggregateMeterReading OutboxAggregateType = "meter_reading"
)

var aggregateTypes = []OutboxAggregateType{AggregateMeterReading}

func (a OutboxAggregateType) IsValid() bool { return slices.Contains(aggregateTypes, a) }

func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	return parse("aggregate type", value, aggregateTypes)
}

// OutboxEventType names a reconciliation event published to Pub/Sub.
type OutboxEventType string

const (
	EventReadingRecorded       OutboxEventType = "reading_recorded"
	EventReadingVerified       OutboxEventType = "reading_verified"
	EventReadingDisputed       OutboxEventType = "reading_disputed"
	EventReadingPendingOverdue OutboxEventType = "reading_pending_overdue"
	EventInventoryApplied      OutboxEventType = "inventory_applied"
)

var eventTypes = []OutboxEventType{
	EventReadingRecorded,
	EventReadingVerified,
	EventReadingDisputed,
	EventReadingPendingOverdue,
	EventInventoryApplied,
}

func (e OutboxEventType) IsValid() bool { return slices.Contains(eventTypes, e) }

// OutboxEventTypes lists every publishable event type.
func OutboxEventTypes() []OutboxEventType { return slices.Clone(eventTypes) }

func ParseOutboxEventType(value string) (OutboxEventType, error) {
	return parse("event type", value, eventTypes)
}
