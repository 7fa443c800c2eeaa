package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/sajith213/fuelstation-backend/pkg/enums"
)

// ReadingRecordedEvent is emitted when an operator records a new meter reading.
type ReadingRecordedEvent struct {
	ReadingID       uuid.UUID           `json:"readingId"`
	NozzleID        uuid.UUID           `json:"nozzleId"`
	ReadingDate     string              `json:"readingDate"`
	OpeningValue    string              `json:"openingValue"`
	ClosingValue    string              `json:"closingValue"`
	DispensedVolume string              `json:"dispensedVolume"`
	RecordedBy      uuid.UUID           `json:"recordedBy"`
	Backdated       bool                `json:"backdated"`
	Status          enums.ReadingStatus `json:"status"`
}

// ReadingVerifiedEvent is emitted once a reading is accepted.
type ReadingVerifiedEvent struct {
	ReadingID       uuid.UUID  `json:"readingId"`
	NozzleID        uuid.UUID  `json:"nozzleId"`
	TankID          uuid.UUID  `json:"tankId"`
	ReadingDate     string     `json:"readingDate"`
	DispensedVolume string     `json:"dispensedVolume"`
	VerifiedBy      uuid.UUID  `json:"verifiedBy"`
	VerifiedAt      time.Time  `json:"verifiedAt"`
	LedgerEntryID   *uuid.UUID `json:"ledgerEntryId,omitempty"`
}

// ReadingDisputedEvent is emitted when a reading is rejected.
type ReadingDisputedEvent struct {
	ReadingID   uuid.UUID `json:"readingId"`
	NozzleID    uuid.UUID `json:"nozzleId"`
	ReadingDate string    `json:"readingDate"`
	DisputedBy  uuid.UUID `json:"disputedBy"`
	DisputedAt  time.Time `json:"disputedAt"`
	Reason      string    `json:"reason"`
}

// InventoryAppliedEvent carries the ledger entry created by a verification.
type InventoryAppliedEvent struct {
	LedgerEntryID  uuid.UUID                `json:"ledgerEntryId"`
	TankID         uuid.UUID                `json:"tankId"`
	ReadingID      uuid.UUID                `json:"readingId"`
	OperationType  enums.InventoryOperation `json:"operationType"`
	PreviousVolume string                   `json:"previousVolume"`
	ChangeAmount   string                   `json:"changeAmount"`
	NewVolume      string                   `json:"newVolume"`
	AppliedAt      time.Time                `json:"appliedAt"`
}

// ReadingPendingOverdueEvent flags a reading left unverified past the overdue window.
type ReadingPendingOverdueEvent struct {
	ReadingID   uuid.UUID `json:"readingId"`
	NozzleID    uuid.UUID `json:"nozzleId"`
	ReadingDate string    `json:"readingDate"`
	RecordedAt  time.Time `json:"recordedAt"`
	PendingDays int       `json:"pendingDays"`
}
