package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajith213/fuelstation-backend/pkg/enums"
	"github.com/sajith213/fuelstation-backend/pkg/types"
)

// InventoryLedgerEntry is an immutable journal row describing one change to a
// tank's volume. (TankID, ReferenceID) is unique: a reading is applied at most once.
type InventoryLedgerEntry struct {
	ID             uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	TankID         uuid.UUID                `gorm:"column:tank_id;type:uuid;not null;uniqueIndex:ux_inventory_ledger_tank_reference,priority:1"`
	OperationType  enums.InventoryOperation `gorm:"column:operation_type;type:varchar(32);not null"`
	ReferenceID    uuid.UUID                `gorm:"column:reference_id;type:uuid;not null;uniqueIndex:ux_inventory_ledger_tank_reference,priority:2;index"`
	PreviousVolume types.Quantity           `gorm:"column:previous_volume;not null"`
	ChangeAmount   types.Quantity           `gorm:"column:change_amount;not null"`
	NewVolume      types.Quantity           `gorm:"column:new_volume;not null"`
	AppliedAt      time.Time                `gorm:"column:applied_at;not null"`
	AppliedBy      uuid.UUID                `gorm:"column:applied_by;type:uuid;not null"`
}

func (e *InventoryLedgerEntry) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
