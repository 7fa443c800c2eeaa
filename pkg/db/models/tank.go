package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajith213/fuelstation-backend/pkg/types"
)

// Tank holds the current stock of one fuel type. CurrentVolume is only ever
// written by applying an inventory ledger entry.
type Tank struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name          string         `gorm:"column:name;not null"`
	FuelTypeID    uuid.UUID      `gorm:"column:fuel_type_id;type:uuid;not null;index"`
	Capacity      types.Quantity `gorm:"column:capacity;not null"`
	CurrentVolume types.Quantity `gorm:"column:current_volume;not null"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (t *Tank) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
