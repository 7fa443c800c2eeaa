package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajith213/fuelstation-backend/pkg/enums"
)

// Nozzle is a single dispensing outlet on a pump, bound to one fuel type.
type Nozzle struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	PumpID       uuid.UUID          `gorm:"column:pump_id;type:uuid;not null;uniqueIndex:ux_nozzles_pump_number,priority:1"`
	NozzleNumber int                `gorm:"column:nozzle_number;not null;uniqueIndex:ux_nozzles_pump_number,priority:2"`
	FuelTypeID   uuid.UUID          `gorm:"column:fuel_type_id;type:uuid;not null"`
	Status       enums.NozzleStatus `gorm:"column:status;type:varchar(16);not null;default:active"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (n *Nozzle) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// IsActive reports whether readings may be recorded against the nozzle.
func (n Nozzle) IsActive() bool {
	return n.Status == enums.NozzleStatusActive
}
