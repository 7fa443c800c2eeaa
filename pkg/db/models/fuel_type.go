package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FuelType names a grade of fuel (e.g. petrol 92, diesel) stored in tanks and dispensed by nozzles.
type FuelType struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:ux_fuel_types_name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (f *FuelType) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
