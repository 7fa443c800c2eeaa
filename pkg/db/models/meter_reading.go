package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajith213/fuelstation-backend/pkg/enums"
	"github.com/sajith213/fuelstation-backend/pkg/types"
)

// MeterReading is the opening/closing totalizer pair for one nozzle on one day.
// DispensedVolume is always ClosingValue - OpeningValue.
type MeterReading struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	NozzleID        uuid.UUID           `gorm:"column:nozzle_id;type:uuid;not null;uniqueIndex:ux_meter_readings_nozzle_date,priority:1"`
	ReadingDate     time.Time           `gorm:"column:reading_date;type:date;not null;uniqueIndex:ux_meter_readings_nozzle_date,priority:2"`
	OpeningValue    types.Quantity      `gorm:"column:opening_value;not null"`
	ClosingValue    types.Quantity      `gorm:"column:closing_value;not null"`
	DispensedVolume types.Quantity      `gorm:"column:dispensed_volume;not null"`
	RecordedBy      uuid.UUID           `gorm:"column:recorded_by;type:uuid;not null"`
	Notes           string              `gorm:"column:notes;type:text;not null;default:''"`
	BackdateReason  *string             `gorm:"column:backdate_reason;type:text"`
	Status          enums.ReadingStatus `gorm:"column:status;type:varchar(16);not null;default:pending;index"`
	VerifiedBy      *uuid.UUID          `gorm:"column:verified_by;type:uuid"`
	VerifiedAt      *time.Time          `gorm:"column:verified_at"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *MeterReading) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Justification returns the stored backdating justification, or "" when none was required.
func (m MeterReading) Justification() string {
	if m.BackdateReason == nil {
		return ""
	}
	return *m.BackdateReason
}

// DisplayNotes renders the justification and free-form notes as one string for
// screens that still show a single notes column.
func (m MeterReading) DisplayNotes() string {
	reason := m.Justification()
	if reason == "" {
		return m.Notes
	}
	prefix := "[Backdated: " + reason + "]"
	if strings.TrimSpace(m.Notes) == "" {
		return prefix
	}
	return prefix + " " + m.Notes
}
