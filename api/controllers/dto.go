package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/sajith213/fuelstation-backend/api/validators"
	"github.com/sajith213/fuelstation-backend/internal/verification"
	"github.com/sajith213/fuelstation-backend/pkg/db/models"
	"github.com/sajith213/fuelstation-backend/pkg/enums"
	"github.com/sajith213/fuelstation-backend/pkg/pagination"
	"github.com/sajith213/fuelstation-backend/pkg/types"
)

type readingDTO struct {
	ID              uuid.UUID           `json:"id"`
	NozzleID        uuid.UUID           `json:"nozzle_id"`
	ReadingDate     string              `json:"reading_date"`
	OpeningValue    types.Quantity      `json:"opening_value"`
	ClosingValue    types.Quantity      `json:"closing_value"`
	DispensedVolume types.Quantity      `json:"dispensed_volume"`
	RecordedBy      uuid.UUID           `json:"recorded_by"`
	Notes           string              `json:"notes"`
	DisplayNotes    string              `json:"display_notes"`
	BackdateReason  *string             `json:"backdate_reason,omitempty"`
	Status          enums.ReadingStatus `json:"status"`
	VerifiedBy      *uuid.UUID          `json:"verified_by,omitempty"`
	VerifiedAt      *time.Time          `json:"verified_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func newReadingDTO(m *models.MeterReading) readingDTO {
	return readingDTO{
		ID:              m.ID,
		NozzleID:        m.NozzleID,
		ReadingDate:     m.ReadingDate.Format(validators.DateLayout),
		OpeningValue:    m.OpeningValue,
		ClosingValue:    m.ClosingValue,
		DispensedVolume: m.DispensedVolume,
		RecordedBy:      m.RecordedBy,
		Notes:           m.Notes,
		DisplayNotes:    m.DisplayNotes(),
		BackdateReason:  m.BackdateReason,
		Status:          m.Status,
		VerifiedBy:      m.VerifiedBy,
		VerifiedAt:      m.VerifiedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func newReadingPageDTO(page pagination.Page[models.MeterReading]) pagination.Page[readingDTO] {
	out := pagination.Page[readingDTO]{Items: make([]readingDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
	for i := range page.Items {
		out.Items = append(out.Items, newReadingDTO(&page.Items[i]))
	}
	return out
}

type ledgerEntryDTO struct {
	ID             uuid.UUID                `json:"id"`
	TankID         uuid.UUID                `json:"tank_id"`
	OperationType  enums.InventoryOperation `json:"operation_type"`
	ReferenceID    uuid.UUID                `json:"reference_id"`
	PreviousVolume types.Quantity           `json:"previous_volume"`
	ChangeAmount   types.Quantity           `json:"change_amount"`
	NewVolume      types.Quantity           `json:"new_volume"`
	AppliedAt      time.Time                `json:"applied_at"`
	AppliedBy      uuid.UUID                `json:"applied_by"`
}

func newLedgerEntryDTO(e *models.InventoryLedgerEntry) ledgerEntryDTO {
	return ledgerEntryDTO{
		ID:             e.ID,
		TankID:         e.TankID,
		OperationType:  e.OperationType,
		ReferenceID:    e.ReferenceID,
		PreviousVolume: e.PreviousVolume,
		ChangeAmount:   e.ChangeAmount,
		NewVolume:      e.NewVolume,
		AppliedAt:      e.AppliedAt,
		AppliedBy:      e.AppliedBy,
	}
}

type verifyResultDTO struct {
	Reading     readingDTO      `json:"reading"`
	TankID      uuid.UUID       `json:"tank_id"`
	LedgerEntry *ledgerEntryDTO `json:"ledger_entry,omitempty"`
	Applied     bool            `json:"applied"`
}

func newVerifyResultDTO(res *verification.VerifyResult) verifyResultDTO {
	out := verifyResultDTO{
		Reading: newReadingDTO(res.Reading),
		TankID:  res.TankID,
		Applied: res.Applied,
	}
	if res.LedgerEntry != nil {
		entry := newLedgerEntryDTO(res.LedgerEntry)
		out.LedgerEntry = &entry
	}
	return out
}

type tankDTO struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	FuelTypeID    uuid.UUID      `json:"fuel_type_id"`
	Capacity      types.Quantity `json:"capacity"`
	CurrentVolume types.Quantity `json:"current_volume"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func newTankDTO(t *models.Tank) tankDTO {
	return tankDTO{
		ID:            t.ID,
		Name:          t.Name,
		FuelTypeID:    t.FuelTypeID,
		Capacity:      t.Capacity,
		CurrentVolume: t.CurrentVolume,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

type fuelTypeDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type pumpDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	TankID    uuid.UUID `json:"tank_id"`
	CreatedAt time.Time `json:"created_at"`
}

type nozzleDTO struct {
	ID           uuid.UUID          `json:"id"`
	PumpID       uuid.UUID          `json:"pump_id"`
	NozzleNumber int                `json:"nozzle_number"`
	FuelTypeID   uuid.UUID          `json:"fuel_type_id"`
	Status       enums.NozzleStatus `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func newNozzleDTO(n *models.Nozzle) nozzleDTO {
	return nozzleDTO{
		ID:           n.ID,
		PumpID:       n.PumpID,
		NozzleNumber: n.NozzleNumber,
		FuelTypeID:   n.FuelTypeID,
		Status:       n.Status,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
	}
}
