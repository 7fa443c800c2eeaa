package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajith213/fuelstation-backend/internal/tanks"
	dbpkg "github.com/sajith213/fuelstation-backend/pkg/db"
	"github.com/sajith213/fuelstation-backend/pkg/db/models"
	"github.com/sajith213/fuelstation-backend/pkg/enums"
	pkgerrors "github.com/sajith213/fuelstation-backend/pkg/errors"
	"github.com/sajith213/fuelstation-backend/pkg/logger"
	"github.com/sajith213/fuelstation-backend/pkg/pagination"
	"github.com/sajith213/fuelstation-backend/pkg/types"
)

// ErrLedgerEntryExists is returned when the (tank, reference) unique key rejects
// an insert that slipped past the existence check.
var ErrLedgerEntryExists = pkgerrors.New(pkgerrors.CodeConflict, "inventory already applied for this reading")

// Service applies dispensing to tanks through the ledger and exposes ledger history.
type Service interface {
	ApplyDispensing(ctx context.Context, tx *gorm.DB, input ApplyInput) (*models.InventoryLedgerEntry, bool, error)
	TankHistory(ctx context.Context, tankID uuid.UUID, params pagination.Params) (pagination.Page[models.InventoryLedgerEntry], error)
	EntriesForReading(ctx context.Context, readingID uuid.UUID) ([]models.InventoryLedgerEntry, error)
}

// ApplyInput describes one dispensing application.
type ApplyInput struct {
	TankID      uuid.UUID
	ReferenceID uuid.UUID
	Dispensed   types.Quantity
	AppliedBy   uuid.UUID
	AppliedAt   time.Time
}

type service struct {
	repo  Repository
	tanks tanks.Repository
	logg  *logger.Logger
}

// NewService wires the ledger service.
func NewService(repo Repository, tankRepo tanks.Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tankRepo == nil {
		return nil, fmt.Errorf("tank repository required")
	}
	return &service{repo: repo, tanks: tankRepo, logg: logg}, nil
}

// ApplyDispensing must run inside the caller's transaction. It returns the ledger
// entry for (tank, reference) and whether this call created it; an existing entry
// is returned untouched with applied=false.
func (s *service) ApplyDispensing(ctx context.Context, tx *gorm.DB, input ApplyInput) (*models.InventoryLedgerEntry, bool, error) {
	if tx == nil {
		return nil, false, errors.New("transaction required")
	}
	if input.TankID == uuid.Nil || input.ReferenceID == uuid.Nil {
		return nil, false, errors.New("tank and reference ids are required")
	}
	if input.Dispensed.IsNegative() {
		return nil, false, types.ErrNegativeQuantity
	}

	ledger := s.repo.WithTx(tx)
	existing, err := ledger.FindByTankAndReference(ctx, input.TankID, input.ReferenceID)
	if err != nil {
		return nil, false, fmt.Errorf("lookup ledger entry: %w", err)
	}
	if existing != nil {
		if s.logg != nil {
			logCtx := s.logg.WithTankID(ctx, input.TankID)
			logCtx = s.logg.WithField(logCtx, "ledger_entry_id", existing.ID.String())
			s.logg.Warn(logCtx, "inventory already applied for reading; skipping")
		}
		return existing, false, nil
	}

	tankRepo := s.tanks.WithTx(tx)
	tank, err := tankRepo.FindByIDForUpdate(ctx, input.TankID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, tanks.ErrTankNotFound
		}
		return nil, false, fmt.Errorf("lock tank: %w", err)
	}

	appliedAt := input.AppliedAt
	if appliedAt.IsZero() {
		appliedAt = time.Now()
	}
	change := input.Dispensed.Neg()
	newVolume := tank.CurrentVolume.Add(change)

	entry := &models.InventoryLedgerEntry{
		TankID:         tank.ID,
		OperationType:  enums.InventoryOperationDispensing,
		ReferenceID:    input.ReferenceID,
		PreviousVolume: tank.CurrentVolume,
		ChangeAmount:   change,
		NewVolume:      newVolume,
		AppliedAt:      appliedAt.UTC(),
		AppliedBy:      input.AppliedBy,
	}
	if err := ledger.Create(ctx, entry); err != nil {
		if dbpkg.IsDuplicateKey(err) {
			return nil, false, pkgerrors.Extend(ErrLedgerEntryExists, err)
		}
		return nil, false, fmt.Errorf("insert ledger entry: %w", err)
	}
	if err := tankRepo.UpdateCurrentVolume(ctx, tank.ID, newVolume); err != nil {
		return nil, false, fmt.Errorf("update tank volume: %w", err)
	}

	if s.logg != nil && newVolume.IsNegative() {
		logCtx := s.logg.WithTankID(ctx, tank.ID)
		logCtx = s.logg.WithField(logCtx, "new_volume", newVolume.String())
		s.logg.Warn(logCtx, "tank volume below zero after dispensing")
	}
	return entry, true, nil
}

func (s *service) TankHistory(ctx context.Context, tankID uuid.UUID, params pagination.Params) (pagination.Page[models.InventoryLedgerEntry], error) {
	if _, err := s.tanks.FindByID(ctx, tankID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pagination.Page[models.InventoryLedgerEntry]{}, tanks.ErrTankNotFound
		}
		return pagination.Page[models.InventoryLedgerEntry]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tank")
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return pagination.Page[models.InventoryLedgerEntry]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	entries, err := s.repo.ListByTank(ctx, tankID, params)
	if err != nil {
		return pagination.Page[models.InventoryLedgerEntry]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}
	return pagination.BuildPage(entries, params.Limit, func(e models.InventoryLedgerEntry) pagination.Cursor {
		return pagination.Cursor{At: e.AppliedAt, ID: e.ID}
	}), nil
}

func (s *service) EntriesForReading(ctx context.Context, readingID uuid.UUID) ([]models.InventoryLedgerEntry, error) {
	entries, err := s.repo.ListByReference(ctx, readingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}
	return entries, nil
}
