package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajith213/fuelstation-backend/pkg/db/models"
	"github.com/sajith213/fuelstation-backend/pkg/pagination"
)

// Repository manages the append-only inventory ledger. Entries are never
// updated or deleted.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.InventoryLedgerEntry) error
	FindByTankAndReference(ctx context.Context, tankID, referenceID uuid.UUID) (*models.InventoryLedgerEntry, error)
	ListByTank(ctx context.Context, tankID uuid.UUID, params pagination.Params) ([]models.InventoryLedgerEntry, error)
	ListByReference(ctx context.Context, referenceID uuid.UUID) ([]models.InventoryLedgerEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.InventoryLedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByTankAndReference returns nil, nil when no entry exists.
func (r *repository) FindByTankAndReference(ctx context.Context, tankID, referenceID uuid.UUID) (*models.InventoryLedgerEntry, error) {
	var entry models.InventoryLedgerEntry
	err := r.db.WithContext(ctx).
		Where("tank_id = ? AND reference_id = ?", tankID, referenceID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// ListByTank returns entries newest first, fetching one extra row so callers can
// detect a following page.
func (r *repository) ListByTank(ctx context.Context, tankID uuid.UUID, params pagination.Params) ([]models.InventoryLedgerEntry, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Where("tank_id = ?", tankID)
	if cursor != nil {
		query = query.Where("(applied_at < ?) OR (applied_at = ? AND id < ?)", cursor.At, cursor.At, cursor.ID)
	}
	var entries []models.InventoryLedgerEntry
	if err := query.
		Order("applied_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListByReference(ctx context.Context, referenceID uuid.UUID) ([]models.InventoryLedgerEntry, error) {
	var entries []models.InventoryLedgerEntry
	if err := r.db.WithContext(ctx).
		Where("reference_id = ?", referenceID).
		Order("applied_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
