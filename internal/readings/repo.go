package readings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sajith213/fuelstation-backend/pkg/db/models"
	"github.com/sajith213/fuelstation-backend/pkg/enums"
	"github.com/sajith213/fuelstation-backend/pkg/pagination"
)

// Repository persists meter readings. Rows are never deleted.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, reading *models.MeterReading) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.MeterReading, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.MeterReading, error)
	FindByNozzleAndDate(ctx context.Context, nozzleID uuid.UUID, date time.Time) (*models.MeterReading, error)
	UpdateWhilePending(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)
	List(ctx context.Context, filters ReadingFilters, params pagination.Params) ([]models.MeterReading, error)
	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.MeterReading, error)
}

// ReadingFilters narrows ListReadings. Dates are inclusive calendar days.
type ReadingFilters struct {
	NozzleID *uuid.UUID
	Status   *enums.ReadingStatus
	From     *time.Time
	To       *time.Time
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a reading repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, reading *models.MeterReading) error {
	return r.db.WithContext(ctx).Create(reading).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.MeterReading, error) {
	var reading models.MeterReading
	if err := r.db.WithContext(ctx).First(&reading, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reading, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.MeterReading, error) {
	var reading models.MeterReading
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&reading, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reading, nil
}

// FindByNozzleAndDate returns nil, nil when the nozzle has no reading for date.
func (r *repository) FindByNozzleAndDate(ctx context.Context, nozzleID uuid.UUID, date time.Time) (*models.MeterReading, error) {
	var reading models.MeterReading
	err := r.db.WithContext(ctx).
		Where("nozzle_id = ? AND reading_date = ?", nozzleID, date).
		First(&reading).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reading, nil
}

// UpdateWhilePending applies updates only if the row is still pending and
// reports how many rows changed.
func (r *repository) UpdateWhilePending(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.MeterReading{}).
		Where("id = ? AND status = ?", id, enums.ReadingStatusPending).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// List returns readings newest reading date first, fetching one extra row so
// callers can detect a following page.
func (r *repository) List(ctx context.Context, filters ReadingFilters, params pagination.Params) ([]models.MeterReading, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&models.MeterReading{})
	if filters.NozzleID != nil {
		query = query.Where("nozzle_id = ?", *filters.NozzleID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.From != nil {
		query = query.Where("reading_date >= ?", *filters.From)
	}
	if filters.To != nil {
		query = query.Where("reading_date <= ?", *filters.To)
	}
	if cursor != nil {
		query = query.Where("(reading_date < ?) OR (reading_date = ? AND id < ?)", cursor.At, cursor.At, cursor.ID)
	}
	var rows []models.MeterReading
	if err := query.
		Order("reading_date DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListPendingBefore returns pending readings recorded before cutoff, oldest first.
func (r *repository) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.MeterReading, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.ReadingStatusPending, cutoff).
		Order("created_at ASC").
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.MeterReading
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
