package tanks

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sajith213/fuelstation-backend/pkg/db/models"
	"github.com/sajith213/fuelstation-backend/pkg/types"
)

// Repository manages tanks and the fuel types they hold.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, tank *models.Tank) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tank, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Tank, error)
	UpdateCurrentVolume(ctx context.Context, id uuid.UUID, volume types.Quantity) error
	List(ctx context.Context) ([]models.Tank, error)
	CreateFuelType(ctx context.Context, fuelType *models.FuelType) error
	FindFuelTypeByID(ctx context.Context, id uuid.UUID) (*models.FuelType, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a tank repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, tank *models.Tank) error {
	return r.db.WithContext(ctx).Create(tank).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Tank, error) {
	var tank models.Tank
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tank).Error; err != nil {
		return nil, err
	}
	return &tank, nil
}

// FindByIDForUpdate row-locks the tank for the rest of the surrounding transaction.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Tank, error) {
	var tank models.Tank
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&tank).Error; err != nil {
		return nil, err
	}
	return &tank, nil
}

func (r *repository) UpdateCurrentVolume(ctx context.Context, id uuid.UUID, volume types.Quantity) error {
	res := r.db.WithContext(ctx).
		Model(&models.Tank{}).
		Where("id = ?", id).
		Update("current_volume", volume)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context) ([]models.Tank, error) {
	var tanks []models.Tank
	if err := r.db.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&tanks).Error; err != nil {
		return nil, err
	}
	return tanks, nil
}

func (r *repository) CreateFuelType(ctx context.Context, fuelType *models.FuelType) error {
	return r.db.WithContext(ctx).Create(fuelType).Error
}

func (r *repository) FindFuelTypeByID(ctx context.Context, id uuid.UUID) (*models.FuelType, error) {
	var fuelType models.FuelType
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&fuelType).Error; err != nil {
		return nil, err
	}
	return &fuelType, nil
}
