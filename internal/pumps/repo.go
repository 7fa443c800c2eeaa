package pumps

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajith213/fuelstation-backend/pkg/db/models"
	"github.com/sajith213/fuelstation-backend/pkg/enums"
)

// Repository persists pumps and their nozzles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreatePump(ctx context.Context, pump *models.Pump) error
	CreateNozzle(ctx context.Context, nozzle *models.Nozzle) error
	FindPumpByID(ctx context.Context, id uuid.UUID) (*models.Pump, error)
	FindNozzleByID(ctx context.Context, id uuid.UUID) (*models.Nozzle, error)
	ListNozzlesByPump(ctx context.Context, pumpID uuid.UUID) ([]models.Nozzle, error)
	ResolveTankID(ctx context.Context, nozzleID uuid.UUID) (uuid.UUID, error)
	UpdateNozzleStatus(ctx context.Context, id uuid.UUID, status enums.NozzleStatus) error
	CountReadingsForNozzles(ctx context.Context, nozzleIDs []uuid.UUID) (int64, error)
	DeleteNozzle(ctx context.Context, id uuid.UUID) error
	DeletePump(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a pump repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreatePump(ctx context.Context, pump *models.Pump) error {
	return r.db.WithContext(ctx).Create(pump).Error
}

func (r *repository) CreateNozzle(ctx context.Context, nozzle *models.Nozzle) error {
	return r.db.WithContext(ctx).Create(nozzle).Error
}

func (r *repository) FindPumpByID(ctx context.Context, id uuid.UUID) (*models.Pump, error) {
	var pump models.Pump
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&pump).Error; err != nil {
		return nil, err
	}
	return &pump, nil
}

func (r *repository) FindNozzleByID(ctx context.Context, id uuid.UUID) (*models.Nozzle, error) {
	var nozzle models.Nozzle
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&nozzle).Error; err != nil {
		return nil, err
	}
	return &nozzle, nil
}

func (r *repository) ListNozzlesByPump(ctx context.Context, pumpID uuid.UUID) ([]models.Nozzle, error) {
	var nozzles []models.Nozzle
	if err := r.db.WithContext(ctx).
		Where("pump_id = ?", pumpID).
		Order("nozzle_number ASC").
		Find(&nozzles).Error; err != nil {
		return nil, err
	}
	return nozzles, nil
}

// ResolveTankID follows nozzle -> pump -> tank.
func (r *repository) ResolveTankID(ctx context.Context, nozzleID uuid.UUID) (uuid.UUID, error) {
	var pump models.Pump
	err := r.db.WithContext(ctx).
		Model(&models.Pump{}).
		Select("pumps.*").
		Joins("JOIN nozzles ON nozzles.pump_id = pumps.id").
		Where("nozzles.id = ?", nozzleID).
		First(&pump).Error
	if err != nil {
		return uuid.Nil, err
	}
	return pump.TankID, nil
}

func (r *repository) UpdateNozzleStatus(ctx context.Context, id uuid.UUID, status enums.NozzleStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Nozzle{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CountReadingsForNozzles(ctx context.Context, nozzleIDs []uuid.UUID) (int64, error) {
	if len(nozzleIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MeterReading{}).
		Where("nozzle_id IN ?", nozzleIDs).
		Count(&count).Error
	return count, err
}

func (r *repository) DeleteNozzle(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Nozzle{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeletePump(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("pump_id = ?", id).Delete(&models.Nozzle{}).Error; err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Pump{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
