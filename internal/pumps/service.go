package pumps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajith213/fuelstation-backend/internal/tanks"
	dbpkg "github.com/sajith213/fuelstation-backend/pkg/db"
	"github.com/sajith213/fuelstation-backend/pkg/db/models"
	"github.com/sajith213/fuelstation-backend/pkg/enums"
	pkgerrors "github.com/sajith213/fuelstation-backend/pkg/errors"
)

var (
	ErrPumpNotFound       = pkgerrors.New(pkgerrors.CodeNotFound, "pump not found")
	ErrNozzleNotFound     = pkgerrors.New(pkgerrors.CodeNotFound, "nozzle not found")
	ErrNozzleNumberTaken  = pkgerrors.New(pkgerrors.CodeConflict, "nozzle number already used on this pump")
	ErrNozzleHasReadings  = pkgerrors.New(pkgerrors.CodeConflict, "nozzle has meter readings and cannot be deleted")
	ErrPumpHasReadings    = pkgerrors.New(pkgerrors.CodeConflict, "pump has meter readings and cannot be deleted")
	ErrFuelTypeMismatch   = pkgerrors.New(pkgerrors.CodeValidation, "nozzle fuel type must match the pump's tank")
	ErrInvalidNozzleState = pkgerrors.New(pkgerrors.CodeValidation, "invalid nozzle status")
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type tankLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tank, error)
}

// Service is the pump and nozzle registry consulted by the reading recorder and
// the verification engine.
type Service interface {
	FindNozzle(ctx context.Context, id uuid.UUID) (*models.Nozzle, error)
	ResolveTank(ctx context.Context, nozzleID uuid.UUID) (uuid.UUID, error)
	CreatePump(ctx context.Context, input CreatePumpInput) (*models.Pump, error)
	CreateNozzle(ctx context.Context, input CreateNozzleInput) (*models.Nozzle, error)
	UpdateNozzleStatus(ctx context.Context, id uuid.UUID, status enums.NozzleStatus) (*models.Nozzle, error)
	DeleteNozzle(ctx context.Context, id uuid.UUID) error
	DeletePump(ctx context.Context, id uuid.UUID) error
}

type CreatePumpInput struct {
	Name   string
	TankID uuid.UUID
}

type CreateNozzleInput struct {
	PumpID       uuid.UUID
	NozzleNumber int
	FuelTypeID   uuid.UUID
}

type service struct {
	repo  Repository
	tanks tankLookup
	tx    txRunner
}

// NewService wires the pump registry.
func NewService(repo Repository, tankRepo tankLookup, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pump repository required")
	}
	if tankRepo == nil {
		return nil, fmt.Errorf("tank repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tanks: tankRepo, tx: tx}, nil
}

func (s *service) FindNozzle(ctx context.Context, id uuid.UUID) (*models.Nozzle, error) {
	nozzle, err := s.repo.FindNozzleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNozzleNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load nozzle")
	}
	return nozzle, nil
}

func (s *service) ResolveTank(ctx context.Context, nozzleID uuid.UUID) (uuid.UUID, error) {
	tankID, err := s.repo.ResolveTankID(ctx, nozzleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrNozzleNotFound
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve tank")
	}
	return tankID, nil
}

func (s *service) CreatePump(ctx context.Context, input CreatePumpInput) (*models.Pump, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pump name is required")
	}
	if _, err := s.tanks.FindByID(ctx, input.TankID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tanks.ErrTankNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tank")
	}
	pump := &models.Pump{Name: name, TankID: input.TankID}
	if err := s.repo.CreatePump(ctx, pump); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create pump")
	}
	return pump, nil
}

func (s *service) CreateNozzle(ctx context.Context, input CreateNozzleInput) (*models.Nozzle, error) {
	if input.NozzleNumber <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nozzle number must be positive")
	}
	pump, err := s.repo.FindPumpByID(ctx, input.PumpID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPumpNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pump")
	}
	tank, err := s.tanks.FindByID(ctx, pump.TankID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pump tank")
	}
	fuelTypeID := input.FuelTypeID
	if fuelTypeID == uuid.Nil {
		fuelTypeID = tank.FuelTypeID
	}
	if fuelTypeID != tank.FuelTypeID {
		return nil, ErrFuelTypeMismatch
	}

	nozzle := &models.Nozzle{
		PumpID:       pump.ID,
		NozzleNumber: input.NozzleNumber,
		FuelTypeID:   fuelTypeID,
		Status:       enums.NozzleStatusActive,
	}
	if err := s.repo.CreateNozzle(ctx, nozzle); err != nil {
		if dbpkg.IsDuplicateKey(err) {
			return nil, ErrNozzleNumberTaken
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create nozzle")
	}
	return nozzle, nil
}

func (s *service) UpdateNozzleStatus(ctx context.Context, id uuid.UUID, status enums.NozzleStatus) (*models.Nozzle, error) {
	if !status.IsValid() {
		return nil, ErrInvalidNozzleState
	}
	if err := s.repo.UpdateNozzleStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNozzleNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update nozzle status")
	}
	return s.FindNozzle(ctx, id)
}

func (s *service) DeleteNozzle(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		count, err := repo.CountReadingsForNozzles(ctx, []uuid.UUID{id})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count nozzle readings")
		}
		if count > 0 {
			return ErrNozzleHasReadings
		}
		if err := repo.DeleteNozzle(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNozzleNotFound
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete nozzle")
		}
		return nil
	})
}

func (s *service) DeletePump(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		nozzles, err := repo.ListNozzlesByPump(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pump nozzles")
		}
		ids := make([]uuid.UUID, 0, len(nozzles))
		for _, nozzle := range nozzles {
			ids = append(ids, nozzle.ID)
		}
		count, err := repo.CountReadingsForNozzles(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pump readings")
		}
		if count > 0 {
			return ErrPumpHasReadings
		}
		if err := repo.DeletePump(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPumpNotFound
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete pump")
		}
		return nil
	})
}
