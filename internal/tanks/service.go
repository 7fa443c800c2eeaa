package tanks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/sajith213/fuelstation-backend/pkg/db"
	"github.com/sajith213/fuelstation-backend/pkg/db/models"
	pkgerrors "github.com/sajith213/fuelstation-backend/pkg/errors"
	"github.com/sajith213/fuelstation-backend/pkg/types"
)

var (
	ErrTankNotFound       = pkgerrors.New(pkgerrors.CodeNotFound, "tank not found")
	ErrFuelTypeNotFound   = pkgerrors.New(pkgerrors.CodeNotFound, "fuel type not found")
	ErrFuelTypeExists     = pkgerrors.New(pkgerrors.CodeConflict, "fuel type already exists")
	ErrVolumeOverCapacity = pkgerrors.New(pkgerrors.CodeValidation, "initial volume exceeds tank capacity")
)

// Service exposes tank registry operations. Current volume is only ever changed
// through the inventory ledger; this surface sets it once at creation.
type Service interface {
	CreateFuelType(ctx context.Context, name string) (*models.FuelType, error)
	CreateTank(ctx context.Context, input CreateTankInput) (*models.Tank, error)
	GetTank(ctx context.Context, id uuid.UUID) (*models.Tank, error)
	ListTanks(ctx context.Context) ([]models.Tank, error)
}

// CreateTankInput describes a new storage tank.
type CreateTankInput struct {
	Name          string
	FuelTypeID    uuid.UUID
	Capacity      string
	InitialVolume string
}

type service struct {
	repo Repository
}

// NewService wires the tank registry.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tank repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateFuelType(ctx context.Context, name string) (*models.FuelType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fuel type name is required")
	}
	fuelType := &models.FuelType{Name: name}
	if err := s.repo.CreateFuelType(ctx, fuelType); err != nil {
		if dbpkg.IsDuplicateKey(err) {
			return nil, ErrFuelTypeExists
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create fuel type")
	}
	return fuelType, nil
}

func (s *service) CreateTank(ctx context.Context, input CreateTankInput) (*models.Tank, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tank name is required")
	}
	if input.FuelTypeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fuel type id is required")
	}
	capacity, err := types.ParseQuantity(input.Capacity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid capacity")
	}
	initial := types.ZeroQuantity()
	if strings.TrimSpace(input.InitialVolume) != "" {
		initial, err = types.ParseQuantity(input.InitialVolume)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid initial volume")
		}
	}
	if capacity.LessThan(initial) {
		return nil, ErrVolumeOverCapacity
	}

	if _, err := s.repo.FindFuelTypeByID(ctx, input.FuelTypeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFuelTypeNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load fuel type")
	}

	tank := &models.Tank{
		Name:          name,
		FuelTypeID:    input.FuelTypeID,
		Capacity:      capacity,
		CurrentVolume: initial,
	}
	if err := s.repo.Create(ctx, tank); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create tank")
	}
	return tank, nil
}

func (s *service) GetTank(ctx context.Context, id uuid.UUID) (*models.Tank, error) {
	tank, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTankNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tank")
	}
	return tank, nil
}

func (s *service) ListTanks(ctx context.Context) ([]models.Tank, error) {
	tanks, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tanks")
	}
	return tanks, nil
}
