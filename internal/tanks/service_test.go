package tanks

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sajith213/fuelstation-backend/pkg/db/dbtest"
	"github.com/sajith213/fuelstation-backend/pkg/types"
)

func newTestService(t *testing.T) (Service, Repository) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func TestCreateTankStoresExactVolumes(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	fuel, err := svc.CreateFuelType(ctx, "Petrol 92")
	require.NoError(t, err)

	tank, err := svc.CreateTank(ctx, CreateTankInput{
		Name:          "Tank A",
		FuelTypeID:    fuel.ID,
		Capacity:      "20000",
		InitialVolume: "10000.0000",
	})
	require.NoError(t, err)

	stored, err := repo.FindByID(ctx, tank.ID)
	require.NoError(t, err)
	assert.Equal(t, "10000.0000", stored.CurrentVolume.String())
	assert.Equal(t, "20000.0000", stored.Capacity.String())
}

func TestCreateTankValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	fuel, err := svc.CreateFuelType(ctx, "Diesel")
	require.NoError(t, err)

	_, err = svc.CreateTank(ctx, CreateTankInput{Name: "T", FuelTypeID: fuel.ID, Capacity: "100", InitialVolume: "150"})
	assert.True(t, errors.Is(err, ErrVolumeOverCapacity))

	_, err = svc.CreateTank(ctx, CreateTankInput{Name: "T", FuelTypeID: uuid.New(), Capacity: "100"})
	assert.True(t, errors.Is(err, ErrFuelTypeNotFound))

	_, err = svc.CreateTank(ctx, CreateTankInput{Name: "T", FuelTypeID: fuel.ID, Capacity: "-1"})
	require.Error(t, err)
}

func TestCreateFuelTypeDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	_, err := svc.CreateFuelType(ctx, "Kerosene")
	require.NoError(t, err)
	_, err = svc.CreateFuelType(ctx, "Kerosene")
	assert.True(t, errors.Is(err, ErrFuelTypeExists))
}

func TestGetTankNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetTank(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrTankNotFound))
}

func TestUpdateCurrentVolume(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	fuel, err := svc.CreateFuelType(ctx, "Petrol 95")
	require.NoError(t, err)
	tank, err := svc.CreateTank(ctx, CreateTankInput{Name: "Tank B", FuelTypeID: fuel.ID, Capacity: "5000", InitialVolume: "4000"})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateCurrentVolume(ctx, tank.ID, types.MustQuantity("3949.75")))
	locked, err := repo.FindByIDForUpdate(ctx, tank.ID)
	require.NoError(t, err)
	assert.Equal(t, "3949.7500", locked.CurrentVolume.String())

	err = repo.UpdateCurrentVolume(ctx, uuid.New(), types.ZeroQuantity())
	assert.Error(t, err)
}
