package pumps

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sajith213/fuelstation-backend/internal/tanks"
	"github.com/sajith213/fuelstation-backend/pkg/db/dbtest"
	"github.com/sajith213/fuelstation-backend/pkg/db/models"
	"github.com/sajith213/fuelstation-backend/pkg/enums"
	"github.com/sajith213/fuelstation-backend/pkg/types"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	client, conn := dbtest.OpenClient(t)
	svc, err := NewService(NewRepository(conn), tanks.NewRepository(conn), client)
	require.NoError(t, err)
	return svc, conn
}

func TestResolveTankFollowsPump(t *testing.T) {
	svc, conn := newTestService(t)
	station := dbtest.SeedStation(t, conn, "1000")

	tankID, err := svc.ResolveTank(context.Background(), station.Nozzle.ID)
	require.NoError(t, err)
	assert.Equal(t, station.Tank.ID, tankID)

	_, err = svc.ResolveTank(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrNozzleNotFound))
}

func TestCreateNozzle(t *testing.T) {
	ctx := context.Background()
	svc, conn := newTestService(t)
	station := dbtest.SeedStation(t, conn, "1000")

	nozzle, err := svc.CreateNozzle(ctx, CreateNozzleInput{PumpID: station.Pump.ID, NozzleNumber: 2})
	require.NoError(t, err)
	assert.Equal(t, station.FuelType.ID, nozzle.FuelTypeID)
	assert.Equal(t, enums.NozzleStatusActive, nozzle.Status)

	_, err = svc.CreateNozzle(ctx, CreateNozzleInput{PumpID: station.Pump.ID, NozzleNumber: 2})
	assert.True(t, errors.Is(err, ErrNozzleNumberTaken))

	_, err = svc.CreateNozzle(ctx, CreateNozzleInput{PumpID: station.Pump.ID, NozzleNumber: 3, FuelTypeID: uuid.New()})
	assert.True(t, errors.Is(err, ErrFuelTypeMismatch))

	_, err = svc.CreateNozzle(ctx, CreateNozzleInput{PumpID: uuid.New(), NozzleNumber: 1})
	assert.True(t, errors.Is(err, ErrPumpNotFound))
}

func TestCreatePumpRequiresTank(t *testing.T) {
	ctx := context.Background()
	svc, conn := newTestService(t)
	station := dbtest.SeedStation(t, conn, "1000")

	pump, err := svc.CreatePump(ctx, CreatePumpInput{Name: "Pump 2", TankID: station.Tank.ID})
	require.NoError(t, err)
	assert.Equal(t, station.Tank.ID, pump.TankID)

	_, err = svc.CreatePump(ctx, CreatePumpInput{Name: "Pump 3", TankID: uuid.New()})
	assert.True(t, errors.Is(err, tanks.ErrTankNotFound))
}

func TestUpdateNozzleStatus(t *testing.T) {
	ctx := context.Background()
	svc, conn := newTestService(t)
	station := dbtest.SeedStation(t, conn, "1000")

	nozzle, err := svc.UpdateNozzleStatus(ctx, station.Nozzle.ID, enums.NozzleStatusMaintenance)
	require.NoError(t, err)
	assert.Equal(t, enums.NozzleStatusMaintenance, nozzle.Status)

	_, err = svc.UpdateNozzleStatus(ctx, station.Nozzle.ID, enums.NozzleStatus("broken"))
	assert.True(t, errors.Is(err, ErrInvalidNozzleState))

	_, err = svc.UpdateNozzleStatus(ctx, uuid.New(), enums.NozzleStatusActive)
	assert.True(t, errors.Is(err, ErrNozzleNotFound))
}

func TestDeleteGuardsReferencedNozzles(t *testing.T) {
	ctx := context.Background()
	svc, conn := newTestService(t)
	station := dbtest.SeedStation(t, conn, "1000")
	spare := dbtest.AddNozzle(t, conn, station, 2, enums.NozzleStatusActive)

	reading := models.MeterReading{
		NozzleID:        station.Nozzle.ID,
		ReadingDate:     time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		OpeningValue:    types.MustQuantity("100"),
		ClosingValue:    types.MustQuantity("150"),
		DispensedVolume: types.MustQuantity("50"),
		RecordedBy:      uuid.New(),
		Status:          enums.ReadingStatusPending,
	}
	require.NoError(t, conn.Create(&reading).Error)

	err := svc.DeleteNozzle(ctx, station.Nozzle.ID)
	assert.True(t, errors.Is(err, ErrNozzleHasReadings))

	err = svc.DeletePump(ctx, station.Pump.ID)
	assert.True(t, errors.Is(err, ErrPumpHasReadings))

	require.NoError(t, svc.DeleteNozzle(ctx, spare.ID))
	_, err = svc.FindNozzle(ctx, spare.ID)
	assert.True(t, errors.Is(err, ErrNozzleNotFound))
}

func TestDeletePumpWithoutReadings(t *testing.T) {
	ctx := context.Background()
	svc, conn := newTestService(t)
	station := dbtest.SeedStation(t, conn, "1000")

	require.NoError(t, svc.DeletePump(ctx, station.Pump.ID))
	_, err := svc.FindNozzle(ctx, station.Nozzle.ID)
	assert.True(t, errors.Is(err, ErrNozzleNotFound))

	err = svc.DeletePump(ctx, station.Pump.ID)
	assert.True(t, errors.Is(err, ErrPumpNotFound))
}
