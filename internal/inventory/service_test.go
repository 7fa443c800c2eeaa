package inventory

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sajith213/fuelstation-backend/internal/tanks"
	"github.com/sajith213/fuelstation-backend/pkg/db"
	"github.com/sajith213/fuelstation-backend/pkg/db/dbtest"
	"github.com/sajith213/fuelstation-backend/pkg/db/models"
	"github.com/sajith213/fuelstation-backend/pkg/logger"
	"github.com/sajith213/fuelstation-backend/pkg/pagination"
	"github.com/sajith213/fuelstation-backend/pkg/types"
)

type fixture struct {
	client  *db.Client
	conn    *gorm.DB
	svc     Service
	tanks   tanks.Repository
	station dbtest.Station
}

func newFixture(t *testing.T, volume string) fixture {
	t.Helper()
	client, conn := dbtest.OpenClient(t)
	tankRepo := tanks.NewRepository(conn)
	svc, err := NewService(NewRepository(conn), tankRepo, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	require.NoError(t, err)
	return fixture{client: client, conn: conn, svc: svc, tanks: tankRepo, station: dbtest.SeedStation(t, conn, volume)}
}

func (f fixture) apply(t *testing.T, readingID uuid.UUID, dispensed string) (*models.InventoryLedgerEntry, bool, error) {
	t.Helper()
	var (
		entry   *models.InventoryLedgerEntry
		applied bool
	)
	err := f.client.WithTx(context.Background(), func(tx *gorm.DB) error {
		var err error
		entry, applied, err = f.svc.ApplyDispensing(context.Background(), tx, ApplyInput{
			TankID:      f.station.Tank.ID,
			ReferenceID: readingID,
			Dispensed:   types.MustQuantity(dispensed),
			AppliedBy:   uuid.New(),
		})
		return err
	})
	return entry, applied, err
}

func TestApplyDispensingDeductsExactly(t *testing.T) {
	f := newFixture(t, "10000.0000")
	readingID := uuid.New()

	entry, applied, err := f.apply(t, readingID, "50.2500")
	require.NoError(t, err)
	require.True(t, applied)
	assert.Equal(t, "10000.0000", entry.PreviousVolume.String())
	assert.Equal(t, "-50.2500", entry.ChangeAmount.String())
	assert.Equal(t, "9949.7500", entry.NewVolume.String())

	tank, err := f.tanks.FindByID(context.Background(), f.station.Tank.ID)
	require.NoError(t, err)
	assert.Equal(t, "9949.7500", tank.CurrentVolume.String())
}

func TestApplyDispensingIsIdempotentPerReading(t *testing.T) {
	f := newFixture(t, "10000")
	readingID := uuid.New()

	first, applied, err := f.apply(t, readingID, "50.25")
	require.NoError(t, err)
	require.True(t, applied)

	second, applied, err := f.apply(t, readingID, "50.25")
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, first.ID, second.ID)

	tank, err := f.tanks.FindByID(context.Background(), f.station.Tank.ID)
	require.NoError(t, err)
	assert.Equal(t, "9949.7500", tank.CurrentVolume.String())

	entries, err := f.svc.EntriesForReading(context.Background(), readingID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLedgerUniqueKeyRejectsSecondEntry(t *testing.T) {
	f := newFixture(t, "100")
	readingID := uuid.New()
	_, _, err := f.apply(t, readingID, "1")
	require.NoError(t, err)

	dup := models.InventoryLedgerEntry{
		TankID:         f.station.Tank.ID,
		OperationType:  "dispensing",
		ReferenceID:    readingID,
		PreviousVolume: types.MustQuantity("99"),
		ChangeAmount:   types.MustQuantity("1").Neg(),
		NewVolume:      types.MustQuantity("98"),
		AppliedAt:      time.Now(),
		AppliedBy:      uuid.New(),
	}
	err = NewRepository(f.conn).Create(context.Background(), &dup)
	require.Error(t, err)
	assert.True(t, db.IsDuplicateKey(err))
}

func TestApplyDispensingRollsBackWithTransaction(t *testing.T) {
	f := newFixture(t, "500")
	readingID := uuid.New()

	err := f.client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if _, _, err := f.svc.ApplyDispensing(context.Background(), tx, ApplyInput{
			TankID:      f.station.Tank.ID,
			ReferenceID: readingID,
			Dispensed:   types.MustQuantity("20"),
		}); err != nil {
			return err
		}
		return errors.New("status update failed")
	})
	require.Error(t, err)

	tank, err := f.tanks.FindByID(context.Background(), f.station.Tank.ID)
	require.NoError(t, err)
	assert.Equal(t, "500.0000", tank.CurrentVolume.String())
	entries, err := f.svc.EntriesForReading(context.Background(), readingID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestApplyDispensingUnknownTank(t *testing.T) {
	f := newFixture(t, "500")
	err := f.client.WithTx(context.Background(), func(tx *gorm.DB) error {
		_, _, err := f.svc.ApplyDispensing(context.Background(), tx, ApplyInput{
			TankID:      uuid.New(),
			ReferenceID: uuid.New(),
			Dispensed:   types.MustQuantity("1"),
		})
		return err
	})
	assert.True(t, errors.Is(err, tanks.ErrTankNotFound))
}

func TestApplyDispensingRequiresTransaction(t *testing.T) {
	f := newFixture(t, "500")
	_, _, err := f.svc.ApplyDispensing(context.Background(), nil, ApplyInput{TankID: uuid.New(), ReferenceID: uuid.New()})
	assert.Error(t, err)
}

func TestTankHistoryPages(t *testing.T) {
	f := newFixture(t, "1000")
	for i := 0; i < 3; i++ {
		_, _, err := f.apply(t, uuid.New(), "10")
		require.NoError(t, err)
	}

	page, err := f.svc.TankHistory(context.Background(), f.station.Tank.ID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)

	rest, err := f.svc.TankHistory(context.Background(), f.station.Tank.ID, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	assert.Empty(t, rest.NextCursor)
	assert.Equal(t, "1000.0000", rest.Items[0].PreviousVolume.String())

	_, err = f.svc.TankHistory(context.Background(), uuid.New(), pagination.Params{})
	assert.True(t, errors.Is(err, tanks.ErrTankNotFound))
}
