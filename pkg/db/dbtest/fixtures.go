package dbtest

import (
	"testing"

	"gorm.io/gorm"

	"github.com/sajith213/fuelstation-backend/pkg/db/models"
	"github.com/sajith213/fuelstation-backend/pkg/enums"
	"github.com/sajith213/fuelstation-backend/pkg/types"
)

// Station is a minimal forecourt: one tank feeding one pump with one nozzle.
type Station struct {
	FuelType models.FuelType
	Tank     models.Tank
	Pump     models.Pump
	Nozzle   models.Nozzle
}

// SeedStation inserts a station whose tank starts at volume.
func SeedStation(t testing.TB, conn *gorm.DB, volume string) Station {
	t.Helper()
	st := Station{
		FuelType: models.FuelType{Name: "Petrol 92 " + t.Name()},
	}
	mustCreate(t, conn, &st.FuelType)

	st.Tank = models.Tank{
		Name:          "Tank 1",
		FuelTypeID:    st.FuelType.ID,
		Capacity:      types.MustQuantity("50000"),
		CurrentVolume: types.MustQuantity(volume),
	}
	mustCreate(t, conn, &st.Tank)

	st.Pump = models.Pump{Name: "Pump 1", TankID: st.Tank.ID}
	mustCreate(t, conn, &st.Pump)

	st.Nozzle = AddNozzle(t, conn, st, 1, enums.NozzleStatusActive)
	return st
}

// AddNozzle attaches another nozzle to the station pump.
func AddNozzle(t testing.TB, conn *gorm.DB, st Station, number int, status enums.NozzleStatus) models.Nozzle {
	t.Helper()
	nozzle := models.Nozzle{
		PumpID:       st.Pump.ID,
		NozzleNumber: number,
		FuelTypeID:   st.FuelType.ID,
		Status:       status,
	}
	mustCreate(t, conn, &nozzle)
	return nozzle
}

func mustCreate(t testing.TB, conn *gorm.DB, value any) {
	t.Helper()
	if err := conn.Create(value).Error; err != nil {
		t.Fatalf("seed %T: %v", value, err)
	}
}
