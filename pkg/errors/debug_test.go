package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestDiagnosePgxConstraint(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_meter_readings_nozzle_date", TableName: "meter_readings"}
	err := Wrap(CodeConflict, fmt.Errorf("insert reading: %w", pgErr), "duplicate reading")

	d := Diagnose(err)
	assert.Equal(t, CodeConflict, d.Code)
	assert.Equal(t, "23505", d.PGCode)
	assert.Equal(t, "meter_readings", d.PGTable)
	assert.Equal(t, "reading already recorded for nozzle and date", d.Hint)
	assert.Len(t, d.Chain, 3)

	fields := d.Fields()
	assert.Equal(t, "CONFLICT", fields["error_code"])
	assert.Equal(t, "ux_meter_readings_nozzle_date", fields["pg_constraint"])
	assert.NotContains(t, fields, "pg_column")
}

func TestDiagnoseLibPQ(t *testing.T) {
	err := fmt.Errorf("apply: %w", &pq.Error{Code: "23505", Constraint: "ux_inventory_ledger_tank_reference"})

	d := Diagnose(err)
	assert.Equal(t, "23505", d.PGCode)
	assert.Equal(t, "inventory already applied for reading", d.Hint)
	assert.Empty(t, d.Code)
}

func TestDiagnosePlainError(t *testing.T) {
	d := Diagnose(stdErrors.New("boom"))
	assert.Equal(t, "boom", d.Message)
	assert.Empty(t, d.PGCode)
	assert.Equal(t, map[string]any{"error_chain": []string{"*errors.errorString"}}, d.Fields())

	assert.Equal(t, Diagnostics{}, Diagnose(nil))
}
