package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// constraintHints names the schema constraints operators hit in practice.
var constraintHints = map[string]string{
	"ux_meter_readings_nozzle_date":       "reading already recorded for nozzle and date",
	"ux_inventory_ledger_tank_reference":  "inventory already applied for reading",
	"ux_outbox_events_event_aggregate":    "event already emitted for aggregate",
	"ux_nozzles_pump_number":              "nozzle number already used on pump",
	"ux_fuel_types_name":                  "fuel type name already exists",
	"chk_meter_readings_closing_gte_open": "closing value below opening value",
}

// Diagnostics is the log-only view of a failure. It never reaches clients.
type Diagnostics struct {
	Message string
	Code    Code
	Chain   []string

	PGCode       string
	PGConstraint string
	PGTable      string
	PGColumn     string
	PGDetail     string
	Hint         string
}

// Diagnose walks the error chain and pulls out Postgres driver details from
// either pgx or lib/pq.
func Diagnose(err error) Diagnostics {
	if err == nil {
		return Diagnostics{}
	}

	d := Diagnostics{Message: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T", e))
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgxErr):
		d.PGCode = pgxErr.Code
		d.PGConstraint = pgxErr.ConstraintName
		d.PGTable = pgxErr.TableName
		d.PGColumn = pgxErr.ColumnName
		d.PGDetail = pgxErr.Detail
	case errors.As(err, &pqErr):
		d.PGCode = string(pqErr.Code)
		d.PGConstraint = pqErr.Constraint
		d.PGTable = pqErr.Table
		d.PGColumn = pqErr.Column
		d.PGDetail = pqErr.Detail
	}
	d.Hint = constraintHints[d.PGConstraint]
	return d
}

// Fields returns the non-empty diagnostics as structured log fields.
func (d Diagnostics) Fields() map[string]any {
	fields := map[string]any{"error_chain": d.Chain}
	if d.Code != "" {
		fields["error_code"] = string(d.Code)
	}
	add := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}
	add("pg_code", d.PGCode)
	add("pg_constraint", d.PGConstraint)
	add("pg_table", d.PGTable)
	add("pg_column", d.PGColumn)
	add("pg_detail", d.PGDetail)
	add("hint", d.Hint)
	return fields
}
