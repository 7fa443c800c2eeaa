package enums

import "slices"

// NozzleStatus maps to the nozzle_status enum in Postgres.
type NozzleStatus string

const (
	NozzleStatusActive      NozzleStatus = "active"
	NozzleStatusInactive    NozzleStatus = "inactive"
	NozzleStatusMaintenance NozzleStatus = "maintenance"
)

var validNozzleStatuses = []NozzleStatus{
	NozzleStatusActive,
	NozzleStatusInactive,
	NozzleStatusMaintenance,
}

// IsValid reports whether the value matches the canonical nozzle status enum.
func (s NozzleStatus) IsValid() bool {
	return slices.Contains(validNozzleStatuses, s)
}

// ParseNozzleStatus converts raw input into NozzleStatus.
func ParseNozzleStatus(value string) (NozzleStatus, error) {
	return parse("nozzle status", value, validNozzleStatuses)
}
