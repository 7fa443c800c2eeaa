package enums

import "slices"

// ReadingStatus maps to the reading_status enum in Postgres.
type ReadingStatus string

const (
	ReadingStatusPending  ReadingStatus = "pending"
	ReadingStatusVerified ReadingStatus = "verified"
	ReadingStatusDisputed ReadingStatus = "disputed"
)

var validReadingStatuses = []ReadingStatus{
	ReadingStatusPending,
	ReadingStatusVerified,
	ReadingStatusDisputed,
}

// IsValid reports whether the value matches the canonical reading status enum.
func (s ReadingStatus) IsValid() bool {
	return slices.Contains(validReadingStatuses, s)
}

// IsTerminal reports whether no further transition is allowed from s.
func (s ReadingStatus) IsTerminal() bool {
	return s == ReadingStatusVerified || s == ReadingStatusDisputed
}

// ParseReadingStatus converts raw input into ReadingStatus.
func ParseReadingStatus(value string) (ReadingStatus, error) {
	return parse("reading status", value, validReadingStatuses)
}
