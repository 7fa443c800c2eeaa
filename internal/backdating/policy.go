package backdating

import (
	"strings"
	"time"

	pkgerrors "github.com/sajith213/fuelstation-backend/pkg/errors"
)

// ErrBackdatingReasonRequired is returned when a reading dated before the
// station's current day carries no justification.
var ErrBackdatingReasonRequired = pkgerrors.New(pkgerrors.CodeValidation, "a justification is required for readings dated before today")

// Policy decides whether a reading date needs a justification. The "today"
// boundary is evaluated in the station's time zone using the injected clock.
type Policy struct {
	loc *time.Location
	now func() time.Time
}

// Option customizes a Policy.
type Option func(*Policy)

// WithClock overrides the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Policy) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPolicy builds a policy for the given station time zone. A nil location means UTC.
func NewPolicy(loc *time.Location, opts ...Option) *Policy {
	if loc == nil {
		loc = time.UTC
	}
	p := &Policy{loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Location returns the station time zone.
func (p *Policy) Location() *time.Location {
	return p.loc
}

// Now returns the current instant from the injected clock.
func (p *Policy) Now() time.Time {
	return p.now()
}

// Today returns the station's current calendar day.
func (p *Policy) Today() time.Time {
	return CalendarDay(p.now().In(p.loc))
}

// RequiresJustification reports whether date falls strictly before today.
func (p *Policy) RequiresJustification(date time.Time) bool {
	return CalendarDay(date).Before(p.Today())
}

// Validate fails with ErrBackdatingReasonRequired when a justification is
// required and justification is blank.
func (p *Policy) Validate(date time.Time, justification string) error {
	if p.RequiresJustification(date) && strings.TrimSpace(justification) == "" {
		return ErrBackdatingReasonRequired
	}
	return nil
}

// Preserve returns the justification to store after an edit. A stored value
// always wins; supplied is only used when nothing was stored before.
func (p *Policy) Preserve(existing *string, supplied string) *string {
	if existing != nil && strings.TrimSpace(*existing) != "" {
		return existing
	}
	trimmed := strings.TrimSpace(supplied)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// WasBackdated reports whether readingDate precedes the station day on which
// the reading was recorded.
func (p *Policy) WasBackdated(readingDate, recordedAt time.Time) bool {
	return CalendarDay(readingDate).Before(CalendarDay(recordedAt.In(p.loc)))
}

// CalendarDay truncates t to midnight UTC of its own calendar date, so dates
// from different zones compare by their wall-clock day.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Normalize trims a justification; blank becomes nil.
func Normalize(justification string) *string {
	trimmed := strings.TrimSpace(justification)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
