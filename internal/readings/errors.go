package readings

import (
	"github.com/sajith213/fuelstation-backend/internal/backdating"
	pkgerrors "github.com/sajith213/fuelstation-backend/pkg/errors"
)

// Reading error kinds. Verification reuses them so callers can match one set of
// sentinels with errors.Is.
var (
	ErrInvalidReadingRange      = pkgerrors.New(pkgerrors.CodeValidation, "opening and closing must be non-negative decimals with closing >= opening")
	ErrUnknownOrInactiveNozzle  = pkgerrors.New(pkgerrors.CodeValidation, "nozzle does not exist or is not active")
	ErrDuplicateReading         = pkgerrors.New(pkgerrors.CodeConflict, "a reading already exists for this nozzle and date")
	ErrReadingNotFound          = pkgerrors.New(pkgerrors.CodeNotFound, "meter reading not found")
	ErrInvalidStateTransition   = pkgerrors.New(pkgerrors.CodeStateConflict, "reading is no longer pending")
	ErrVerificationFailed       = pkgerrors.New(pkgerrors.CodeDependency, "verification failed; no changes were applied")
	ErrBackdatingReasonRequired = backdating.ErrBackdatingReasonRequired
)
