package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sajith213/fuelstation-backend/api/responses"
	"github.com/sajith213/fuelstation-backend/api/validators"
	"github.com/sajith213/fuelstation-backend/internal/verification"
	pkgerrors "github.com/sajith213/fuelstation-backend/pkg/errors"
	"github.com/sajith213/fuelstation-backend/pkg/logger"
)

type disputeReadingRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

type bulkVerifyRequest struct {
	ReadingIDs []string `json:"reading_ids" validate:"required,min=1,dive,uuid"`
}

// VerifyReading verifies a pending reading and applies its dispensed volume to the tank.
func VerifyReading(svc verification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verification service unavailable"))
			return
		}

		operatorID, err := operatorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		readingID, err := uuidParam(r, "readingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Verify(r.Context(), verification.VerifyInput{ReadingID: readingID, VerifiedBy: operatorID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newVerifyResultDTO(result))
	}
}

// DisputeReading marks a pending reading as disputed without touching inventory.
func DisputeReading(svc verification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verification service unavailable"))
			return
		}

		operatorID, err := operatorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		readingID, err := uuidParam(r, "readingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload disputeReadingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reading, err := svc.Dispute(r.Context(), verification.DisputeInput{
			ReadingID:  readingID,
			VerifiedBy: operatorID,
			Reason:     validators.CleanText(payload.Reason, 1000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newReadingDTO(reading))
	}
}

// BulkVerifyReadings verifies many readings, each in its own transaction, and
// reports per-reading outcomes.
func BulkVerifyReadings(svc verification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verification service unavailable"))
			return
		}

		operatorID, err := operatorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload bulkVerifyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ids := make([]uuid.UUID, 0, len(payload.ReadingIDs))
		for _, raw := range payload.ReadingIDs {
			ids = append(ids, uuid.MustParse(raw))
		}

		result, err := svc.BulkVerify(r.Context(), verification.BulkVerifyInput{ReadingIDs: ids, VerifiedBy: operatorID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if failErr := result.Err(); failErr != nil && logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"succeeded": len(result.Succeeded),
				"failed":    len(result.Failed),
			})
			logg.Warn(ctx, "bulk verify completed with failures: "+failErr.Error())
		}

		responses.WriteSuccess(w, result)
	}
}
