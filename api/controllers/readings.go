package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sajith213/fuelstation-backend/api/responses"
	"github.com/sajith213/fuelstation-backend/api/validators"
	"github.com/sajith213/fuelstation-backend/internal/readings"
	"github.com/sajith213/fuelstation-backend/pkg/enums"
	pkgerrors "github.com/sajith213/fuelstation-backend/pkg/errors"
	"github.com/sajith213/fuelstation-backend/pkg/logger"
)

type recordReadingRequest struct {
	NozzleID       string `json:"nozzle_id" validate:"required,uuid"`
	ReadingDate    string `json:"reading_date" validate:"required,calendar_date"`
	OpeningValue   string `json:"opening_value" validate:"required,meter_value"`
	ClosingValue   string `json:"closing_value" validate:"required,meter_value"`
	Notes          string `json:"notes" validate:"max=2000"`
	BackdateReason string `json:"backdate_reason" validate:"max=1000"`
}

type editReadingRequest struct {
	OpeningValue   string `json:"opening_value" validate:"required,meter_value"`
	ClosingValue   string `json:"closing_value" validate:"required,meter_value"`
	Notes          string `json:"notes" validate:"max=2000"`
	BackdateReason string `json:"backdate_reason" validate:"max=1000"`
}

// RecordReading stores a new pending reading for the authenticated operator.
func RecordReading(svc readings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "readings service unavailable"))
			return
		}

		operatorID, err := operatorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload recordReadingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		readingDate, err := validators.ParseDate("reading_date", payload.ReadingDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reading, err := svc.RecordReading(r.Context(), readings.RecordReadingInput{
			NozzleID:       uuid.MustParse(payload.NozzleID),
			ReadingDate:    readingDate,
			Opening:        payload.OpeningValue,
			Closing:        payload.ClosingValue,
			RecordedBy:     operatorID,
			Notes:          validators.CleanText(payload.Notes, 2000),
			BackdateReason: validators.CleanText(payload.BackdateReason, 1000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newReadingDTO(reading))
	}
}

// EditReading replaces the values of a pending reading.
func EditReading(svc readings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "readings service unavailable"))
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

		var payload editReadingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reading, err := svc.EditReading(r.Context(), readings.EditReadingInput{
			ReadingID:      readingID,
			Opening:        payload.OpeningValue,
			Closing:        payload.ClosingValue,
			RecordedBy:     operatorID,
			Notes:          validators.CleanText(payload.Notes, 2000),
			BackdateReason: validators.CleanText(payload.BackdateReason, 1000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newReadingDTO(reading))
	}
}

// GetReading returns one reading by id.
func GetReading(svc readings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "readings service unavailable"))
			return
		}

		readingID, err := uuidParam(r, "readingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reading, err := svc.GetReading(r.Context(), readingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newReadingDTO(reading))
	}
}

// ListReadings pages through readings filtered by nozzle, status and date range.
func ListReadings(svc readings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "readings service unavailable"))
			return
		}

		filters, err := parseReadingFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListReadings(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newReadingPageDTO(page))
	}
}

func parseReadingFilters(r *http.Request) (readings.ReadingFilters, error) {
	var (
		filters readings.ReadingFilters
		err     error
	)

	if filters.NozzleID, err = validators.ParseQueryUUID(r, "nozzle_id"); err != nil {
		return filters, err
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseReadingStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").WithDetails(map[string]any{"field": "status"})
		}
		filters.Status = &status
	}

	if filters.From, err = validators.ParseQueryDate(r, "from"); err != nil {
		return filters, err
	}
	if filters.To, err = validators.ParseQueryDate(r, "to"); err != nil {
		return filters, err
	}

	if filters.From != nil && filters.To != nil && filters.To.Before(*filters.From) {
		return filters, pkgerrors.New(pkgerrors.CodeValidation, "to must not be before from").WithDetails(map[string]any{"field": "to"})
	}
	return filters, nil
}
