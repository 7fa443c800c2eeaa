package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sajith213/fuelstation-backend/api/responses"
	"github.com/sajith213/fuelstation-backend/api/validators"
	"github.com/sajith213/fuelstation-backend/internal/pumps"
	"github.com/sajith213/fuelstation-backend/internal/tanks"
	"github.com/sajith213/fuelstation-backend/pkg/enums"
	pkgerrors "github.com/sajith213/fuelstation-backend/pkg/errors"
	"github.com/sajith213/fuelstation-backend/pkg/logger"
)

type createFuelTypeRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

type createTankRequest struct {
	Name          string `json:"name" validate:"required,max=128"`
	FuelTypeID    string `json:"fuel_type_id" validate:"required,uuid"`
	Capacity      string `json:"capacity" validate:"required,meter_value"`
	InitialVolume string `json:"initial_volume" validate:"omitempty,meter_value"`
}

type createPumpRequest struct {
	Name   string `json:"name" validate:"required,max=128"`
	TankID string `json:"tank_id" validate:"required,uuid"`
}

type createNozzleRequest struct {
	PumpID       string `json:"pump_id" validate:"required,uuid"`
	NozzleNumber int    `json:"nozzle_number" validate:"required,min=1"`
	FuelTypeID   string `json:"fuel_type_id" validate:"omitempty,uuid"`
}

type updateNozzleStatusRequest struct {
	Status string `json:"status" validate:"required,nozzle_status"`
}

// AdminCreateFuelType registers a fuel grade.
func AdminCreateFuelType(svc tanks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tank service unavailable"))
			return
		}

		var payload createFuelTypeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fuelType, err := svc.CreateFuelType(r.Context(), payload.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, fuelTypeDTO{ID: fuelType.ID, Name: fuelType.Name, CreatedAt: fuelType.CreatedAt})
	}
}

// AdminCreateTank registers a storage tank with its capacity and opening stock.
func AdminCreateTank(svc tanks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tank service unavailable"))
			return
		}

		var payload createTankRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tank, err := svc.CreateTank(r.Context(), tanks.CreateTankInput{
			Name:          payload.Name,
			FuelTypeID:    uuid.MustParse(payload.FuelTypeID),
			Capacity:      payload.Capacity,
			InitialVolume: payload.InitialVolume,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newTankDTO(tank))
	}
}

// AdminCreatePump registers a dispenser fed by one tank.
func AdminCreatePump(svc pumps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pump service unavailable"))
			return
		}

		var payload createPumpRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pump, err := svc.CreatePump(r.Context(), pumps.CreatePumpInput{
			Name:   payload.Name,
			TankID: uuid.MustParse(payload.TankID),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, pumpDTO{ID: pump.ID, Name: pump.Name, TankID: pump.TankID, CreatedAt: pump.CreatedAt})
	}
}

// AdminCreateNozzle adds a nozzle to a pump.
func AdminCreateNozzle(svc pumps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pump service unavailable"))
			return
		}

		var payload createNozzleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := pumps.CreateNozzleInput{
			PumpID:       uuid.MustParse(payload.PumpID),
			NozzleNumber: payload.NozzleNumber,
		}
		if strings.TrimSpace(payload.FuelTypeID) != "" {
			input.FuelTypeID = uuid.MustParse(payload.FuelTypeID)
		}

		nozzle, err := svc.CreateNozzle(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newNozzleDTO(nozzle))
	}
}

// AdminUpdateNozzleStatus activates, deactivates or parks a nozzle for maintenance.
func AdminUpdateNozzleStatus(svc pumps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pump service unavailable"))
			return
		}

		nozzleID, err := uuidParam(r, "nozzleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateNozzleStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseNozzleStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		nozzle, err := svc.UpdateNozzleStatus(r.Context(), nozzleID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newNozzleDTO(nozzle))
	}
}

// AdminDeleteNozzle removes a nozzle that has no readings.
func AdminDeleteNozzle(svc pumps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pump service unavailable"))
			return
		}

		nozzleID, err := uuidParam(r, "nozzleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteNozzle(r.Context(), nozzleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// AdminDeletePump removes a pump whose nozzles have no readings.
func AdminDeletePump(svc pumps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pump service unavailable"))
			return
		}

		pumpID, err := uuidParam(r, "pumpId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeletePump(r.Context(), pumpID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
