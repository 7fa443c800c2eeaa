package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/sajith213/fuelstation-backend/api/responses"
	"github.com/sajith213/fuelstation-backend/api/validators"
	"github.com/sajith213/fuelstation-backend/internal/tanks"
	"github.com/sajith213/fuelstation-backend/pkg/db/models"
	pkgerrors "github.com/sajith213/fuelstation-backend/pkg/errors"
	"github.com/sajith213/fuelstation-backend/pkg/logger"
	"github.com/sajith213/fuelstation-backend/pkg/pagination"
)

// GetTank returns a tank with its current volume.
func GetTank(svc tanks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tank service unavailable"))
			return
		}

		tankID, err := uuidParam(r, "tankId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tank, err := svc.GetTank(r.Context(), tankID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newTankDTO(tank))
	}
}

// ListTanks returns every registered tank.
func ListTanks(svc tanks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tank service unavailable"))
			return
		}

		rows, err := svc.ListTanks(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]tankDTO, 0, len(rows))
		for i := range rows {
			out = append(out, newTankDTO(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

type tankHistoryReader interface {
	TankHistory(ctx context.Context, tankID uuid.UUID, params pagination.Params) (pagination.Page[models.InventoryLedgerEntry], error)
}

// TankLedger pages through a tank's inventory ledger, newest first.
func TankLedger(svc tankHistoryReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		tankID, err := uuidParam(r, "tankId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.TankHistory(r.Context(), tankID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := pagination.Page[ledgerEntryDTO]{Items: make([]ledgerEntryDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
		for i := range page.Items {
			out.Items = append(out.Items, newLedgerEntryDTO(&page.Items[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

type readingLedgerReader interface {
	EntriesForReading(ctx context.Context, readingID uuid.UUID) ([]models.InventoryLedgerEntry, error)
}

// ReadingLedger lists the ledger entries a verified reading produced.
func ReadingLedger(svc readingLedgerReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		readingID, err := uuidParam(r, "readingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.EntriesForReading(r.Context(), readingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]ledgerEntryDTO, 0, len(entries))
		for i := range entries {
			out = append(out, newLedgerEntryDTO(&entries[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
