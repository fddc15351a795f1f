package controllers

import (
	"net/http"

	"github.com/angelmondragon/vendorkyc-backend/api/responses"
	"github.com/angelmondragon/vendorkyc-backend/api/validators"
	"github.com/angelmondragon/vendorkyc-backend/internal/vendors"
	"github.com/angelmondragon/vendorkyc-backend/pkg/logger"
	"github.com/angelmondragon/vendorkyc-backend/pkg/pagination"
)

type setStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason" validate:"max=1000"`
}

// AdminVendorList pages through applications, newest submission first.
func AdminVendorList(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := validators.QueryFrom(r)
		limit, err := query.Int("limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), vendors.ListParams{
			Status: query.String("status", 32),
			Search: query.String("search", 200),
			Params: pagination.Params{
				Limit:  limit,
				Cursor: query.String("cursor", 512),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AdminVendorGet(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := vendorIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		app, err := svc.GetByVendorID(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, app)
	}
}

// AdminVendorSetStatus records a review decision.
func AdminVendorSetStatus(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vendorID, err := vendorIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		app, err := svc.SetStatus(r.Context(), vendorID, userID, vendors.SetStatusInput{
			Status: body.Status,
			Reason: body.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, app)
	}
}

func AdminVendorStats(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
