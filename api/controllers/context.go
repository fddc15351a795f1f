package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/vendorkyc-backend/api/middleware"
	pkgerrors "github.com/angelmondragon/vendorkyc-backend/pkg/errors"
)

func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func vendorIDParam(r *http.Request) (string, error) {
	vendorID := strings.TrimSpace(chi.URLParam(r, "vendorId"))
	if vendorID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}
	return vendorID, nil
}

func documentIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "documentId")))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid document id")
	}
	return id, nil
}
