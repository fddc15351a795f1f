package controllers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/angelmondragon/vendorkyc-backend/api/responses"
	"github.com/angelmondragon/vendorkyc-backend/api/validators"
	"github.com/angelmondragon/vendorkyc-backend/internal/documents"
	"github.com/angelmondragon/vendorkyc-backend/internal/vendors"
	pkgerrors "github.com/angelmondragon/vendorkyc-backend/pkg/errors"
	"github.com/angelmondragon/vendorkyc-backend/pkg/logger"
	"github.com/angelmondragon/vendorkyc-backend/pkg/types"
)

// multipartOverhead leaves room for form boundaries and the documentType field.
const multipartOverhead = 64 << 10

type vendorRegisterRequest struct {
	BusinessName     string        `json:"business_name" validate:"required,notblank,max=200"`
	BusinessCategory string        `json:"business_category" validate:"required"`
	ContactPerson    string        `json:"contact_person" validate:"required,notblank,max=120"`
	Email            string        `json:"email" validate:"required,email,max=254"`
	Phone            string        `json:"phone" validate:"required,notblank,max=32"`
	Address          types.Address `json:"address"`
}

func (r vendorRegisterRequest) toInput() vendors.RegisterInput {
	return vendors.RegisterInput{
		BusinessName:     r.BusinessName,
		BusinessCategory: r.BusinessCategory,
		ContactPerson:    r.ContactPerson,
		Email:            r.Email,
		Phone:            r.Phone,
		Address:          r.Address,
	}
}

// Only these fields can be changed by the owner; anything else is rejected by the decoder.
type vendorProfileRequest struct {
	BusinessName     *string        `json:"business_name,omitempty" validate:"omitempty,max=200"`
	BusinessCategory *string        `json:"business_category,omitempty"`
	ContactPerson    *string        `json:"contact_person,omitempty" validate:"omitempty,max=120"`
	Phone            *string        `json:"phone,omitempty" validate:"omitempty,max=32"`
	Address          *types.Address `json:"address,omitempty"`
}

// VendorRegister creates a pending application. The endpoint is public.
func VendorRegister(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body vendorRegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		app, err := svc.CreateApplication(r.Context(), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, app)
	}
}

// VendorProfile returns the application claimed by the caller.
func VendorProfile(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		app, err := svc.GetForOwner(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, app)
	}
}

func VendorUpdateProfile(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body vendorProfileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		app, err := svc.UpdateProfile(r.Context(), vendorID, userID, vendors.UpdateProfileInput{
			BusinessName:     body.BusinessName,
			BusinessCategory: body.BusinessCategory,
			ContactPerson:    body.ContactPerson,
			Phone:            body.Phone,
			Address:          body.Address,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, app)
	}
}

// VendorDocumentUpload accepts a multipart form with `file` and `documentType`.
func VendorDocumentUpload(svc documents.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
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

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "file exceeds "+strconv.FormatInt(maxBytes>>20, 10)+" MB"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file is required"))
			return
		}
		defer file.Close()

		app, err := svc.Upload(r.Context(), vendorID, userID, documents.UploadInput{
			DocumentType: r.FormValue("documentType"),
			FileName:     header.Filename,
			Body:         file,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, app)
	}
}

func VendorDocumentDelete(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
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
		documentID, err := documentIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Remove(r.Context(), vendorID, userID, documentID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// VendorDocumentFile streams a stored document to its owner or an admin.
func VendorDocumentFile(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
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
		documentID, err := documentIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		download, err := svc.Download(r.Context(), vendorID, userID, documentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer download.Body.Close()

		doc := download.Document
		w.Header().Set("Content-Type", doc.ContentType)
		w.Header().Set("Content-Length", strconv.FormatInt(doc.SizeBytes, 10))
		w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": doc.FileName}))
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, download.Body); err != nil && logg != nil {
			logg.Warn(logg.WithField(r.Context(), "document_id", documentID.String()), "document.stream_interrupted")
		}
	}
}
