package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/vendorkyc-backend/internal/vendors"
	"github.com/angelmondragon/vendorkyc-backend/pkg/db/models"
	"github.com/angelmondragon/vendorkyc-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorkyc-backend/pkg/errors"
	"github.com/angelmondragon/vendorkyc-backend/pkg/logger"
	"github.com/angelmondragon/vendorkyc-backend/pkg/storage"
)

type vendorService interface {
	GetForOwner(ctx context.Context, userID uuid.UUID) (*vendors.ApplicationDTO, error)
	AddDocument(ctx context.Context, vendorID string, actorID uuid.UUID, input vendors.AddDocumentInput) (*vendors.ApplicationDTO, error)
	RemoveDocument(ctx context.Context, vendorID string, actorID, documentID uuid.UUID) (*models.VendorDocument, error)
	GetDocument(ctx context.Context, vendorID string, actorID, documentID uuid.UUID) (*models.VendorDocument, error)
}

// Service moves document bytes between the HTTP layer and the object store and
// records them on the vendor application.
type Service interface {
	Upload(ctx context.Context, vendorID string, actorID uuid.UUID, input UploadInput) (*vendors.ApplicationDTO, error)
	Download(ctx context.Context, vendorID string, actorID, documentID uuid.UUID) (*Download, error)
	Remove(ctx context.Context, vendorID string, actorID, documentID uuid.UUID) error
}

// UploadInput is one multipart file part.
type UploadInput struct {
	DocumentType string
	FileName     string
	Body         io.Reader
}

// Download carries the document metadata and an open reader the caller must close.
type Download struct {
	Document *models.VendorDocument
	Body     io.ReadCloser
}

type service struct {
	vendors  vendorService
	store    storage.ObjectStore
	maxBytes int64
	logg     *logger.Logger
}

func NewService(vendorSvc vendorService, store storage.ObjectStore, maxBytes int64, logg *logger.Logger) (Service, error) {
	if vendorSvc == nil {
		return nil, fmt.Errorf("vendor service required")
	}
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{vendors: vendorSvc, store: store, maxBytes: maxBytes, logg: logg}, nil
}

func (s *service) Upload(ctx context.Context, vendorID string, actorID uuid.UUID, input UploadInput) (*vendors.ApplicationDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	vendorID = strings.TrimSpace(vendorID)
	if _, err := vendors.ParseVendorID(vendorID); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor application not found")
	}
	docType, err := enums.ParseDocumentType(input.DocumentType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid document type")
	}
	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}
	if input.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is required")
	}

	owned, err := s.vendors.GetForOwner(ctx, actorID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor application belongs to another user")
		}
		return nil, err
	}
	if owned.VendorID != vendorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor application belongs to another user")
	}

	data, err := io.ReadAll(io.LimitReader(input.Body, s.maxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file exceeds %d MB", s.maxBytes>>20))
	}
	contentType, ok := detectContentType(data)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file must be "+allowedDescription).
			WithDetails(map[string]any{"detected": contentType})
	}

	docID := uuid.New()
	key := storage.ObjectKey(vendorID, docID, fileName)
	if err := s.store.Put(ctx, key, contentType, bytes.NewReader(data)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store document")
	}

	app, err := s.vendors.AddDocument(ctx, vendorID, actorID, vendors.AddDocumentInput{
		DocumentID:   docID,
		DocumentType: docType,
		FileName:     fileName,
		StorageKey:   key,
		ContentType:  contentType,
		SizeBytes:    int64(len(data)),
	})
	if err != nil {
		s.discard(ctx, key)
		return nil, err
	}
	return app, nil
}

func (s *service) Download(ctx context.Context, vendorID string, actorID, documentID uuid.UUID) (*Download, error) {
	doc, err := s.vendors.GetDocument(ctx, vendorID, actorID, documentID)
	if err != nil {
		return nil, err
	}
	body, err := s.store.Open(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "document file not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open document")
	}
	return &Download{Document: doc, Body: body}, nil
}

// Remove drops the document row first; the blob is deleted afterwards and a failure
// there only leaves an orphaned object.
func (s *service) Remove(ctx context.Context, vendorID string, actorID, documentID uuid.UUID) error {
	doc, err := s.vendors.RemoveDocument(ctx, vendorID, actorID, documentID)
	if err != nil {
		return err
	}
	s.discard(ctx, doc.StorageKey)
	return nil
}

func (s *service) discard(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"storage_key": key,
			"error":       err.Error(),
		}), "document blob cleanup failed")
	}
}
