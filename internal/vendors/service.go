package vendors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/angelmondragon/vendorkyc-backend/pkg/db"
	"github.com/angelmondragon/vendorkyc-backend/pkg/db/models"
	"github.com/angelmondragon/vendorkyc-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorkyc-backend/pkg/errors"
	"github.com/angelmondragon/vendorkyc-backend/pkg/logger"
	"github.com/angelmondragon/vendorkyc-backend/pkg/outbox"
	"github.com/angelmondragon/vendorkyc-backend/pkg/outbox/payloads"
	pkgpagination "github.com/angelmondragon/vendorkyc-backend/pkg/pagination"
	"github.com/angelmondragon/vendorkyc-backend/pkg/types"
)

// MutationMaxAttempts bounds the optimistic retry loop for per-application writes.
const MutationMaxAttempts = 5

var (
	errVersionConflict   = errors.New("vendor application version changed")
	errVendorIDCollision = errors.New("vendor id already allocated")
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type vendorMetrics interface {
	IncRegistration()
	IncTransition(from, to string)
	IncConflict(operation string)
}

// Service owns vendor application creation, ID assignment and the status lifecycle.
type Service interface {
	CreateApplication(ctx context.Context, input RegisterInput) (*ApplicationDTO, error)
	AddDocument(ctx context.Context, vendorID string, actorID uuid.UUID, input AddDocumentInput) (*ApplicationDTO, error)
	RemoveDocument(ctx context.Context, vendorID string, actorID, documentID uuid.UUID) (*models.VendorDocument, error)
	SetStatus(ctx context.Context, vendorID string, actorID uuid.UUID, input SetStatusInput) (*ApplicationDTO, error)
	UpdateProfile(ctx context.Context, vendorID string, actorID uuid.UUID, input UpdateProfileInput) (*ApplicationDTO, error)
	GetByVendorID(ctx context.Context, vendorID string) (*ApplicationDTO, error)
	GetForOwner(ctx context.Context, userID uuid.UUID) (*ApplicationDTO, error)
	GetDocument(ctx context.Context, vendorID string, actorID, documentID uuid.UUID) (*models.VendorDocument, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Stats(ctx context.Context) (*Stats, error)
}

type ServiceParams struct {
	TxRunner   txRunner
	Repository *Repository
	Outbox     outbox.Emitter
	Metrics    vendorMetrics
	Logger     *logger.Logger
	Clock      func() time.Time
}

type service struct {
	tx      txRunner
	repo    *Repository
	outbox  outbox.Emitter
	metrics vendorMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("vendor repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Metrics == nil {
		return nil, fmt.Errorf("vendor metrics required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	clock := params.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		tx:      params.TxRunner,
		repo:    params.Repository,
		outbox:  params.Outbox,
		metrics: params.Metrics,
		logg:    logg,
		now:     clock,
	}, nil
}

func (s *service) CreateApplication(ctx context.Context, input RegisterInput) (*ApplicationDTO, error) {
	draft, err := normalizeRegistration(input)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= VendorIDMaxAttempts; attempt++ {
		var created *models.VendorApplication
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			exists, err := repo.EmailExists(ctx, draft.Email)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
			}
			if exists {
				return pkgerrors.New(pkgerrors.CodeDuplicateEmail, "email already registered")
			}

			n, err := repo.NextVendorNumber(ctx)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate vendor id")
			}

			now := s.now()
			app := draft
			app.ID = uuid.New()
			app.VendorID = FormatVendorID(n)
			app.Status = enums.VendorStatusPending
			app.SubmittedAt = now
			app.Version = 1
			if err := repo.Create(ctx, &app); err != nil {
				switch {
				case dbpkg.IsUniqueViolation(err, "email"):
					return pkgerrors.New(pkgerrors.CodeDuplicateEmail, "email already registered")
				case dbpkg.IsUniqueViolation(err, "vendor_id"):
					return errVendorIDCollision
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vendor application")
			}

			comment := SubmittedComment
			if err := repo.AppendHistory(ctx, &models.VendorStatusHistory{
				ID:            uuid.New(),
				ApplicationID: app.ID,
				Seq:           1,
				Status:        enums.VendorStatusPending,
				ChangedAt:     now,
				Comment:       &comment,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed status history")
			}

			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventVendorRegistered,
				AggregateType: enums.AggregateVendorApplication,
				AggregateID:   app.ID,
				OccurredAt:    now,
				Data: payloads.VendorRegisteredEvent{
					ApplicationID:    app.ID,
					VendorID:         app.VendorID,
					BusinessName:     app.BusinessName,
					BusinessCategory: app.BusinessCategory,
					Email:            app.Email,
					SubmittedAt:      now,
				},
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit vendor registered")
			}

			created, err = repo.LoadFull(ctx, app.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload vendor application")
			}
			return nil
		})
		if errors.Is(err, errVendorIDCollision) {
			s.logg.Warn(s.logg.WithField(ctx, "attempt", attempt), "vendor id collision, retrying")
			continue
		}
		if err != nil {
			return nil, asDependency(err, "create vendor application")
		}

		s.metrics.IncRegistration()
		logCtx := s.logg.WithVendorID(ctx, created.VendorID)
		s.logg.Info(logCtx, "vendor.registered")
		return ToApplicationDTO(created), nil
	}

	s.metrics.IncConflict("create_application")
	return nil, pkgerrors.New(pkgerrors.CodeConcurrentUpdate, "could not allocate a vendor id")
}

func (s *service) AddDocument(ctx context.Context, vendorID string, actorID uuid.UUID, input AddDocumentInput) (*ApplicationDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := validateDocumentInput(&input); err != nil {
		return nil, err
	}

	app, err := s.mutate(ctx, "add_document", vendorID, func(ctx context.Context, repo *Repository, app *models.VendorApplication, now time.Time) (*mutation, error) {
		if err := requireOwner(app, actorID); err != nil {
			return nil, err
		}
		m := &mutation{updates: map[string]any{}}
		if app.Status == enums.VendorStatusRejected {
			t, err := Apply(app.Status, Event{Kind: EventResubmit})
			if err != nil {
				return nil, err
			}
			m.updates = transitionUpdates(t, actorID, now)
			m.transition = &t
		}
		m.after = func(repo *Repository) error {
			doc := &models.VendorDocument{
				ID:            input.DocumentID,
				ApplicationID: app.ID,
				DocumentType:  input.DocumentType,
				FileName:      input.FileName,
				StorageKey:    input.StorageKey,
				ContentType:   input.ContentType,
				SizeBytes:     input.SizeBytes,
				UploadedBy:    actorID,
				UploadedAt:    now,
			}
			if err := repo.InsertDocument(ctx, doc); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert document")
			}
			if err := s.emit(ctx, repo, enums.EventVendorDocumentAdded, app.ID, actorID, enums.UserRoleVendor, now, payloads.VendorDocumentAddedEvent{
				ApplicationID: app.ID,
				VendorID:      app.VendorID,
				DocumentID:    doc.ID,
				DocumentType:  doc.DocumentType,
				FileName:      doc.FileName,
				SizeBytes:     doc.SizeBytes,
			}); err != nil {
				return err
			}
			if m.transition != nil {
				return s.recordTransition(ctx, repo, app, *m.transition, actorID, enums.UserRoleVendor, now)
			}
			return nil
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return ToApplicationDTO(app), nil
}

func (s *service) RemoveDocument(ctx context.Context, vendorID string, actorID, documentID uuid.UUID) (*models.VendorDocument, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if documentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "document id is required")
	}

	var removed *models.VendorDocument
	_, err := s.mutate(ctx, "remove_document", vendorID, func(ctx context.Context, repo *Repository, app *models.VendorApplication, now time.Time) (*mutation, error) {
		if err := requireOwner(app, actorID); err != nil {
			return nil, err
		}
		doc, err := repo.FindDocument(ctx, app.ID, documentID)
		if err != nil {
			if dbpkg.IsNotFound(err) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup document")
		}
		removed = doc
		return &mutation{
			updates: map[string]any{},
			after: func(repo *Repository) error {
				if err := repo.DeleteDocument(ctx, doc.ID); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete document")
				}
				return s.emit(ctx, repo, enums.EventVendorDocumentRemoved, app.ID, actorID, enums.UserRoleVendor, now, payloads.VendorDocumentRemovedEvent{
					ApplicationID: app.ID,
					VendorID:      app.VendorID,
					DocumentID:    doc.ID,
				})
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (s *service) SetStatus(ctx context.Context, vendorID string, actorID uuid.UUID, input SetStatusInput) (*ApplicationDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	event, err := statusEvent(input)
	if err != nil {
		return nil, err
	}

	app, err := s.mutate(ctx, "set_status", vendorID, func(ctx context.Context, repo *Repository, app *models.VendorApplication, now time.Time) (*mutation, error) {
		if err := requireReviewer(ctx, repo, actorID); err != nil {
			return nil, err
		}
		t, err := Apply(app.Status, event)
		if err != nil {
			return nil, err
		}
		return &mutation{
			updates:    transitionUpdates(t, actorID, now),
			transition: &t,
			after: func(repo *Repository) error {
				return s.recordTransition(ctx, repo, app, t, actorID, enums.UserRoleAdmin, now)
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return ToApplicationDTO(app), nil
}

func (s *service) UpdateProfile(ctx context.Context, vendorID string, actorID uuid.UUID, input UpdateProfileInput) (*ApplicationDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	updates, err := profileUpdates(input)
	if err != nil {
		return nil, err
	}

	app, err := s.mutate(ctx, "update_profile", vendorID, func(ctx context.Context, repo *Repository, app *models.VendorApplication, now time.Time) (*mutation, error) {
		if err := requireOwner(app, actorID); err != nil {
			return nil, err
		}
		return &mutation{updates: updates}, nil
	})
	if err != nil {
		return nil, err
	}
	return ToApplicationDTO(app), nil
}

func (s *service) GetByVendorID(ctx context.Context, vendorID string) (*ApplicationDTO, error) {
	app, err := s.repo.FindByVendorID(ctx, strings.TrimSpace(vendorID))
	if err != nil {
		return nil, lookupError(err)
	}
	full, err := s.repo.LoadFull(ctx, app.ID)
	if err != nil {
		return nil, lookupError(err)
	}
	return ToApplicationDTO(full), nil
}

func (s *service) GetForOwner(ctx context.Context, userID uuid.UUID) (*ApplicationDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	app, err := s.repo.FindByOwner(ctx, userID)
	if err != nil {
		return nil, lookupError(err)
	}
	full, err := s.repo.LoadFull(ctx, app.ID)
	if err != nil {
		return nil, lookupError(err)
	}
	return ToApplicationDTO(full), nil
}

// GetDocument returns a document to its owner or to an admin.
func (s *service) GetDocument(ctx context.Context, vendorID string, actorID, documentID uuid.UUID) (*models.VendorDocument, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	app, err := s.repo.FindByVendorID(ctx, strings.TrimSpace(vendorID))
	if err != nil {
		return nil, lookupError(err)
	}
	if requireOwner(app, actorID) != nil {
		if err := requireReviewer(ctx, s.repo, actorID); err != nil {
			return nil, err
		}
	}
	doc, err := s.repo.FindDocument(ctx, app.ID, documentID)
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup document")
	}
	return doc, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := listQuery{
		search: strings.TrimSpace(params.Search),
		limit:  pkgpagination.LimitWithBuffer(params.Limit),
	}
	if raw := strings.TrimSpace(params.Status); raw != "" {
		status, err := enums.ParseVendorStatus(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		query.status = status
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendor applications")
	}

	nextCursor := ""
	if len(rows) > limit {
		last := rows[limit-1]
		nextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{At: last.SubmittedAt, ID: last.ID})
		rows = rows[:limit]
	}

	items := make([]ListItem, len(rows))
	for i, row := range rows {
		items[i] = toListItem(row)
	}
	return &ListResult{Items: items, Cursor: nextCursor}, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count vendor applications")
	}
	recent, err := s.repo.List(ctx, listQuery{limit: recentApplicationsLimit})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recent applications")
	}
	stats := &Stats{
		Pending:  counts[enums.VendorStatusPending],
		Approved: counts[enums.VendorStatusApproved],
		Rejected: counts[enums.VendorStatusRejected],
		Recent:   make([]ListItem, len(recent)),
	}
	stats.Total = stats.Pending + stats.Approved + stats.Rejected
	for i, row := range recent {
		stats.Recent[i] = toListItem(row)
	}
	return stats, nil
}

// mutation is what a per-application write stages: the column updates applied under
// the version check, and the follow-up rows written once the check passed.
type mutation struct {
	updates    map[string]any
	after      func(repo *Repository) error
	transition *Transition
}

type mutateFunc func(ctx context.Context, repo *Repository, app *models.VendorApplication, now time.Time) (*mutation, error)

// mutate re-reads the application inside a transaction, lets fn decide the change and
// commits it with a compare-and-swap on version. Losing the race retries from a fresh
// read up to MutationMaxAttempts.
func (s *service) mutate(ctx context.Context, operation, vendorID string, fn mutateFunc) (*models.VendorApplication, error) {
	vendorID = strings.TrimSpace(vendorID)
	if vendorID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}

	for attempt := 1; attempt <= MutationMaxAttempts; attempt++ {
		var (
			result  *models.VendorApplication
			applied *Transition
		)
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			app, err := repo.FindByVendorID(ctx, vendorID)
			if err != nil {
				return lookupError(err)
			}

			now := s.now()
			m, err := fn(ctx, repo, app, now)
			if err != nil {
				return err
			}

			ok, err := repo.CompareAndUpdate(ctx, app.ID, app.Version, m.updates, now)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vendor application")
			}
			if !ok {
				return errVersionConflict
			}
			if m.after != nil {
				if err := m.after(repo); err != nil {
					if dbpkg.IsUniqueViolation(err, "seq") {
						return errVersionConflict
					}
					return err
				}
			}

			result, err = repo.LoadFull(ctx, app.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload vendor application")
			}
			applied = m.transition
			return nil
		})
		if errors.Is(err, errVersionConflict) {
			s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
				"vendor_id": vendorID,
				"operation": operation,
				"attempt":   attempt,
			}), "vendor application changed concurrently, retrying")
			continue
		}
		if err != nil {
			return nil, asDependency(err, operation)
		}

		if applied != nil {
			s.metrics.IncTransition(applied.From.String(), applied.To.String())
			msg := "vendor.status_changed"
			if applied.System {
				msg = "vendor.resubmitted"
			}
			s.logg.Info(s.logg.WithFields(s.logg.WithVendorID(ctx, vendorID), map[string]any{
				"from": applied.From,
				"to":   applied.To,
			}), msg)
		}
		return result, nil
	}

	s.metrics.IncConflict(operation)
	return nil, pkgerrors.New(pkgerrors.CodeConcurrentUpdate, "vendor application was modified concurrently")
}

func (s *service) recordTransition(ctx context.Context, repo *Repository, app *models.VendorApplication, t Transition, actorID uuid.UUID, role enums.UserRole, now time.Time) error {
	seq, err := repo.NextHistorySeq(ctx, app.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read history sequence")
	}
	comment := t.Comment
	changedBy := actorID
	if err := repo.AppendHistory(ctx, &models.VendorStatusHistory{
		ID:            uuid.New(),
		ApplicationID: app.ID,
		Seq:           seq,
		Status:        t.To,
		ChangedBy:     &changedBy,
		ChangedAt:     now,
		Comment:       &comment,
		System:        t.System,
	}); err != nil {
		if dbpkg.IsUniqueViolation(err, "seq") {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
	}
	return s.emit(ctx, repo, enums.EventVendorStatusChanged, app.ID, actorID, role, now, payloads.VendorStatusChangedEvent{
		ApplicationID:   app.ID,
		VendorID:        app.VendorID,
		FromStatus:      t.From,
		ToStatus:        t.To,
		RejectionReason: t.RejectionReason,
		Comment:         t.Comment,
		System:          t.System,
		ChangedAt:       now,
	})
}

func (s *service) emit(ctx context.Context, repo *Repository, eventType enums.OutboxEventType, aggregateID, actorID uuid.UUID, role enums.UserRole, now time.Time, data any) error {
	actor := actorID
	err := s.outbox.Emit(ctx, repo.DB(ctx), outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateVendorApplication,
		AggregateID:   aggregateID,
		Actor:         &outbox.ActorRef{UserID: &actor, Role: role},
		OccurredAt:    now,
		Data:          data,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit "+string(eventType))
	}
	return nil
}

func transitionUpdates(t Transition, actorID uuid.UUID, now time.Time) map[string]any {
	updates := map[string]any{"status": t.To}
	switch t.Review {
	case ReviewStamp:
		updates["reviewed_at"] = now
		updates["reviewed_by"] = actorID
	case ReviewClear:
		updates["reviewed_at"] = nil
		updates["reviewed_by"] = nil
	}
	if t.To == enums.VendorStatusRejected && t.RejectionReason != nil {
		updates["rejection_reason"] = *t.RejectionReason
	} else {
		updates["rejection_reason"] = nil
	}
	return updates
}

func requireOwner(app *models.VendorApplication, actorID uuid.UUID) error {
	if app.OwnerUserID == nil || *app.OwnerUserID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "vendor application belongs to another user")
	}
	return nil
}

func requireReviewer(ctx context.Context, repo *Repository, actorID uuid.UUID) error {
	user, err := repo.FindActor(ctx, actorID)
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "reviewer role required")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup actor")
	}
	if user.Role != enums.UserRoleAdmin || !user.IsActive {
		return pkgerrors.New(pkgerrors.CodeForbidden, "reviewer role required")
	}
	return nil
}

func statusEvent(input SetStatusInput) (Event, error) {
	status, err := enums.ParseVendorStatus(strings.TrimSpace(input.Status))
	if err != nil {
		return Event{}, pkgerrors.New(pkgerrors.CodeValidation, "status must be Approved or Rejected")
	}
	switch status {
	case enums.VendorStatusApproved:
		return Event{Kind: EventApprove}, nil
	case enums.VendorStatusRejected:
		reason := strings.TrimSpace(input.Reason)
		if reason == "" {
			return Event{}, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required")
		}
		return Event{Kind: EventReject, Reason: reason}, nil
	default:
		return Event{}, pkgerrors.New(pkgerrors.CodeValidation, "status must be Approved or Rejected")
	}
}

func normalizeRegistration(input RegisterInput) (models.VendorApplication, error) {
	app := models.VendorApplication{
		BusinessName:  strings.TrimSpace(input.BusinessName),
		ContactPerson: strings.TrimSpace(input.ContactPerson),
		Email:         strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:         strings.TrimSpace(input.Phone),
		Address:       input.Address.Normalized(),
	}
	switch {
	case app.BusinessName == "":
		return app, pkgerrors.New(pkgerrors.CodeValidation, "business name is required")
	case app.ContactPerson == "":
		return app, pkgerrors.New(pkgerrors.CodeValidation, "contact person is required")
	case app.Email == "" || !strings.Contains(app.Email, "@"):
		return app, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	case app.Phone == "":
		return app, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	category, err := enums.ParseBusinessCategory(strings.TrimSpace(input.BusinessCategory))
	if err != nil {
		return app, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid business category")
	}
	app.BusinessCategory = category
	return app, nil
}

func profileUpdates(input UpdateProfileInput) (map[string]any, error) {
	updates := map[string]any{}
	if input.BusinessName != nil {
		name := strings.TrimSpace(*input.BusinessName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "business name cannot be empty")
		}
		updates["business_name"] = name
	}
	if input.BusinessCategory != nil {
		category, err := enums.ParseBusinessCategory(strings.TrimSpace(*input.BusinessCategory))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid business category")
		}
		updates["business_category"] = category
	}
	if input.ContactPerson != nil {
		contact := strings.TrimSpace(*input.ContactPerson)
		if contact == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact person cannot be empty")
		}
		updates["contact_person"] = contact
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone cannot be empty")
		}
		updates["phone"] = phone
	}
	if input.Address != nil {
		for column, value := range addressColumns(input.Address.Normalized()) {
			updates[column] = value
		}
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no profile fields to update")
	}
	return updates, nil
}

func addressColumns(a types.Address) map[string]any {
	return map[string]any{
		"address_street":      a.Street,
		"address_city":        a.City,
		"address_state":       a.State,
		"address_postal_code": a.PostalCode,
		"address_country":     a.Country,
	}
}

func validateDocumentInput(input *AddDocumentInput) error {
	if input.DocumentID == uuid.Nil {
		input.DocumentID = uuid.New()
	}
	if !input.DocumentType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid document type")
	}
	input.FileName = strings.TrimSpace(input.FileName)
	if input.FileName == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}
	if strings.TrimSpace(input.StorageKey) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "file reference is required")
	}
	if input.SizeBytes <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	if strings.TrimSpace(input.ContentType) == "" {
		input.ContentType = "application/octet-stream"
	}
	return nil
}

func lookupError(err error) error {
	if dbpkg.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "vendor application not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup vendor application")
}

func asDependency(err error, operation string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, operation)
}
