package vendors

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/angelmondragon/vendorkyc-backend/pkg/db"
	"github.com/angelmondragon/vendorkyc-backend/pkg/db/dbtest"
	"github.com/angelmondragon/vendorkyc-backend/pkg/db/models"
	"github.com/angelmondragon/vendorkyc-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorkyc-backend/pkg/errors"
	"github.com/angelmondragon/vendorkyc-backend/pkg/logger"
	"github.com/angelmondragon/vendorkyc-backend/pkg/outbox"
	pkgpagination "github.com/angelmondragon/vendorkyc-backend/pkg/pagination"
	"github.com/angelmondragon/vendorkyc-backend/pkg/types"
)

type stubMetrics struct {
	mu            sync.Mutex
	registrations int
	transitions   []string
	conflicts     []string
}

func (m *stubMetrics) IncRegistration() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrations++
}

func (m *stubMetrics) IncTransition(from, to string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, from+"->"+to)
}

func (m *stubMetrics) IncConflict(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts = append(m.conflicts, operation)
}

type tickingClock struct {
	mu   sync.Mutex
	next time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(time.Second)
	return now
}

type fixture struct {
	conn    *gorm.DB
	repo    *Repository
	svc     Service
	metrics *stubMetrics
	admin   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	repository := NewRepository(conn)
	metrics := &stubMetrics{}
	clock := &tickingClock{next: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}

	svc, err := NewService(ServiceParams{
		TxRunner:   dbpkg.NewFromGorm(conn),
		Repository: repository,
		Outbox:     outbox.NewService(outbox.NewRepository(conn), logger.Nop()),
		Metrics:    metrics,
		Logger:     logger.Nop(),
		Clock:      clock.Now,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	f := &fixture{conn: conn, repo: repository, svc: svc, metrics: metrics}
	f.admin = f.createUser(t, "admin@vendorkyc.test", enums.UserRoleAdmin)
	return f
}

func (f *fixture) createUser(t *testing.T, email string, role enums.UserRole) uuid.UUID {
	t.Helper()
	user := models.User{ID: uuid.New(), Email: email, Name: email, Role: role, IsActive: true}
	if err := f.conn.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user.ID
}

func (f *fixture) register(t *testing.T, email string) *ApplicationDTO {
	t.Helper()
	app, err := f.svc.CreateApplication(context.Background(), registration(email))
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	return app
}

// registerOwned creates an application and binds it to a fresh vendor user.
func (f *fixture) registerOwned(t *testing.T, email string) (*ApplicationDTO, uuid.UUID) {
	t.Helper()
	app := f.register(t, email)
	owner := f.createUser(t, email, enums.UserRoleVendor)
	claimed, err := f.repo.ClaimOwner(context.Background(), app.ID, owner, time.Now().UTC())
	if err != nil || !claimed {
		t.Fatalf("claim owner: %v %v", claimed, err)
	}
	return app, owner
}

func registration(email string) RegisterInput {
	return RegisterInput{
		BusinessName:     "Acme Traders",
		BusinessCategory: "trading",
		ContactPerson:    "Ravi Kumar",
		Email:            email,
		Phone:            "+91 98765 43210",
		Address:          types.Address{Street: "12 MG Road", City: "Pune", State: "MH", PostalCode: "411001"},
	}
}

func document(name string) AddDocumentInput {
	id := uuid.New()
	return AddDocumentInput{
		DocumentID:   id,
		DocumentType: enums.DocumentTypeGST,
		FileName:     name,
		StorageKey:   "vendors/test/" + id.String() + "/" + name,
		ContentType:  "application/pdf",
		SizeBytes:    2048,
	}
}

func (f *fixture) outboxTypes(t *testing.T) []enums.OutboxEventType {
	t.Helper()
	var rows []models.OutboxEvent
	if err := f.conn.Order("created_at ASC").Find(&rows).Error; err != nil {
		t.Fatalf("load outbox: %v", err)
	}
	out := make([]enums.OutboxEventType, len(rows))
	for i, row := range rows {
		out[i] = row.EventType
	}
	return out
}

func countEvents(events []enums.OutboxEventType, want enums.OutboxEventType) int {
	n := 0
	for _, et := range events {
		if et == want {
			n++
		}
	}
	return n
}

func TestCreateApplicationAssignsSequentialIDs(t *testing.T) {
	f := newFixture(t)

	first := f.register(t, "Owner@Acme.test")
	second := f.register(t, "second@acme.test")

	if first.VendorID != "VEN-00001" || second.VendorID != "VEN-00002" {
		t.Fatalf("unexpected vendor ids %s %s", first.VendorID, second.VendorID)
	}
	if first.Status != enums.VendorStatusPending {
		t.Fatalf("expected pending, got %s", first.Status)
	}
	if first.Email != "owner@acme.test" {
		t.Fatalf("expected lowercased email, got %s", first.Email)
	}
	if first.BusinessCategory != enums.BusinessCategoryTrading {
		t.Fatalf("expected canonical category, got %s", first.BusinessCategory)
	}
	if first.Address.Country != types.DefaultCountry {
		t.Fatalf("expected default country, got %q", first.Address.Country)
	}
	if len(first.StatusHistory) != 1 {
		t.Fatalf("expected seeded history, got %d entries", len(first.StatusHistory))
	}
	seed := first.StatusHistory[0]
	if seed.Seq != 1 || seed.Status != enums.VendorStatusPending || seed.ChangedBy != nil {
		t.Fatalf("unexpected seed entry %+v", seed)
	}
	if seed.Comment == nil || *seed.Comment != SubmittedComment {
		t.Fatalf("unexpected seed comment %v", seed.Comment)
	}
	if f.metrics.registrations != 2 {
		t.Fatalf("expected 2 registrations, got %d", f.metrics.registrations)
	}
	if got := countEvents(f.outboxTypes(t), enums.EventVendorRegistered); got != 2 {
		t.Fatalf("expected 2 registered events, got %d", got)
	}
}

func TestCreateApplicationDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "dup@acme.test")

	_, err := f.svc.CreateApplication(context.Background(), registration("  DUP@acme.test "))
	if !pkgerrors.IsCode(err, pkgerrors.CodeDuplicateEmail) {
		t.Fatalf("expected duplicate email, got %v", err)
	}

	var count int64
	if err := f.conn.Model(&models.VendorApplication{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one application, got %d", count)
	}
}

func TestCreateApplicationValidation(t *testing.T) {
	f := newFixture(t)

	cases := map[string]func(in *RegisterInput){
		"business name": func(in *RegisterInput) { in.BusinessName = " " },
		"contact":       func(in *RegisterInput) { in.ContactPerson = "" },
		"email":         func(in *RegisterInput) { in.Email = "not-an-email" },
		"phone":         func(in *RegisterInput) { in.Phone = "" },
		"category":      func(in *RegisterInput) { in.BusinessCategory = "Mining" },
	}
	for name, mutate := range cases {
		in := registration(name + "@acme.test")
		mutate(&in)
		if _, err := f.svc.CreateApplication(context.Background(), in); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestCreateApplicationConcurrentIDsAreDistinct(t *testing.T) {
	f := newFixture(t)

	const n = 8
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids []string
	)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			app, err := f.svc.CreateApplication(context.Background(), registration(fmt.Sprintf("vendor%d@acme.test", i)))
			if err != nil {
				errs <- err
				return
			}
			mu.Lock()
			ids = append(ids, app.VendorID)
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent create: %v", err)
	}

	sort.Strings(ids)
	for i, id := range ids {
		if want := FormatVendorID(int64(i + 1)); id != want {
			t.Fatalf("expected %s at position %d, got %s (all: %v)", want, i, id, ids)
		}
	}
}

func TestRejectResubmitApproveLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app, owner := f.registerOwned(t, "lifecycle@acme.test")

	rejected, err := f.svc.SetStatus(ctx, app.VendorID, f.admin, SetStatusInput{Status: "rejected", Reason: "PAN card unreadable"})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != enums.VendorStatusRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	if rejected.RejectionReason == nil || *rejected.RejectionReason != "PAN card unreadable" {
		t.Fatalf("unexpected rejection reason %v", rejected.RejectionReason)
	}
	if rejected.ReviewedBy == nil || *rejected.ReviewedBy != f.admin || rejected.ReviewedAt == nil {
		t.Fatalf("expected review stamp, got %v %v", rejected.ReviewedBy, rejected.ReviewedAt)
	}
	if len(rejected.StatusHistory) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(rejected.StatusHistory))
	}

	resubmitted, err := f.svc.AddDocument(ctx, app.VendorID, owner, document("pan.pdf"))
	if err != nil {
		t.Fatalf("add document: %v", err)
	}
	if resubmitted.Status != enums.VendorStatusPending {
		t.Fatalf("expected pending after upload, got %s", resubmitted.Status)
	}
	if resubmitted.RejectionReason != nil {
		t.Fatalf("expected cleared rejection reason, got %q", *resubmitted.RejectionReason)
	}
	if resubmitted.ReviewedAt != nil || resubmitted.ReviewedBy != nil {
		t.Fatalf("expected cleared review stamp")
	}
	if len(resubmitted.Documents) != 1 || resubmitted.Documents[0].FileName != "pan.pdf" {
		t.Fatalf("unexpected documents %+v", resubmitted.Documents)
	}
	if len(resubmitted.StatusHistory) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(resubmitted.StatusHistory))
	}
	auto := resubmitted.StatusHistory[2]
	if !auto.System || auto.Status != enums.VendorStatusPending || auto.Comment == nil || *auto.Comment != ResubmittedComment {
		t.Fatalf("unexpected resubmission entry %+v", auto)
	}
	if auto.ChangedBy == nil || *auto.ChangedBy != owner {
		t.Fatalf("expected uploader on resubmission entry, got %v", auto.ChangedBy)
	}

	approved, err := f.svc.SetStatus(ctx, app.VendorID, f.admin, SetStatusInput{Status: "APPROVED"})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != enums.VendorStatusApproved || len(approved.StatusHistory) != 4 {
		t.Fatalf("unexpected approved state %s with %d entries", approved.Status, len(approved.StatusHistory))
	}
	for i, entry := range approved.StatusHistory {
		if entry.Seq != i+1 {
			t.Fatalf("expected seq %d, got %d", i+1, entry.Seq)
		}
	}

	want := []string{"Pending->Rejected", "Rejected->Pending", "Pending->Approved"}
	if fmt.Sprint(f.metrics.transitions) != fmt.Sprint(want) {
		t.Fatalf("unexpected transitions %v", f.metrics.transitions)
	}
	events := f.outboxTypes(t)
	if got := countEvents(events, enums.EventVendorStatusChanged); got != 3 {
		t.Fatalf("expected 3 status events, got %d", got)
	}
	if got := countEvents(events, enums.EventVendorDocumentAdded); got != 1 {
		t.Fatalf("expected 1 document event, got %d", got)
	}
}

func TestSetStatusRejectWithoutReasonLeavesRecord(t *testing.T) {
	f := newFixture(t)
	app := f.register(t, "noreason@acme.test")

	_, err := f.svc.SetStatus(context.Background(), app.VendorID, f.admin, SetStatusInput{Status: "Rejected", Reason: "  "})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	after, err := f.svc.GetByVendorID(context.Background(), app.VendorID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if after.Status != enums.VendorStatusPending || len(after.StatusHistory) != 1 || after.Version != app.Version {
		t.Fatalf("record changed: %+v", after)
	}
}

func TestSetStatusRevokeAndReapprove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.register(t, "revoke@acme.test")

	if _, err := f.svc.SetStatus(ctx, app.VendorID, f.admin, SetStatusInput{Status: "Approved"}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.svc.SetStatus(ctx, app.VendorID, f.admin, SetStatusInput{Status: "Approved"}); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict on double approve, got %v", err)
	}
	if _, err := f.svc.SetStatus(ctx, app.VendorID, f.admin, SetStatusInput{Status: "Rejected"}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected revoke without reason to fail validation, got %v", err)
	}
	revoked, err := f.svc.SetStatus(ctx, app.VendorID, f.admin, SetStatusInput{Status: "Rejected", Reason: "licence expired"})
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked.Status != enums.VendorStatusRejected {
		t.Fatalf("expected rejected, got %s", revoked.Status)
	}
	final, err := f.svc.SetStatus(ctx, app.VendorID, f.admin, SetStatusInput{Status: "Approved"})
	if err != nil {
		t.Fatalf("re-approve: %v", err)
	}
	if final.RejectionReason != nil {
		t.Fatalf("expected rejection reason cleared on approval")
	}
	if len(final.StatusHistory) != 4 {
		t.Fatalf("expected seed plus 3 decisions, got %d", len(final.StatusHistory))
	}
	want := []enums.VendorStatus{enums.VendorStatusPending, enums.VendorStatusApproved, enums.VendorStatusRejected, enums.VendorStatusApproved}
	for i, entry := range final.StatusHistory {
		if entry.Status != want[i] || entry.Seq != i+1 {
			t.Fatalf("history[%d] = %s seq %d, want %s seq %d", i, entry.Status, entry.Seq, want[i], i+1)
		}
	}
	if c := final.StatusHistory[2].Comment; c == nil || *c != "licence expired" {
		t.Fatalf("expected revoke reason on history, got %v", c)
	}
	if final.Version != app.Version+3 {
		t.Fatalf("expected version %d, got %d", app.Version+3, final.Version)
	}
}

func TestSetStatusReRejectOverwritesReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.register(t, "rereject@acme.test")

	if _, err := f.svc.SetStatus(ctx, app.VendorID, f.admin, SetStatusInput{Status: "Rejected", Reason: "blurry GST scan"}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	again, err := f.svc.SetStatus(ctx, app.VendorID, f.admin, SetStatusInput{Status: "Rejected", Reason: "PAN name mismatch"})
	if err != nil {
		t.Fatalf("re-reject: %v", err)
	}
	if again.Status != enums.VendorStatusRejected {
		t.Fatalf("expected rejected, got %s", again.Status)
	}
	if again.RejectionReason == nil || *again.RejectionReason != "PAN name mismatch" {
		t.Fatalf("expected reason overwritten, got %v", again.RejectionReason)
	}
	if len(again.StatusHistory) != 3 {
		t.Fatalf("expected seed plus 2 rejections, got %d", len(again.StatusHistory))
	}
	for i, reason := range []string{"blurry GST scan", "PAN name mismatch"} {
		entry := again.StatusHistory[i+1]
		if entry.Status != enums.VendorStatusRejected || entry.Comment == nil || *entry.Comment != reason {
			t.Fatalf("history[%d] = %+v, want rejected with %q", i+1, entry, reason)
		}
	}
	if again.Version != app.Version+2 {
		t.Fatalf("expected version %d, got %d", app.Version+2, again.Version)
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	app := f.register(t, "unknown@acme.test")

	for _, status := range []string{"Pending", "archived", ""} {
		_, err := f.svc.SetStatus(context.Background(), app.VendorID, f.admin, SetStatusInput{Status: status})
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("status %q: expected validation error, got %v", status, err)
		}
	}
}

func TestSetStatusRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	app, owner := f.registerOwned(t, "self@acme.test")

	_, err := f.svc.SetStatus(context.Background(), app.VendorID, owner, SetStatusInput{Status: "Approved"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for vendor, got %v", err)
	}
	_, err = f.svc.SetStatus(context.Background(), app.VendorID, uuid.New(), SetStatusInput{Status: "Approved"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for unknown user, got %v", err)
	}
	if len(f.metrics.transitions) != 0 {
		t.Fatalf("unexpected transitions %v", f.metrics.transitions)
	}
}

func TestSetStatusUnknownVendor(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SetStatus(context.Background(), "VEN-99999", f.admin, SetStatusInput{Status: "Approved"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddDocumentWhilePendingKeepsStatus(t *testing.T) {
	f := newFixture(t)
	app, owner := f.registerOwned(t, "pending@acme.test")

	updated, err := f.svc.AddDocument(context.Background(), app.VendorID, owner, document("gst.pdf"))
	if err != nil {
		t.Fatalf("add document: %v", err)
	}
	if updated.Status != enums.VendorStatusPending || len(updated.StatusHistory) != 1 {
		t.Fatalf("unexpected state %s with %d entries", updated.Status, len(updated.StatusHistory))
	}
	if len(updated.Documents) != 1 {
		t.Fatalf("expected one document, got %d", len(updated.Documents))
	}
	if updated.Version <= app.Version {
		t.Fatalf("expected version bump, got %d", updated.Version)
	}
}

func TestOwnerOperationsRejectOtherUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app, owner := f.registerOwned(t, "owner@acme.test")
	intruder := f.createUser(t, "intruder@acme.test", enums.UserRoleVendor)

	if _, err := f.svc.AddDocument(ctx, app.VendorID, intruder, document("x.pdf")); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("add: expected forbidden, got %v", err)
	}
	if _, err := f.svc.AddDocument(ctx, app.VendorID, f.admin, document("x.pdf")); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("admin add: expected forbidden, got %v", err)
	}

	withDoc, err := f.svc.AddDocument(ctx, app.VendorID, owner, document("gst.pdf"))
	if err != nil {
		t.Fatalf("owner add: %v", err)
	}
	docID := withDoc.Documents[0].ID
	if _, err := f.svc.RemoveDocument(ctx, app.VendorID, intruder, docID); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("remove: expected forbidden, got %v", err)
	}
	if _, err := f.svc.GetDocument(ctx, app.VendorID, intruder, docID); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("get: expected forbidden, got %v", err)
	}
	if _, err := f.svc.GetDocument(ctx, app.VendorID, f.admin, docID); err != nil {
		t.Fatalf("admin get: %v", err)
	}
}

func TestOwnerOperationsOnUnclaimedApplication(t *testing.T) {
	f := newFixture(t)
	app := f.register(t, "unclaimed@acme.test")
	user := f.createUser(t, "unclaimed@acme.test", enums.UserRoleVendor)

	if _, err := f.svc.AddDocument(context.Background(), app.VendorID, user, document("x.pdf")); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestRemoveDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app, owner := f.registerOwned(t, "remove@acme.test")

	withDoc, err := f.svc.AddDocument(ctx, app.VendorID, owner, document("gst.pdf"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	docID := withDoc.Documents[0].ID

	removed, err := f.svc.RemoveDocument(ctx, app.VendorID, owner, docID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed.ID != docID || removed.StorageKey == "" {
		t.Fatalf("unexpected removed document %+v", removed)
	}

	after, err := f.svc.GetForOwner(ctx, owner)
	if err != nil {
		t.Fatalf("get for owner: %v", err)
	}
	if len(after.Documents) != 0 {
		t.Fatalf("expected no documents, got %d", len(after.Documents))
	}
	if after.Status != enums.VendorStatusPending || len(after.StatusHistory) != 1 {
		t.Fatalf("removal changed status: %s %d", after.Status, len(after.StatusHistory))
	}

	if _, err := f.svc.RemoveDocument(ctx, app.VendorID, owner, docID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found on second remove, got %v", err)
	}
	if got := countEvents(f.outboxTypes(t), enums.EventVendorDocumentRemoved); got != 1 {
		t.Fatalf("expected 1 removal event, got %d", got)
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app, owner := f.registerOwned(t, "profile@acme.test")

	name := "Acme Exports"
	city := types.Address{City: "Mumbai"}
	updated, err := f.svc.UpdateProfile(ctx, app.VendorID, owner, UpdateProfileInput{BusinessName: &name, Address: &city})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.BusinessName != name || updated.Address.City != "Mumbai" || updated.Address.Country != types.DefaultCountry {
		t.Fatalf("unexpected profile %+v", updated)
	}
	if updated.Email != app.Email || updated.VendorID != app.VendorID || updated.Status != app.Status {
		t.Fatalf("protected fields changed: %+v", updated)
	}

	if _, err := f.svc.UpdateProfile(ctx, app.VendorID, owner, UpdateProfileInput{}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty update, got %v", err)
	}
	blank := ""
	if _, err := f.svc.UpdateProfile(ctx, app.VendorID, owner, UpdateProfileInput{Phone: &blank}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank phone, got %v", err)
	}
}

func TestListAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.register(t, "alpha@acme.test")
	f.register(t, "beta@acme.test")
	third := f.register(t, "gamma@acme.test")

	if _, err := f.svc.SetStatus(ctx, first.VendorID, f.admin, SetStatusInput{Status: "Approved"}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.svc.SetStatus(ctx, third.VendorID, f.admin, SetStatusInput{Status: "Rejected", Reason: "missing GST"}); err != nil {
		t.Fatalf("reject: %v", err)
	}

	page, err := f.svc.List(ctx, ListParams{Params: pkgpagination.Params{Limit: 2}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 2 || page.Cursor == "" {
		t.Fatalf("expected first page of 2 with cursor, got %d %q", len(page.Items), page.Cursor)
	}
	if page.Items[0].VendorID != "VEN-00003" {
		t.Fatalf("expected newest first, got %s", page.Items[0].VendorID)
	}
	next, err := f.svc.List(ctx, ListParams{Params: pkgpagination.Params{Limit: 2, Cursor: page.Cursor}})
	if err != nil {
		t.Fatalf("list next: %v", err)
	}
	if len(next.Items) != 1 || next.Items[0].VendorID != "VEN-00001" || next.Cursor != "" {
		t.Fatalf("unexpected second page %+v", next)
	}

	pending, err := f.svc.List(ctx, ListParams{Status: "pending"})
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending.Items) != 1 || pending.Items[0].VendorID != "VEN-00002" {
		t.Fatalf("unexpected pending filter result %+v", pending.Items)
	}

	search, err := f.svc.List(ctx, ListParams{Search: "GAMMA@"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(search.Items) != 1 || search.Items[0].VendorID != "VEN-00003" {
		t.Fatalf("unexpected search result %+v", search.Items)
	}
	literal, err := f.svc.List(ctx, ListParams{Search: "%"})
	if err != nil {
		t.Fatalf("search literal: %v", err)
	}
	if len(literal.Items) != 0 {
		t.Fatalf("expected wildcard to be escaped, got %d", len(literal.Items))
	}

	if _, err := f.svc.List(ctx, ListParams{Status: "archived"}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for status filter, got %v", err)
	}

	stats, err := f.svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 || stats.Pending != 1 || stats.Approved != 1 || stats.Rejected != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if len(stats.Recent) != 3 {
		t.Fatalf("expected 3 recent applications, got %d", len(stats.Recent))
	}
}

func TestCompareAndUpdateDetectsStaleVersion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.register(t, "cas@acme.test")
	now := time.Now().UTC()

	ok, err := f.repo.CompareAndUpdate(ctx, app.ID, app.Version, map[string]any{"phone": "111"}, now)
	if err != nil || !ok {
		t.Fatalf("first update: %v %v", ok, err)
	}
	ok, err = f.repo.CompareAndUpdate(ctx, app.ID, app.Version, map[string]any{"phone": "222"}, now)
	if err != nil {
		t.Fatalf("stale update: %v", err)
	}
	if ok {
		t.Fatalf("expected stale version to be rejected")
	}

	var stored models.VendorApplication
	if err := f.conn.First(&stored, "id = ?", app.ID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored.Phone != "111" || stored.Version != app.Version+1 {
		t.Fatalf("unexpected stored row phone=%s version=%d", stored.Phone, stored.Version)
	}
}

func TestConcurrentDecisionsKeepHistoryConsistent(t *testing.T) {
	f := newFixture(t)
	app := f.register(t, "race@acme.test")

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, input := range []SetStatusInput{{Status: "Approved"}, {Status: "Rejected", Reason: "duplicate vendor"}} {
		wg.Add(1)
		go func(in SetStatusInput) {
			defer wg.Done()
			_, err := f.svc.SetStatus(context.Background(), app.VendorID, f.admin, in)
			results <- err
		}(input)
	}
	wg.Wait()
	close(results)

	for err := range results {
		if err != nil && !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
			t.Fatalf("unexpected error %v", err)
		}
	}

	final, err := f.svc.GetByVendorID(context.Background(), app.VendorID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	last := final.StatusHistory[len(final.StatusHistory)-1]
	if last.Status != final.Status {
		t.Fatalf("history tail %s does not match status %s", last.Status, final.Status)
	}
	if final.Version != app.Version+int64(len(final.StatusHistory)-1) {
		t.Fatalf("version %d out of step with %d history entries", final.Version, len(final.StatusHistory))
	}
}

func TestCountPendingSubmittedBefore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	waiting := f.register(t, "waiting@vendorkyc.test")
	decided := f.register(t, "decided@vendorkyc.test")
	if _, err := f.svc.SetStatus(ctx, decided.VendorID, f.admin, SetStatusInput{Status: "Approved"}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	count, err := f.repo.CountPendingSubmittedBefore(ctx, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected only %s overdue, got %d", waiting.VendorID, count)
	}

	count, err = f.repo.CountPendingSubmittedBefore(ctx, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected nothing submitted before 2020, got %d", count)
	}
}
