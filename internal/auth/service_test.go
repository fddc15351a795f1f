package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorkyc-backend/internal/users"
	"github.com/angelmondragon/vendorkyc-backend/internal/vendors"
	pkgAuth "github.com/angelmondragon/vendorkyc-backend/pkg/auth"
	"github.com/angelmondragon/vendorkyc-backend/pkg/config"
	dbpkg "github.com/angelmondragon/vendorkyc-backend/pkg/db"
	"github.com/angelmondragon/vendorkyc-backend/pkg/db/dbtest"
	"github.com/angelmondragon/vendorkyc-backend/pkg/db/models"
	"github.com/angelmondragon/vendorkyc-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorkyc-backend/pkg/errors"
	"github.com/angelmondragon/vendorkyc-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "vendorkyc",
	ExpirationMinutes: 30,
}

// Small argon parameters keep the tests fast.
var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    64,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

type stubSessions struct {
	mu     sync.Mutex
	open   map[string]uuid.UUID
	closed []string
}

func (s *stubSessions) Open(_ context.Context, accessID string, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open[accessID] = userID
	return nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.open, accessID)
	s.closed = append(s.closed, accessID)
	return nil
}

type authFixture struct {
	conn     *gorm.DB
	svc      Service
	sessions *stubSessions
	users    *users.Repository
	vendors  *vendors.Repository
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	conn := dbtest.Open(t)
	sessions := &stubSessions{open: map[string]uuid.UUID{}}
	userRepo := users.NewRepository(conn)
	vendorRepo := vendors.NewRepository(conn)
	svc, err := NewService(ServiceParams{
		TxRunner:       dbpkg.NewFromGorm(conn),
		UserRepo:       userRepo,
		VendorRepo:     vendorRepo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &authFixture{conn: conn, svc: svc, sessions: sessions, users: userRepo, vendors: vendorRepo}
}

func (f *authFixture) seedApplication(t *testing.T, email, vendorID string) *models.VendorApplication {
	t.Helper()
	app := &models.VendorApplication{
		ID:               uuid.New(),
		VendorID:         vendorID,
		BusinessName:     "Acme",
		BusinessCategory: enums.BusinessCategoryRetail,
		ContactPerson:    "Asha Rao",
		Email:            email,
		Phone:            "12345",
		Status:           enums.VendorStatusPending,
		SubmittedAt:      time.Now().UTC(),
		Version:          1,
	}
	app.Address.Country = "India"
	if err := f.vendors.Create(context.Background(), app); err != nil {
		t.Fatalf("seed application: %v", err)
	}
	return app
}

func (f *authFixture) seedAdmin(t *testing.T, email, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := f.users.Create(context.Background(), users.CreateUserDTO{
		Email:        email,
		Name:         "Reviewer",
		PasswordHash: &hash,
		Role:         enums.UserRoleAdmin,
	})
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return user
}

func TestVendorLoginClaimsApplication(t *testing.T) {
	f := newAuthFixture(t)
	app := f.seedApplication(t, "asha@acme.test", "VEN-00001")

	resp, err := f.svc.VendorLogin(context.Background(), VendorLoginRequest{Email: " Asha@Acme.test "})
	if err != nil {
		t.Fatalf("vendor login: %v", err)
	}
	if resp.VendorID == nil || *resp.VendorID != "VEN-00001" {
		t.Fatalf("unexpected vendor id %v", resp.VendorID)
	}
	if resp.User.Role != enums.UserRoleVendor || resp.User.Name != "Asha Rao" {
		t.Fatalf("unexpected user %+v", resp.User)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != resp.User.ID || claims.Role != enums.UserRoleVendor {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if owner, ok := f.sessions.open[claims.ID]; !ok || owner != resp.User.ID {
		t.Fatalf("expected session for jti %s", claims.ID)
	}

	stored, err := f.vendors.FindByVendorID(context.Background(), app.VendorID)
	if err != nil {
		t.Fatalf("reload application: %v", err)
	}
	if stored.OwnerUserID == nil || *stored.OwnerUserID != resp.User.ID {
		t.Fatalf("application not claimed: %v", stored.OwnerUserID)
	}
	if stored.Version != app.Version+1 {
		t.Fatalf("expected claim to bump version, got %d", stored.Version)
	}

	again, err := f.svc.VendorLogin(context.Background(), VendorLoginRequest{Email: "asha@acme.test"})
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if again.User.ID != resp.User.ID {
		t.Fatalf("expected the same user on second login")
	}
}

func TestVendorLoginUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.VendorLogin(context.Background(), VendorLoginRequest{Email: "nobody@acme.test"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	var count int64
	f.conn.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Fatalf("no user should be created, got %d", count)
	}
}

func TestVendorLoginRejectsAdminEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.seedApplication(t, "admin@acme.test", "VEN-00001")
	f.seedAdmin(t, "admin@acme.test", "s3cret")

	_, err := f.svc.VendorLogin(context.Background(), VendorLoginRequest{Email: "admin@acme.test"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAdminLogin(t *testing.T) {
	f := newAuthFixture(t)
	admin := f.seedAdmin(t, "reviewer@vendorkyc.test", "correct horse")

	resp, err := f.svc.AdminLogin(context.Background(), LoginRequest{Email: "Reviewer@vendorkyc.test", Password: "correct horse"})
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if resp.User.ID != admin.ID || resp.VendorID != nil {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.ExpiresIn != 30*60 {
		t.Fatalf("unexpected expiry %d", resp.ExpiresIn)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != enums.UserRoleAdmin {
		t.Fatalf("expected admin role, got %s", claims.Role)
	}

	if _, err := f.svc.AdminLogin(context.Background(), LoginRequest{Email: admin.Email, Password: "wrong"}); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for wrong password, got %v", err)
	}
}

func TestAdminLoginRejectsVendorUsers(t *testing.T) {
	f := newAuthFixture(t)
	f.seedApplication(t, "vendor@acme.test", "VEN-00001")
	if _, err := f.svc.VendorLogin(context.Background(), VendorLoginRequest{Email: "vendor@acme.test"}); err != nil {
		t.Fatalf("vendor login: %v", err)
	}

	_, err := f.svc.AdminLogin(context.Background(), LoginRequest{Email: "vendor@acme.test", Password: "anything"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAdmin(t, "reviewer@vendorkyc.test", "pw")
	resp, err := f.svc.AdminLogin(context.Background(), LoginRequest{Email: "reviewer@vendorkyc.test", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}

	if err := f.svc.Logout(context.Background(), claims.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := f.sessions.open[claims.ID]; ok {
		t.Fatalf("session still open")
	}
	if err := f.svc.Logout(context.Background(), ""); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for empty session, got %v", err)
	}
}

func TestMeIncludesVendorID(t *testing.T) {
	f := newAuthFixture(t)
	f.seedApplication(t, "me@acme.test", "VEN-00007")
	login, err := f.svc.VendorLogin(context.Background(), VendorLoginRequest{Email: "me@acme.test"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	me, err := f.svc.Me(context.Background(), login.User.ID)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.VendorID == nil || *me.VendorID != "VEN-00007" {
		t.Fatalf("unexpected vendor id %v", me.VendorID)
	}
	if _, err := f.svc.Me(context.Background(), uuid.New()); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for unknown user, got %v", err)
	}
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	runner := dbpkg.NewFromGorm(f.conn)
	cfg := config.AdminConfig{Email: "Root@VendorKYC.test", Password: "first", Name: "Root"}

	created, err := EnsureBootstrapAdmin(ctx, runner, f.users, cfg, testPasswordConfig)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if created.Email != "root@vendorkyc.test" || created.Role != enums.UserRoleAdmin {
		t.Fatalf("unexpected admin %+v", created)
	}

	cfg.Password = "second"
	again, err := EnsureBootstrapAdmin(ctx, runner, f.users, cfg, testPasswordConfig)
	if err != nil {
		t.Fatalf("bootstrap again: %v", err)
	}
	if again.ID != created.ID {
		t.Fatalf("expected the same admin to be reused")
	}
	if _, err := f.svc.AdminLogin(ctx, LoginRequest{Email: cfg.Email, Password: "second"}); err != nil {
		t.Fatalf("login with rotated password: %v", err)
	}

	disabled, err := EnsureBootstrapAdmin(ctx, runner, f.users, config.AdminConfig{}, testPasswordConfig)
	if err != nil || disabled != nil {
		t.Fatalf("expected no-op without credentials, got %v %v", disabled, err)
	}
}
