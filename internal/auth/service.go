package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorkyc-backend/internal/users"
	"github.com/angelmondragon/vendorkyc-backend/internal/vendors"
	pkgAuth "github.com/angelmondragon/vendorkyc-backend/pkg/auth"
	"github.com/angelmondragon/vendorkyc-backend/pkg/auth/session"
	"github.com/angelmondragon/vendorkyc-backend/pkg/config"
	dbpkg "github.com/angelmondragon/vendorkyc-backend/pkg/db"
	"github.com/angelmondragon/vendorkyc-backend/pkg/db/models"
	"github.com/angelmondragon/vendorkyc-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorkyc-backend/pkg/errors"
	"github.com/angelmondragon/vendorkyc-backend/pkg/logger"
	"github.com/angelmondragon/vendorkyc-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	VendorLogin(ctx context.Context, req VendorLoginRequest) (*LoginResponse, error)
	AdminLogin(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accessID string) error
	Me(ctx context.Context, userID uuid.UUID) (*MeResponse, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type sessionManager interface {
	Open(ctx context.Context, accessID string, userID uuid.UUID) error
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	TxRunner       txRunner
	UserRepo       *users.Repository
	VendorRepo     *vendors.Repository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	Logger         *logger.Logger
}

type service struct {
	tx      txRunner
	users   *users.Repository
	vendors *vendors.Repository
	session sessionManager
	jwtCfg  config.JWTConfig
	logg    *logger.Logger
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.VendorRepo == nil {
		return nil, fmt.Errorf("vendor repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		tx:      params.TxRunner,
		users:   params.UserRepo,
		vendors: params.VendorRepo,
		session: params.SessionManager,
		jwtCfg:  params.JWTConfig,
		logg:    logg,
	}, nil
}

// VendorLogin signs in the vendor whose application carries req.Email. The first
// login creates the vendor user and claims the application in one transaction.
func (s *service) VendorLogin(ctx context.Context, req VendorLoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	var (
		user     *models.User
		vendorID string
	)
	now := time.Now().UTC()
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.users.WithTx(tx)
		vendorRepo := s.vendors.WithTx(tx)

		app, err := vendorRepo.FindByEmail(ctx, email)
		if err != nil {
			if dbpkg.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup vendor application")
		}

		user, err = userRepo.FindByEmail(ctx, email)
		switch {
		case err == nil:
			if user.Role != enums.UserRoleVendor || !user.IsActive {
				return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			user, err = userRepo.Create(ctx, users.CreateUserDTO{
				Email: email,
				Name:  app.ContactPerson,
				Role:  enums.UserRoleVendor,
			})
			if err != nil {
				if dbpkg.IsUniqueViolation(err, "email") {
					return pkgerrors.New(pkgerrors.CodeConflict, "login already in progress for this email")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
		}

		if app.OwnerUserID == nil {
			claimed, err := vendorRepo.ClaimOwner(ctx, app.ID, user.ID, now)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claim vendor application")
			}
			if !claimed {
				return pkgerrors.New(pkgerrors.CodeConflict, "vendor application claimed concurrently")
			}
		} else if *app.OwnerUserID != user.ID {
			return pkgerrors.New(pkgerrors.CodeConflict, "vendor application belongs to another user")
		}

		if err := userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
		}
		user.LastLoginAt = &now
		vendorID = app.VendorID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.issue(ctx, user, &vendorID, now)
}

func (s *service) AdminLogin(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if user.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now
	return s.issue(ctx, user, nil, now)
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*MeResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	resp := &MeResponse{User: users.FromModel(user)}
	if user.Role == enums.UserRoleVendor {
		app, err := s.vendors.FindByOwner(ctx, user.ID)
		if err != nil && !dbpkg.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup vendor application")
		}
		if app != nil {
			resp.VendorID = &app.VendorID
		}
	}
	return resp, nil
}

func (s *service) issue(ctx context.Context, user *models.User, vendorID *string, now time.Time) (*LoginResponse, error) {
	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID:   user.ID,
		Role:     user.Role,
		VendorID: vendorID,
		JTI:      accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	if err := s.session.Open(ctx, accessID, user.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}

	s.logg.Info(s.logg.WithActor(ctx, user.ID.String(), string(user.Role), vendorID), "auth.login")
	return &LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.jwtCfg.AccessTokenTTL() / time.Second),
		User:        users.FromModel(user),
		VendorID:    vendorID,
	}, nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.TrimSpace(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if user.PasswordHash == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	valid, err := security.VerifyPassword(password, *user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}
