package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/vendorkyc-backend/internal/users"
	"github.com/angelmondragon/vendorkyc-backend/pkg/config"
	"github.com/angelmondragon/vendorkyc-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorkyc-backend/pkg/errors"
	"github.com/angelmondragon/vendorkyc-backend/pkg/security"
)

// EnsureBootstrapAdmin creates the configured reviewer account, or rehashes its
// password when the stored hash no longer matches the configured one.
func EnsureBootstrapAdmin(ctx context.Context, db txRunner, repo *users.Repository, cfg config.AdminConfig, passwordCfg config.PasswordConfig) (*users.UserDTO, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	email := strings.ToLower(strings.TrimSpace(cfg.Email))

	var result *users.UserDTO
	err := db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := repo.WithTx(tx)

		existing, err := userRepo.FindByEmail(ctx, email)
		switch {
		case err == nil:
			if existing.Role != enums.UserRoleAdmin {
				return pkgerrors.New(pkgerrors.CodeConflict, "bootstrap admin email belongs to a vendor")
			}
			if existing.PasswordHash != nil {
				if ok, verr := security.VerifyPassword(cfg.Password, *existing.PasswordHash); verr == nil && ok && !security.NeedsRehash(*existing.PasswordHash, passwordCfg) {
					result = users.FromModel(existing)
					return nil
				}
			}
			hash, err := security.HashPassword(cfg.Password, passwordCfg)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
			}
			if err := userRepo.UpdatePasswordHash(ctx, existing.ID, hash); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update admin password")
			}
			existing.PasswordHash = &hash
			result = users.FromModel(existing)
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup admin")
		}

		hash, err := security.HashPassword(cfg.Password, passwordCfg)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		name := strings.TrimSpace(cfg.Name)
		if name == "" {
			name = "Administrator"
		}
		created, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			Name:         name,
			PasswordHash: &hash,
			Role:         enums.UserRoleAdmin,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create admin")
		}
		result = users.FromModel(created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
