package vendors

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/vendorkyc-backend/internal/repo"
	"github.com/angelmondragon/vendorkyc-backend/pkg/db/models"
	"github.com/angelmondragon/vendorkyc-backend/pkg/enums"
)

// Repository exposes vendor application persistence. Use WithTx inside a
// transaction so every read and write goes through the same handle.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

// NextVendorNumber increments the vendor_id counter and returns the new value.
// The row lock taken by the UPDATE holds until the surrounding transaction ends.
func (r *Repository) NextVendorNumber(ctx context.Context) (int64, error) {
	db := r.DB(ctx)
	seed := models.VendorSequence{Name: vendorIDSequence}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, fmt.Errorf("ensure vendor sequence: %w", err)
	}
	res := db.Model(&models.VendorSequence{}).
		Where("name = ?", vendorIDSequence).
		UpdateColumn("value", gorm.Expr("value + 1"))
	if res.Error != nil {
		return 0, fmt.Errorf("increment vendor sequence: %w", res.Error)
	}
	if res.RowsAffected != 1 {
		return 0, fmt.Errorf("vendor sequence %q missing", vendorIDSequence)
	}
	var seq models.VendorSequence
	if err := db.Where("name = ?", vendorIDSequence).First(&seq).Error; err != nil {
		return 0, fmt.Errorf("read vendor sequence: %w", err)
	}
	return seq.Value, nil
}

func (r *Repository) Create(ctx context.Context, app *models.VendorApplication) error {
	return r.DB(ctx).Omit(clause.Associations).Create(app).Error
}

func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.VendorApplication{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// FindByVendorID loads the bare application row.
func (r *Repository) FindByVendorID(ctx context.Context, vendorID string) (*models.VendorApplication, error) {
	var app models.VendorApplication
	if err := r.DB(ctx).Where("vendor_id = ?", vendorID).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.VendorApplication, error) {
	var app models.VendorApplication
	if err := r.DB(ctx).Where("email = ?", email).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *Repository) FindByOwner(ctx context.Context, userID uuid.UUID) (*models.VendorApplication, error) {
	var app models.VendorApplication
	if err := r.DB(ctx).Where("owner_user_id = ?", userID).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// LoadFull returns the application with documents and history in ledger order.
func (r *Repository) LoadFull(ctx context.Context, id uuid.UUID) (*models.VendorApplication, error) {
	var app models.VendorApplication
	err := r.DB(ctx).
		Preload("Documents", func(db *gorm.DB) *gorm.DB {
			return db.Order("uploaded_at ASC").Order("id ASC")
		}).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		First(&app, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// CompareAndUpdate applies updates only if the row still carries version and bumps it.
// It reports false when another writer got there first.
func (r *Repository) CompareAndUpdate(ctx context.Context, id uuid.UUID, version int64, updates map[string]any, now time.Time) (bool, error) {
	values := make(map[string]any, len(updates)+2)
	for k, v := range updates {
		values[k] = v
	}
	values["version"] = version + 1
	values["updated_at"] = now
	res := r.DB(ctx).Model(&models.VendorApplication{}).
		Where("id = ? AND version = ?", id, version).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ClaimOwner sets owner_user_id only while it is still empty.
func (r *Repository) ClaimOwner(ctx context.Context, id, userID uuid.UUID, now time.Time) (bool, error) {
	res := r.DB(ctx).Model(&models.VendorApplication{}).
		Where("id = ? AND owner_user_id IS NULL", id).
		Updates(map[string]any{
			"owner_user_id": userID,
			"version":       gorm.Expr("version + 1"),
			"updated_at":    now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repository) NextHistorySeq(ctx context.Context, applicationID uuid.UUID) (int, error) {
	var max sql.NullInt64
	row := r.DB(ctx).Model(&models.VendorStatusHistory{}).
		Where("application_id = ?", applicationID).
		Select("COALESCE(MAX(seq), 0)").
		Row()
	if err := row.Scan(&max); err != nil {
		return 0, err
	}
	return int(max.Int64) + 1, nil
}

func (r *Repository) AppendHistory(ctx context.Context, entry *models.VendorStatusHistory) error {
	return r.DB(ctx).Create(entry).Error
}

func (r *Repository) InsertDocument(ctx context.Context, doc *models.VendorDocument) error {
	return r.DB(ctx).Create(doc).Error
}

func (r *Repository) FindDocument(ctx context.Context, applicationID, documentID uuid.UUID) (*models.VendorDocument, error) {
	var doc models.VendorDocument
	err := r.DB(ctx).Where("application_id = ? AND id = ?", applicationID, documentID).First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *Repository) DeleteDocument(ctx context.Context, documentID uuid.UUID) error {
	return r.DB(ctx).Delete(&models.VendorDocument{}, "id = ?", documentID).Error
}

// FindActor loads the user performing a mutation so its role is checked against the
// current row rather than token claims.
func (r *Repository) FindActor(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns applications newest first using keyset pagination on (submitted_at, id).
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.VendorApplication, error) {
	query := r.DB(ctx).Model(&models.VendorApplication{})
	if opts.status != "" {
		query = query.Where("status = ?", opts.status)
	}
	if opts.search != "" {
		pattern := "%" + escapeLike(strings.ToLower(opts.search)) + "%"
		query = query.Where(
			"LOWER(business_name) LIKE ? ESCAPE '\\' OR LOWER(contact_person) LIKE ? ESCAPE '\\' OR LOWER(vendor_id) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\'",
			pattern, pattern, pattern, pattern,
		)
	}
	if opts.cursor != nil {
		query = query.Where("(submitted_at < ?) OR (submitted_at = ? AND id < ?)", opts.cursor.At, opts.cursor.At, opts.cursor.ID)
	}

	var rows []models.VendorApplication
	err := query.Order("submitted_at DESC").Order("id DESC").Limit(opts.limit).Find(&rows).Error
	return rows, err
}

type statusCount struct {
	Status enums.VendorStatus
	Count  int64
}

func (r *Repository) CountByStatus(ctx context.Context) (map[enums.VendorStatus]int64, error) {
	var rows []statusCount
	err := r.DB(ctx).Model(&models.VendorApplication{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[enums.VendorStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// CountPendingSubmittedBefore counts applications still awaiting a decision
// that were submitted before cutoff.
func (r *Repository) CountPendingSubmittedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.VendorApplication{}).
		Where("status = ? AND submitted_at < ?", enums.VendorStatusPending, cutoff).
		Count(&count).Error
	return count, err
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
