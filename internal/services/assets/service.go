// Package assets owns the asset lifecycle: creation with QR issuance, field
// edits with condition auditing, archive, restore and permanent deletion.
package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xelth-com/eckassets/internal/apperr"
	"github.com/xelth-com/eckassets/internal/database"
	"github.com/xelth-com/eckassets/internal/lifecycle"
	"github.com/xelth-com/eckassets/internal/models"
	"github.com/xelth-com/eckassets/internal/services/history"
)

// Service manages assets
type Service struct {
	db      *gorm.DB
	history *history.Service
	log     *zap.Logger

	newQRCode func() string
}

// NewService creates a new asset service
func NewService(db *gorm.DB, hist *history.Service, log *zap.Logger) *Service {
	return &Service{
		db:        db,
		history:   hist,
		log:       log,
		newQRCode: NewQRCode,
	}
}

// CreateInput carries the fields of a new asset
type CreateInput struct {
	Name        string                `json:"name"`
	Description *string               `json:"description,omitempty"`
	Category    models.AssetCategory  `json:"category"`
	Condition   models.AssetCondition `json:"condition,omitempty"`
	Owner       string                `json:"owner"`
	PhotoURL    *string               `json:"photoUrl,omitempty"`
}

func (in *CreateInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Owner = strings.TrimSpace(in.Owner)
	if in.Name == "" {
		return apperr.Invalid("name is required")
	}
	if in.Owner == "" {
		return apperr.Invalid("owner is required")
	}
	if !in.Category.Valid() {
		return apperr.Invalid("unknown category %q", in.Category)
	}
	if in.Condition == "" {
		in.Condition = models.ConditionNew
	}
	if !in.Condition.Valid() {
		return apperr.Invalid("unknown condition %q", in.Condition)
	}
	return nil
}

// Create inserts a new active asset with a freshly issued QR code. Creation
// is not an audited change.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Asset, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	code, err := s.issueQRCode(db)
	if err != nil {
		return nil, err
	}

	asset := &models.Asset{
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Condition:   in.Condition,
		Owner:       in.Owner,
		PhotoURL:    in.PhotoURL,
		QRCode:      code,
	}
	if err := db.Create(asset).Error; err != nil {
		return nil, err
	}

	s.log.Info("asset created",
		zap.Uint("asset_id", asset.ID),
		zap.String("category", string(asset.Category)),
		zap.String("qr_code", asset.QRCode),
	)
	return asset, nil
}

// issueQRCode draws codes until one is unused. The unique index still
// guards the insert itself.
func (s *Service) issueQRCode(db *gorm.DB) (string, error) {
	for attempt := 1; attempt <= qrAttempts; attempt++ {
		code := s.newQRCode()

		var n int64
		if err := db.Model(&models.Asset{}).Where("qr_code = ?", code).Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return code, nil
		}
		s.log.Warn("qr code collision, retrying", zap.String("qr_code", code), zap.Int("attempt", attempt))
	}
	return "", fmt.Errorf("could not issue a unique qr code after %d attempts", qrAttempts)
}

// UpdateInput holds the mutable fields; nil means "leave unchanged".
type UpdateInput struct {
	Name        *string                `json:"name,omitempty"`
	Description *string                `json:"description,omitempty"`
	Category    *models.AssetCategory  `json:"category,omitempty"`
	Condition   *models.AssetCondition `json:"condition,omitempty"`
	Owner       *string                `json:"owner,omitempty"`
	PhotoURL    *string                `json:"photoUrl,omitempty"`
}

func (in UpdateInput) validate() error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return apperr.Invalid("name must not be empty")
	}
	if in.Owner != nil && strings.TrimSpace(*in.Owner) == "" {
		return apperr.Invalid("owner must not be empty")
	}
	if in.Category != nil && !in.Category.Valid() {
		return apperr.Invalid("unknown category %q", *in.Category)
	}
	if in.Condition != nil && !in.Condition.Valid() {
		return apperr.Invalid("unknown condition %q", *in.Condition)
	}
	return nil
}

// Update edits the given fields. A changed condition appends exactly one
// status_change row attributed to actor (nil for system changes); other
// edits are not audited. updated_at is refreshed on every call.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput, actor *uint) (*models.Asset, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var updated models.Asset
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockAsset(tx, id)
		if err != nil {
			return err
		}

		changes := map[string]interface{}{
			"updated_at": time.Now().UTC(),
		}
		if in.Name != nil {
			changes["name"] = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			changes["description"] = *in.Description
		}
		if in.Category != nil {
			changes["category"] = *in.Category
		}
		if in.Owner != nil {
			changes["owner"] = strings.TrimSpace(*in.Owner)
		}
		if in.PhotoURL != nil {
			changes["photo_url"] = *in.PhotoURL
		}
		if in.Condition != nil {
			changes["condition"] = *in.Condition
		}

		if err := tx.Model(&models.Asset{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return err
		}

		if in.Condition != nil && *in.Condition != current.Condition {
			if _, err := s.history.WithTx(tx).LogStatusChange(ctx, id, actor, current.Condition, *in.Condition); err != nil {
				return err
			}
		}

		return tx.First(&updated, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Archive soft-deletes the asset. Archiving an archived asset succeeds again
// and appends another archived row.
func (s *Service) Archive(ctx context.Context, id uint, actor *uint) (bool, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockAsset(tx, id)
		if err != nil {
			return err
		}
		from := lifecycle.StateOf(current.IsArchived)
		if _, err := lifecycle.Next(from, lifecycle.Archive); err != nil {
			return err
		}

		if err := setArchived(tx, id, true); err != nil {
			return err
		}
		_, err = s.history.WithTx(tx).Append(ctx, history.AppendInput{
			AssetID:     id,
			ChangedBy:   actor,
			ChangeType:  models.ChangeArchived,
			OldValue:    models.Ptr(string(from)),
			NewValue:    models.Ptr(string(lifecycle.Archived)),
			Description: models.Ptr("Asset archived"),
		})
		return err
	})
	if err != nil {
		return false, err
	}

	s.log.Info("asset archived", zap.Uint("asset_id", id))
	return true, nil
}

// Restore returns an archived asset to active.
func (s *Service) Restore(ctx context.Context, id uint, actor *uint) (*models.Asset, error) {
	var restored models.Asset
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockAsset(tx, id)
		if err != nil {
			return err
		}
		from := lifecycle.StateOf(current.IsArchived)
		to, err := lifecycle.Next(from, lifecycle.Restore)
		if err != nil {
			return err
		}

		if err := setArchived(tx, id, false); err != nil {
			return err
		}
		if _, err := s.history.WithTx(tx).Append(ctx, history.AppendInput{
			AssetID:     id,
			ChangedBy:   actor,
			ChangeType:  models.ChangeRestored,
			OldValue:    models.Ptr(string(from)),
			NewValue:    models.Ptr(string(to)),
			Description: models.Ptr("Asset restored"),
		}); err != nil {
			return err
		}

		return tx.First(&restored, id).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("asset restored", zap.Uint("asset_id", id))
	return &restored, nil
}

// PermanentDelete removes an archived asset together with its complaints,
// maintenance schedules and history. The asset row goes last and the whole
// cascade commits or rolls back as one unit. The removal itself leaves no
// audit row since the asset's trail is part of the cascade.
func (s *Service) PermanentDelete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockAsset(tx, id)
		if err != nil {
			return err
		}
		if _, err := lifecycle.Next(lifecycle.StateOf(current.IsArchived), lifecycle.PermanentDelete); err != nil {
			return err
		}

		dependents := []interface{}{
			&models.Complaint{},
			&models.MaintenanceSchedule{},
			&models.AssetHistory{},
		}
		for _, model := range dependents {
			if err := tx.Where("asset_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		res := tx.Delete(&models.Asset{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("permanent delete of asset %d affected %d rows", id, res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("asset permanently deleted", zap.Uint("asset_id", id))
	return nil
}

// Get returns the asset regardless of archive state, or nil when it does
// not exist.
func (s *Service) Get(ctx context.Context, id uint) (*models.Asset, error) {
	var asset models.Asset
	err := s.db.WithContext(ctx).First(&asset, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// GetByQRCode resolves a scanned code. Archived assets resolve too.
func (s *Service) GetByQRCode(ctx context.Context, code string) (*models.Asset, error) {
	var asset models.Asset
	err := s.db.WithContext(ctx).Where("qr_code = ?", code).First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// FindByIDs loads the given assets in id order. Unknown ids are skipped.
func (s *Service) FindByIDs(ctx context.Context, ids []uint) ([]models.Asset, error) {
	found := make([]models.Asset, 0, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&found).Error; err != nil {
		return nil, err
	}
	return found, nil
}

// RequireActive loads an asset that exists and is not archived. Archived
// assets are reported as not found. tx may be nil.
func (s *Service) RequireActive(ctx context.Context, tx *gorm.DB, id uint) (*models.Asset, error) {
	if tx == nil {
		tx = s.db
	}
	var asset models.Asset
	err := tx.WithContext(ctx).Where("id = ? AND is_archived = ?", id, false).First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("asset", id)
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// ListFilter narrows List. IsArchived nil means active assets only.
type ListFilter struct {
	Search     string
	Category   models.AssetCategory
	Condition  models.AssetCondition
	Owner      string
	IsArchived *bool
	models.Pagination
}

// List returns one page of assets, newest first. Search matches name or
// description case-insensitively; owner is a case-insensitive substring.
func (s *Service) List(ctx context.Context, f ListFilter) (models.Page[models.Asset], error) {
	p := f.Pagination.Normalize()

	archived := false
	if f.IsArchived != nil {
		archived = *f.IsArchived
	}

	q := s.db.WithContext(ctx).Model(&models.Asset{}).Where("is_archived = ?", archived)
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?", like, like)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Condition != "" {
		q = q.Where("condition = ?", f.Condition)
	}
	if owner := strings.TrimSpace(f.Owner); owner != "" {
		q = q.Where("LOWER(owner) LIKE ?", "%"+strings.ToLower(owner)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return models.Page[models.Asset]{}, err
	}

	var items []models.Asset
	if err := q.Order("created_at DESC").Order("id DESC").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&items).Error; err != nil {
		return models.Page[models.Asset]{}, err
	}

	return models.NewPage(items, total, p), nil
}

// lockAsset loads the row for a read-modify-write inside tx.
func lockAsset(tx *gorm.DB, id uint) (*models.Asset, error) {
	var asset models.Asset
	err := database.ForUpdate(tx).First(&asset, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("asset", id)
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func setArchived(tx *gorm.DB, id uint, archived bool) error {
	return tx.Model(&models.Asset{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_archived": archived,
		"updated_at":  time.Now().UTC(),
	}).Error
}
