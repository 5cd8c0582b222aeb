// Package history is the append-only audit trail of asset changes. Rows are
// only removed by the permanent-delete cascade in the assets service.
package history

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xelth-com/eckassets/internal/apperr"
	"github.com/xelth-com/eckassets/internal/models"
)

// Service reads and appends AssetHistory rows
type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewService creates a new history service
func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// WithTx returns a copy bound to tx so audit rows commit or roll back with
// the change they describe.
func (s *Service) WithTx(tx *gorm.DB) *Service {
	return &Service{db: tx, log: s.log}
}

// AppendInput describes one audit row
type AppendInput struct {
	AssetID     uint    `json:"assetId"`
	ChangedBy   *uint   `json:"changedBy,omitempty"`
	ChangeType  string  `json:"changeType"`
	OldValue    *string `json:"oldValue,omitempty"`
	NewValue    *string `json:"newValue,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Append validates the references and inserts the row.
func (s *Service) Append(ctx context.Context, in AppendInput) (*models.AssetHistory, error) {
	if in.ChangeType == "" {
		return nil, apperr.Invalid("changeType is required")
	}

	db := s.db.WithContext(ctx)

	var assets int64
	if err := db.Model(&models.Asset{}).Where("id = ?", in.AssetID).Count(&assets).Error; err != nil {
		return nil, err
	}
	if assets == 0 {
		return nil, apperr.NotFound("asset", in.AssetID)
	}

	if in.ChangedBy != nil {
		var users int64
		if err := db.Model(&models.User{}).Where("id = ?", *in.ChangedBy).Count(&users).Error; err != nil {
			return nil, err
		}
		if users == 0 {
			return nil, apperr.NotFound("user", *in.ChangedBy)
		}
	}

	row := &models.AssetHistory{
		AssetID:     in.AssetID,
		ChangedBy:   in.ChangedBy,
		ChangeType:  in.ChangeType,
		OldValue:    in.OldValue,
		NewValue:    in.NewValue,
		Description: in.Description,
	}
	if err := db.Create(row).Error; err != nil {
		return nil, err
	}

	s.log.Debug("asset history appended",
		zap.Uint("asset_id", row.AssetID),
		zap.String("change_type", row.ChangeType),
		zap.Uint("history_id", row.ID),
	)
	return row, nil
}

// ListByAsset returns every row of an asset, newest first. A missing asset
// is an error; an asset without history yields an empty slice.
func (s *Service) ListByAsset(ctx context.Context, assetID uint) ([]models.AssetHistory, error) {
	db := s.db.WithContext(ctx)

	var assets int64
	if err := db.Model(&models.Asset{}).Where("id = ?", assetID).Count(&assets).Error; err != nil {
		return nil, err
	}
	if assets == 0 {
		return nil, apperr.NotFound("asset", assetID)
	}

	return s.Recent(ctx, assetID, 0)
}

// Recent returns up to limit rows of an asset, newest first. limit <= 0
// returns all of them. The asset is not checked.
func (s *Service) Recent(ctx context.Context, assetID uint, limit int) ([]models.AssetHistory, error) {
	q := s.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	rows := make([]models.AssetHistory, 0)
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Get returns a single row, or nil without error when it does not exist.
func (s *Service) Get(ctx context.Context, id uint) (*models.AssetHistory, error) {
	var row models.AssetHistory
	err := s.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// LogStatusChange records a condition transition.
func (s *Service) LogStatusChange(ctx context.Context, assetID uint, actor *uint, oldCondition, newCondition models.AssetCondition) (*models.AssetHistory, error) {
	return s.Append(ctx, AppendInput{
		AssetID:    assetID,
		ChangedBy:  actor,
		ChangeType: models.ChangeStatus,
		OldValue:   models.Ptr(string(oldCondition)),
		NewValue:   models.Ptr(string(newCondition)),
	})
}

// LogMaintenance records a free-text maintenance note.
func (s *Service) LogMaintenance(ctx context.Context, assetID uint, actor *uint, note string) (*models.AssetHistory, error) {
	return s.Append(ctx, AppendInput{
		AssetID:     assetID,
		ChangedBy:   actor,
		ChangeType:  models.ChangeMaintenance,
		Description: models.Ptr(note),
	})
}

// LogComplaintResolved records the resolution of a complaint. The complaint
// id is stored in new_value.
func (s *Service) LogComplaintResolved(ctx context.Context, assetID uint, actor *uint, complaintID uint) (*models.AssetHistory, error) {
	return s.Append(ctx, AppendInput{
		AssetID:     assetID,
		ChangedBy:   actor,
		ChangeType:  models.ChangeComplaintResolved,
		NewValue:    models.Ptr(strconv.FormatUint(uint64(complaintID), 10)),
		Description: models.Ptr("Complaint resolved"),
	})
}
