// Package complaints handles malfunction reports, including the public
// submission path reached through a scanned QR code.
package complaints

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xelth-com/eckassets/internal/apperr"
	"github.com/xelth-com/eckassets/internal/database"
	"github.com/xelth-com/eckassets/internal/models"
	"github.com/xelth-com/eckassets/internal/services/assets"
	"github.com/xelth-com/eckassets/internal/services/history"
)

// Service manages complaints
type Service struct {
	db      *gorm.DB
	assets  *assets.Service
	history *history.Service
	log     *zap.Logger
}

// NewService creates a new complaint service
func NewService(db *gorm.DB, assetSvc *assets.Service, hist *history.Service, log *zap.Logger) *Service {
	return &Service{db: db, assets: assetSvc, history: hist, log: log}
}

// CreateInput describes a new complaint
type CreateInput struct {
	AssetID     uint                   `json:"assetId"`
	SenderName  string                 `json:"senderName"`
	Description string                 `json:"description"`
	Status      models.ComplaintStatus `json:"status,omitempty"`
}

func (in *CreateInput) validate() error {
	in.SenderName = strings.TrimSpace(in.SenderName)
	in.Description = strings.TrimSpace(in.Description)
	if in.SenderName == "" {
		return apperr.Invalid("senderName is required")
	}
	if in.Description == "" {
		return apperr.Invalid("description is required")
	}
	if in.Status == "" {
		in.Status = models.ComplaintNeedsRepair
	}
	if !in.Status.Valid() {
		return apperr.Invalid("unknown status %q", in.Status)
	}
	return nil
}

// Create files a complaint. The asset must exist and be active; an archived
// asset is reported as not found.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Complaint, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	complaint := &models.Complaint{
		AssetID:     in.AssetID,
		SenderName:  in.SenderName,
		Description: in.Description,
		Status:      in.Status,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.assets.RequireActive(ctx, tx, in.AssetID); err != nil {
			return err
		}
		return tx.Create(complaint).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("complaint filed",
		zap.Uint("complaint_id", complaint.ID),
		zap.Uint("asset_id", complaint.AssetID),
		zap.String("status", string(complaint.Status)),
	)
	return complaint, nil
}

// CreateByQRCode resolves a scanned code and files the complaint against it.
func (s *Service) CreateByQRCode(ctx context.Context, code, senderName, description string) (*models.Complaint, error) {
	asset, err := s.assets.GetByQRCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, apperr.NotFound("asset", code)
	}
	return s.Create(ctx, CreateInput{
		AssetID:     asset.ID,
		SenderName:  senderName,
		Description: description,
	})
}

// Get returns the complaint with its asset, or nil when it does not exist.
func (s *Service) Get(ctx context.Context, id uint) (*models.Complaint, error) {
	var c models.Complaint
	err := s.db.WithContext(ctx).Preload("Asset").First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListFilter narrows List
type ListFilter struct {
	AssetID *uint
	Status  models.ComplaintStatus
	Search  string
	models.Pagination
}

// List returns one page of complaints, newest first.
func (s *Service) List(ctx context.Context, f ListFilter) (models.Page[models.Complaint], error) {
	p := f.Pagination.Normalize()

	q := s.db.WithContext(ctx).Model(&models.Complaint{})
	if f.AssetID != nil {
		q = q.Where("asset_id = ?", *f.AssetID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(sender_name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return models.Page[models.Complaint]{}, err
	}

	var items []models.Complaint
	if err := q.Preload("Asset").
		Order("created_at DESC").Order("id DESC").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&items).Error; err != nil {
		return models.Page[models.Complaint]{}, err
	}
	return models.NewPage(items, total, p), nil
}

// UpdateStatus moves a complaint to status. Moving to repaired records the
// resolver and appends a complaint_resolved row in the same transaction.
func (s *Service) UpdateStatus(ctx context.Context, id uint, status models.ComplaintStatus, actor *uint) (*models.Complaint, error) {
	if !status.Valid() {
		return nil, apperr.Invalid("unknown status %q", status)
	}

	var updated models.Complaint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Complaint
		err := database.ForUpdate(tx).First(&current, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("complaint", id)
		}
		if err != nil {
			return err
		}

		changes := map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}
		resolving := status == models.ComplaintRepaired && current.Status != models.ComplaintRepaired
		if resolving {
			changes["resolved_by"] = actor
		}
		if err := tx.Model(&models.Complaint{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return err
		}

		if resolving {
			if _, err := s.history.WithTx(tx).LogComplaintResolved(ctx, current.AssetID, actor, id); err != nil {
				return err
			}
		}

		return tx.Preload("Asset").First(&updated, id).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("complaint status updated", zap.Uint("complaint_id", id), zap.String("status", string(status)))
	return &updated, nil
}

// Delete removes a complaint.
func (s *Service) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Complaint{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("complaint", id)
	}
	return nil
}

// CountByAsset returns how many complaints reference the asset.
func (s *Service) CountByAsset(ctx context.Context, assetID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Complaint{}).Where("asset_id = ?", assetID).Count(&n).Error
	return n, err
}
