// Package maintenance schedules and completes asset servicing.
package maintenance

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
	"github.com/xelth-com/eckassets/internal/models"
	"github.com/xelth-com/eckassets/internal/services/history"
)

// ReasonAlreadyCompleted is returned when completing a finished schedule
const ReasonAlreadyCompleted = "maintenance already completed"

// Service manages maintenance schedules
type Service struct {
	db      *gorm.DB
	history *history.Service
	log     *zap.Logger
	now     func() time.Time
}

// NewService creates a new maintenance service
func NewService(db *gorm.DB, hist *history.Service, log *zap.Logger) *Service {
	return &Service{
		db:      db,
		history: hist,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateInput describes a planned maintenance
type CreateInput struct {
	AssetID       uint      `json:"assetId"`
	ScheduledBy   uint      `json:"scheduledBy"`
	Title         string    `json:"title"`
	Description   *string   `json:"description,omitempty"`
	ScheduledDate time.Time `json:"scheduledDate"`
}

// Create plans a maintenance. Both the asset and the scheduling user must
// exist.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.MaintenanceSchedule, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, apperr.Invalid("title is required")
	}
	if in.ScheduledDate.IsZero() {
		return nil, apperr.Invalid("scheduledDate is required")
	}

	db := s.db.WithContext(ctx)
	if err := exists(db, &models.Asset{}, "asset", in.AssetID); err != nil {
		return nil, err
	}
	if err := exists(db, &models.User{}, "user", in.ScheduledBy); err != nil {
		return nil, err
	}

	m := &models.MaintenanceSchedule{
		AssetID:       in.AssetID,
		ScheduledBy:   in.ScheduledBy,
		Title:         in.Title,
		Description:   in.Description,
		ScheduledDate: in.ScheduledDate.UTC(),
	}
	if err := db.Create(m).Error; err != nil {
		return nil, err
	}

	s.log.Info("maintenance scheduled",
		zap.Uint("maintenance_id", m.ID),
		zap.Uint("asset_id", m.AssetID),
		zap.Time("scheduled_date", m.ScheduledDate),
	)
	return m, nil
}

// Get returns a schedule with its asset, or nil when it does not exist.
func (s *Service) Get(ctx context.Context, id uint) (*models.MaintenanceSchedule, error) {
	var m models.MaintenanceSchedule
	err := s.db.WithContext(ctx).Preload("Asset").First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListFilter narrows List. From and To bound the scheduled date inclusively.
type ListFilter struct {
	AssetID     *uint
	IsCompleted *bool
	From        *time.Time
	To          *time.Time
	models.Pagination
}

// List returns one page of schedules, latest scheduled date first.
func (s *Service) List(ctx context.Context, f ListFilter) (models.Page[models.MaintenanceSchedule], error) {
	p := f.Pagination.Normalize()

	q := s.db.WithContext(ctx).Model(&models.MaintenanceSchedule{})
	if f.AssetID != nil {
		q = q.Where("asset_id = ?", *f.AssetID)
	}
	if f.IsCompleted != nil {
		q = q.Where("is_completed = ?", *f.IsCompleted)
	}
	if f.From != nil {
		q = q.Where("scheduled_date >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("scheduled_date <= ?", f.To.UTC())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return models.Page[models.MaintenanceSchedule]{}, err
	}

	var items []models.MaintenanceSchedule
	if err := q.Preload("Asset").
		Order("scheduled_date DESC").Order("id DESC").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&items).Error; err != nil {
		return models.Page[models.MaintenanceSchedule]{}, err
	}
	return models.NewPage(items, total, p), nil
}

// Recent returns up to limit schedules of an asset, most recently recorded
// first. Plans dated far ahead do not crowd out work already done.
func (s *Service) Recent(ctx context.Context, assetID uint, limit int) ([]models.MaintenanceSchedule, error) {
	rows := make([]models.MaintenanceSchedule, 0, limit)
	err := s.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Upcoming returns open schedules due within the next days, soonest first.
func (s *Service) Upcoming(ctx context.Context, days int) ([]models.MaintenanceSchedule, error) {
	if days <= 0 {
		days = 7
	}
	now := s.now()
	rows := make([]models.MaintenanceSchedule, 0)
	err := s.db.WithContext(ctx).
		Preload("Asset").
		Where("is_completed = ?", false).
		Where("scheduled_date >= ? AND scheduled_date <= ?", now, now.AddDate(0, 0, days)).
		Order("scheduled_date ASC").
		Find(&rows).Error
	return rows, err
}

// UpdateInput holds the editable fields; nil leaves a field unchanged.
type UpdateInput struct {
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	ScheduledDate *time.Time `json:"scheduledDate,omitempty"`
}

// Update edits a schedule.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*models.MaintenanceSchedule, error) {
	changes := map[string]interface{}{"updated_at": s.now()}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperr.Invalid("title must not be empty")
		}
		changes["title"] = title
	}
	if in.Description != nil {
		changes["description"] = *in.Description
	}
	if in.ScheduledDate != nil {
		changes["scheduled_date"] = in.ScheduledDate.UTC()
	}

	db := s.db.WithContext(ctx)
	res := db.Model(&models.MaintenanceSchedule{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("maintenance", id)
	}

	var m models.MaintenanceSchedule
	if err := db.Preload("Asset").First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// Complete marks a schedule done. completedAt overrides the server time.
// A maintenance note is appended to the asset's history.
func (s *Service) Complete(ctx context.Context, id uint, completedAt *time.Time, actor *uint) (*models.MaintenanceSchedule, error) {
	at := s.now()
	if completedAt != nil {
		at = completedAt.UTC()
	}

	var done models.MaintenanceSchedule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.MaintenanceSchedule
		err := database.ForUpdate(tx).First(&current, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("maintenance", id)
		}
		if err != nil {
			return err
		}
		if current.IsCompleted {
			return apperr.Precondition(ReasonAlreadyCompleted)
		}

		if err := tx.Model(&models.MaintenanceSchedule{}).Where("id = ?", id).Updates(map[string]interface{}{
			"is_completed": true,
			"completed_at": at,
			"updated_at":   s.now(),
		}).Error; err != nil {
			return err
		}

		note := fmt.Sprintf("Maintenance completed: %s", current.Title)
		if _, err := s.history.WithTx(tx).LogMaintenance(ctx, current.AssetID, actor, note); err != nil {
			return err
		}

		return tx.Preload("Asset").First(&done, id).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("maintenance completed", zap.Uint("maintenance_id", id), zap.Time("completed_at", at))
	return &done, nil
}

// Delete removes a schedule.
func (s *Service) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.MaintenanceSchedule{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("maintenance", id)
	}
	return nil
}

func exists(db *gorm.DB, model interface{}, entity string, id uint) error {
	var n int64
	if err := db.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(entity, id)
	}
	return nil
}
