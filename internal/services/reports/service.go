// Package reports returns unpaginated, oldest-first row sets for export.
// Rendering them into files is left to the caller.
package reports

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xelth-com/eckassets/internal/models"
)

// Filter bounds a report. From and To apply to created_at, or to
// scheduled_date for maintenance.
type Filter struct {
	From            *time.Time
	To              *time.Time
	Category        models.AssetCategory
	Condition       models.AssetCondition
	Status          models.ComplaintStatus
	IncludeArchived bool
	IsCompleted     *bool
}

// Service builds reports
type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewService creates a new report service
func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

func dateRange(q *gorm.DB, column string, f Filter) *gorm.DB {
	if f.From != nil {
		q = q.Where(column+" >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where(column+" <= ?", f.To.UTC())
	}
	return q
}

// Assets lists assets created in the range, oldest first.
func (s *Service) Assets(ctx context.Context, f Filter) ([]models.Asset, error) {
	q := dateRange(s.db.WithContext(ctx).Model(&models.Asset{}), "created_at", f)
	if !f.IncludeArchived {
		q = q.Where("is_archived = ?", false)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Condition != "" {
		q = q.Where("condition = ?", f.Condition)
	}

	rows := make([]models.Asset, 0)
	err := q.Order("created_at ASC").Order("id ASC").Find(&rows).Error
	return rows, err
}

// Complaints lists complaints filed in the range, oldest first.
func (s *Service) Complaints(ctx context.Context, f Filter) ([]models.Complaint, error) {
	q := dateRange(s.db.WithContext(ctx).Model(&models.Complaint{}), "complaints.created_at", f)
	if f.Status != "" {
		q = q.Where("complaints.status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Joins("JOIN assets ON assets.id = complaints.asset_id").Where("assets.category = ?", f.Category)
	}

	rows := make([]models.Complaint, 0)
	err := q.Preload("Asset").Order("complaints.created_at ASC").Order("complaints.id ASC").Find(&rows).Error
	return rows, err
}

// Maintenance lists schedules dated in the range, oldest first.
func (s *Service) Maintenance(ctx context.Context, f Filter) ([]models.MaintenanceSchedule, error) {
	q := dateRange(s.db.WithContext(ctx).Model(&models.MaintenanceSchedule{}), "maintenance_schedules.scheduled_date", f)
	if f.IsCompleted != nil {
		q = q.Where("maintenance_schedules.is_completed = ?", *f.IsCompleted)
	}
	if f.Category != "" {
		q = q.Joins("JOIN assets ON assets.id = maintenance_schedules.asset_id").Where("assets.category = ?", f.Category)
	}

	rows := make([]models.MaintenanceSchedule, 0)
	err := q.Preload("Asset").
		Order("maintenance_schedules.scheduled_date ASC").Order("maintenance_schedules.id ASC").
		Find(&rows).Error
	return rows, err
}
