// Package activity records what authenticated users did.
package activity

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/xelth-com/eckassets/internal/apperr"
	"github.com/xelth-com/eckassets/internal/models"
)

// Actions written by the HTTP layer
const (
	ActionLogin   = "login"
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionArchive = "archive"
	ActionRestore = "restore"
)

// Service appends and lists activity rows
type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewService creates a new activity service
func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// Entry is one activity to record. Metadata is stored as a JSON document.
type Entry struct {
	UserID       uint
	Action       string
	ResourceType string
	ResourceID   *uint
	Description  *string
	Metadata     map[string]any
}

// Log appends an entry. The user must exist.
func (s *Service) Log(ctx context.Context, e Entry) (*models.UserActivityLog, error) {
	if strings.TrimSpace(e.Action) == "" || strings.TrimSpace(e.ResourceType) == "" {
		return nil, apperr.Invalid("action and resourceType are required")
	}

	db := s.db.WithContext(ctx)

	var n int64
	if err := db.Model(&models.User{}).Where("id = ?", e.UserID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperr.NotFound("user", e.UserID)
	}

	row := &models.UserActivityLog{
		UserID:       e.UserID,
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Description:  e.Description,
	}
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return nil, err
		}
		row.Metadata = datatypes.JSON(raw)
	}

	if err := db.Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// ListFilter narrows List
type ListFilter struct {
	UserID       *uint
	ResourceType string
	Action       string
	models.Pagination
}

// List returns one page of activity, newest first.
func (s *Service) List(ctx context.Context, f ListFilter) (models.Page[models.UserActivityLog], error) {
	p := f.Pagination.Normalize()

	q := s.db.WithContext(ctx).Model(&models.UserActivityLog{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.ResourceType != "" {
		q = q.Where("resource_type = ?", f.ResourceType)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return models.Page[models.UserActivityLog]{}, err
	}

	var items []models.UserActivityLog
	if err := q.Order("created_at DESC").Order("id DESC").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&items).Error; err != nil {
		return models.Page[models.UserActivityLog]{}, err
	}
	return models.NewPage(items, total, p), nil
}

// Recent returns the latest n rows across all users.
func (s *Service) Recent(ctx context.Context, n int) ([]models.UserActivityLog, error) {
	rows := make([]models.UserActivityLog, 0, n)
	err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(n).Find(&rows).Error
	return rows, err
}
