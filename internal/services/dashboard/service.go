// Package dashboard computes the overview counters.
package dashboard

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xelth-com/eckassets/internal/models"
)

const (
	recentComplaints = 5
	recentActivity   = 10
	upcomingWindow   = 7 * 24 * time.Hour
)

// Stats is the dashboard payload. The grouped maps carry every enum value,
// zero when absent.
type Stats struct {
	TotalAssets          int64                    `json:"totalAssets"`
	ArchivedAssets       int64                    `json:"archivedAssets"`
	AssetsByCategory     map[string]int64         `json:"assetsByCategory"`
	AssetsByCondition    map[string]int64         `json:"assetsByCondition"`
	ComplaintsByStatus   map[string]int64         `json:"complaintsByStatus"`
	OpenComplaints       int64                    `json:"openComplaints"`
	MaintenanceUpcoming  int64                    `json:"maintenanceUpcoming"`
	MaintenanceOverdue   int64                    `json:"maintenanceOverdue"`
	MaintenanceCompleted int64                    `json:"maintenanceCompleted"`
	RecentComplaints     []models.Complaint       `json:"recentComplaints"`
	RecentActivity       []models.UserActivityLog `json:"recentActivity"`
}

// Service computes dashboard figures
type Service struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

// NewService creates a new dashboard service
func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log, now: func() time.Time { return time.Now().UTC() }}
}

type groupCount struct {
	Label string
	Total int64
}

func (s *Service) countBy(db *gorm.DB, model interface{}, column string, where string, args ...interface{}) (map[string]int64, error) {
	var rows []groupCount
	q := db.Model(model).Select(column + " AS label, COUNT(*) AS total")
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Group(column).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Label] = r.Total
	}
	return out, nil
}

func count(db *gorm.DB, model interface{}, where string, args ...interface{}) (int64, error) {
	var n int64
	err := db.Model(model).Where(where, args...).Count(&n).Error
	return n, err
}

// Stats gathers every counter in one pass over the store.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	db := s.db.WithContext(ctx)
	now := s.now()
	stats := &Stats{}
	var err error

	if stats.TotalAssets, err = count(db, &models.Asset{}, "is_archived = ?", false); err != nil {
		return nil, err
	}
	if stats.ArchivedAssets, err = count(db, &models.Asset{}, "is_archived = ?", true); err != nil {
		return nil, err
	}

	byCategory, err := s.countBy(db, &models.Asset{}, "category", "is_archived = ?", false)
	if err != nil {
		return nil, err
	}
	stats.AssetsByCategory = make(map[string]int64)
	for _, c := range models.AssetCategories() {
		stats.AssetsByCategory[string(c)] = byCategory[string(c)]
	}

	byCondition, err := s.countBy(db, &models.Asset{}, "condition", "is_archived = ?", false)
	if err != nil {
		return nil, err
	}
	stats.AssetsByCondition = make(map[string]int64)
	for _, c := range models.AssetConditions() {
		stats.AssetsByCondition[string(c)] = byCondition[string(c)]
	}

	byStatus, err := s.countBy(db, &models.Complaint{}, "status", "")
	if err != nil {
		return nil, err
	}
	stats.ComplaintsByStatus = make(map[string]int64)
	for _, st := range models.ComplaintStatuses() {
		stats.ComplaintsByStatus[string(st)] = byStatus[string(st)]
		if st != models.ComplaintRepaired {
			stats.OpenComplaints += byStatus[string(st)]
		}
	}

	if stats.MaintenanceUpcoming, err = count(db, &models.MaintenanceSchedule{},
		"is_completed = ? AND scheduled_date >= ? AND scheduled_date <= ?", false, now, now.Add(upcomingWindow)); err != nil {
		return nil, err
	}
	if stats.MaintenanceOverdue, err = count(db, &models.MaintenanceSchedule{},
		"is_completed = ? AND scheduled_date < ?", false, now); err != nil {
		return nil, err
	}
	if stats.MaintenanceCompleted, err = count(db, &models.MaintenanceSchedule{}, "is_completed = ?", true); err != nil {
		return nil, err
	}

	stats.RecentComplaints = make([]models.Complaint, 0, recentComplaints)
	if err := db.Preload("Asset").Order("created_at DESC").Order("id DESC").
		Limit(recentComplaints).Find(&stats.RecentComplaints).Error; err != nil {
		return nil, err
	}

	stats.RecentActivity = make([]models.UserActivityLog, 0, recentActivity)
	if err := db.Order("created_at DESC").Order("id DESC").
		Limit(recentActivity).Find(&stats.RecentActivity).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
