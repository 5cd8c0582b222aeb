package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/eckassets/internal/models"
	"github.com/xelth-com/eckassets/internal/testutil"
)

func TestStats(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	svc := NewService(db, testutil.Logger())
	svc.now = func() time.Time { return now }

	user := testutil.CreateUser(t, db, "ops@example.com", models.RoleStaff)
	monitor := testutil.CreateAsset(t, db, "M1", models.CategoryMonitor)
	testutil.CreateAsset(t, db, "M2", models.CategoryMonitor)
	printer := testutil.CreateAsset(t, db, "P1", models.CategoryPrinter)
	require.NoError(t, db.Model(printer).Updates(map[string]interface{}{"condition": models.ConditionBroken}).Error)
	old := testutil.CreateAsset(t, db, "Old", models.CategoryCPU)
	require.NoError(t, db.Model(old).Update("is_archived", true).Error)

	for _, st := range []models.ComplaintStatus{models.ComplaintUrgent, models.ComplaintRepaired, models.ComplaintNeedsRepair} {
		require.NoError(t, db.Create(&models.Complaint{AssetID: monitor.ID, SenderName: "x", Description: "y", Status: st}).Error)
	}

	mk := func(offset time.Duration, done bool) {
		m := &models.MaintenanceSchedule{AssetID: monitor.ID, ScheduledBy: user.ID, Title: "t", ScheduledDate: now.Add(offset)}
		require.NoError(t, db.Create(m).Error)
		if done {
			require.NoError(t, db.Model(m).Update("is_completed", true).Error)
		}
	}
	mk(48*time.Hour, false)
	mk(-48*time.Hour, false)
	mk(-96*time.Hour, true)
	mk(30*24*time.Hour, false)

	require.NoError(t, db.Create(&models.UserActivityLog{UserID: user.ID, Action: "login", ResourceType: "session"}).Error)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.TotalAssets)
	assert.EqualValues(t, 1, stats.ArchivedAssets)
	assert.EqualValues(t, 2, stats.AssetsByCategory["monitor"])
	assert.EqualValues(t, 0, stats.AssetsByCategory["cpu"], "archived assets are excluded")
	assert.Contains(t, stats.AssetsByCategory, "furniture")
	assert.EqualValues(t, 1, stats.AssetsByCondition["broken"])
	assert.EqualValues(t, 2, stats.AssetsByCondition["good"])
	assert.EqualValues(t, 1, stats.ComplaintsByStatus["repaired"])
	assert.EqualValues(t, 0, stats.ComplaintsByStatus["in-repair"])
	assert.EqualValues(t, 2, stats.OpenComplaints)
	assert.EqualValues(t, 1, stats.MaintenanceUpcoming)
	assert.EqualValues(t, 1, stats.MaintenanceOverdue)
	assert.EqualValues(t, 1, stats.MaintenanceCompleted)
	assert.Len(t, stats.RecentComplaints, 3)
	assert.Len(t, stats.RecentActivity, 1)
}
