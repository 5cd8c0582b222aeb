package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xelth-com/eckassets/internal/models"
	"github.com/xelth-com/eckassets/internal/services/assets"
	"github.com/xelth-com/eckassets/internal/services/complaints"
	"github.com/xelth-com/eckassets/internal/services/history"
	"github.com/xelth-com/eckassets/internal/services/maintenance"
	"github.com/xelth-com/eckassets/internal/services/users"
)

const (
	demoAdminEmail    = "admin@eckassets.local"
	demoAdminPassword = "admin123"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo assets, complaints and maintenance",
	Long: `seed fills an empty store with a small demo inventory. A demo admin
account (admin@eckassets.local / admin123) is created when missing. Stores
that already hold assets are left alone unless --force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, logg, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		report, err := seedDemo(cmd.Context(), db.DB, logg, time.Now().UTC(), seedForce)
		if err != nil {
			return err
		}
		if report.Skipped {
			fmt.Fprintln(cmd.OutOrStdout(), "store already has assets; use --force to add demo data anyway")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d assets, %d complaints, %d maintenance schedules\n",
			report.Assets, report.Complaints, report.Maintenance)
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "seed even when assets already exist")
}

type seedReport struct {
	Skipped     bool
	Assets      int
	Complaints  int
	Maintenance int
}

type demoAsset struct {
	name      string
	category  models.AssetCategory
	condition models.AssetCondition
	owner     string
}

var demoAssets = []demoAsset{
	{"Monitor Dell P2419H", models.CategoryMonitor, models.ConditionGood, "Finance"},
	{"Monitor LG 24MK600", models.CategoryMonitor, models.ConditionBroken, "Marketing"},
	{"PC Lenovo ThinkCentre M720", models.CategoryCPU, models.ConditionGood, "Finance"},
	{"Laptop ThinkPad T14", models.CategoryLaptop, models.ConditionNew, "IT"},
	{"Printer HP LaserJet M404", models.CategoryPrinter, models.ConditionUnderRepair, "Front Office"},
	{"AC Daikin 1.5 PK", models.CategoryAirConditioner, models.ConditionGood, "Meeting Room"},
	{"Projector Epson EB-X51", models.CategoryProjector, models.ConditionGood, "Meeting Room"},
	{"Switch Cisco SG350", models.CategoryNetwork, models.ConditionGood, "Server Room"},
}

// seedDemo goes through the services so the demo data carries the same
// audit rows real traffic would.
func seedDemo(ctx context.Context, db *gorm.DB, log *zap.Logger, now time.Time, force bool) (seedReport, error) {
	var report seedReport

	var existing int64
	if err := db.WithContext(ctx).Model(&models.Asset{}).Count(&existing).Error; err != nil {
		return report, err
	}
	if existing > 0 && !force {
		report.Skipped = true
		return report, nil
	}

	userSvc := users.NewService(db, log)
	hist := history.NewService(db, log)
	assetSvc := assets.NewService(db, hist, log)
	complaintSvc := complaints.NewService(db, assetSvc, hist, log)
	maintenanceSvc := maintenance.NewService(db, hist, log)

	admin, err := ensureDemoAdmin(ctx, db, userSvc)
	if err != nil {
		return report, err
	}

	created := make([]*models.Asset, 0, len(demoAssets))
	for _, d := range demoAssets {
		a, err := assetSvc.Create(ctx, assets.CreateInput{
			Name:      d.name,
			Category:  d.category,
			Condition: d.condition,
			Owner:     d.owner,
		})
		if err != nil {
			return report, fmt.Errorf("seed asset %q: %w", d.name, err)
		}
		created = append(created, a)
		report.Assets++
	}

	demoComplaints := []struct {
		asset  int
		sender string
		text   string
		status models.ComplaintStatus
	}{
		{1, "Rina", "Screen flickers and then goes black", models.ComplaintUrgent},
		{4, "Budi", "Paper jams on every second page", models.ComplaintInRepair},
		{5, "Sari", "Not cooling, water dripping from the unit", models.ComplaintNeedsRepair},
	}
	for _, c := range demoComplaints {
		if _, err := complaintSvc.Create(ctx, complaints.CreateInput{
			AssetID:     created[c.asset].ID,
			SenderName:  c.sender,
			Description: c.text,
			Status:      c.status,
		}); err != nil {
			return report, fmt.Errorf("seed complaint: %w", err)
		}
		report.Complaints++
	}

	demoSchedules := []struct {
		asset  int
		title  string
		offset time.Duration
		done   bool
	}{
		{5, "Clean AC filters", 3 * 24 * time.Hour, false},
		{2, "Dust and thermal paste", 10 * 24 * time.Hour, false},
		{6, "Replace projector lamp", -5 * 24 * time.Hour, false},
		{0, "Calibrate colours", -30 * 24 * time.Hour, true},
	}
	for _, s := range demoSchedules {
		schedule, err := maintenanceSvc.Create(ctx, maintenance.CreateInput{
			AssetID:       created[s.asset].ID,
			ScheduledBy:   admin.ID,
			Title:         s.title,
			ScheduledDate: now.Add(s.offset),
		})
		if err != nil {
			return report, fmt.Errorf("seed maintenance: %w", err)
		}
		if s.done {
			completedAt := now.Add(s.offset)
			if _, err := maintenanceSvc.Complete(ctx, schedule.ID, &completedAt, &admin.ID); err != nil {
				return report, fmt.Errorf("complete maintenance: %w", err)
			}
		}
		report.Maintenance++
	}

	log.Info("demo data seeded",
		zap.Int("assets", report.Assets),
		zap.Int("complaints", report.Complaints),
		zap.Int("maintenance", report.Maintenance),
	)
	return report, nil
}

func ensureDemoAdmin(ctx context.Context, db *gorm.DB, userSvc *users.Service) (*models.User, error) {
	var admin models.User
	err := db.WithContext(ctx).Where("email = ?", demoAdminEmail).Limit(1).Find(&admin).Error
	if err != nil {
		return nil, err
	}
	if admin.ID != 0 {
		return &admin, nil
	}
	return userSvc.Create(ctx, users.CreateInput{
		Email:    demoAdminEmail,
		Password: demoAdminPassword,
		Name:     "Demo Admin",
		Role:     models.RoleAdmin,
	})
}
