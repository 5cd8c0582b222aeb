// Package testutil provides a migrated SQLite store and small fixtures for
// service tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xelth-com/eckassets/internal/database"
	"github.com/xelth-com/eckassets/internal/models"
)

// NewDB opens a fresh SQLite file under t.TempDir and migrates every table.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "eckassets_test.db"), nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Logger returns a no-op logger for services under test.
func Logger() *zap.Logger {
	return zap.NewNop()
}

// CreateUser inserts a user row directly.
func CreateUser(t testing.TB, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()
	u := &models.User{Email: email, Password: "x", Name: email, Role: role, IsActive: true}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateAsset inserts an active asset row directly, bypassing the lifecycle
// service.
func CreateAsset(t testing.TB, db *gorm.DB, name string, category models.AssetCategory) *models.Asset {
	t.Helper()
	a := &models.Asset{
		Name:      name,
		Category:  category,
		Condition: models.ConditionGood,
		Owner:     "IT",
		QRCode:    "TEST-" + name,
	}
	require.NoError(t, db.Create(a).Error)
	return a
}
