package history

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/eckassets/internal/apperr"
	"github.com/xelth-com/eckassets/internal/models"
	"github.com/xelth-com/eckassets/internal/testutil"
)

func TestAppendValidatesReferences(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewService(db, testutil.Logger())
	asset := testutil.CreateAsset(t, db, "Monitor", models.CategoryMonitor)

	_, err := svc.Append(ctx, AppendInput{AssetID: 999, ChangeType: "note"})
	var nf *apperr.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "asset", nf.Entity)

	_, err = svc.Append(ctx, AppendInput{AssetID: asset.ID, ChangedBy: models.Ptr(uint(42)), ChangeType: "note"})
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "user", nf.Entity)

	user := testutil.CreateUser(t, db, "tech@example.com", models.RoleStaff)
	row, err := svc.Append(ctx, AppendInput{
		AssetID:     asset.ID,
		ChangedBy:   &user.ID,
		ChangeType:  "relocated",
		OldValue:    models.Ptr("Room 101"),
		NewValue:    models.Ptr("Room 202"),
		Description: models.Ptr("Moved with the finance team"),
	})
	require.NoError(t, err)
	assert.NotZero(t, row.ID)
	assert.False(t, row.CreatedAt.IsZero())
	assert.Equal(t, user.ID, *row.ChangedBy)
}

func TestAppendRequiresChangeType(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db, testutil.Logger())
	asset := testutil.CreateAsset(t, db, "Mouse", models.CategoryMouse)

	_, err := svc.Append(context.Background(), AppendInput{AssetID: asset.ID})
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
}

func TestListByAsset(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewService(db, testutil.Logger())
	asset := testutil.CreateAsset(t, db, "CPU", models.CategoryCPU)

	rows, err := svc.ListByAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	_, err = svc.ListByAsset(ctx, 12345)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = svc.LogStatusChange(ctx, asset.ID, nil, models.ConditionGood, models.ConditionBroken)
	require.NoError(t, err)
	_, err = svc.LogMaintenance(ctx, asset.ID, nil, "fan cleaned")
	require.NoError(t, err)

	rows, err = svc.ListByAsset(ctx, asset.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.ChangeMaintenance, rows[0].ChangeType)
	assert.Equal(t, models.ChangeStatus, rows[1].ChangeType)
	assert.Nil(t, rows[1].ChangedBy)
	assert.Equal(t, "good", *rows[1].OldValue)
	assert.Equal(t, "broken", *rows[1].NewValue)
}

func TestGetReturnsNilWhenMissing(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewService(db, testutil.Logger())

	row, err := svc.Get(ctx, 77)
	require.NoError(t, err)
	assert.Nil(t, row)

	asset := testutil.CreateAsset(t, db, "Printer", models.CategoryPrinter)
	created, err := svc.LogComplaintResolved(ctx, asset.ID, nil, 314)
	require.NoError(t, err)

	row, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, models.ChangeComplaintResolved, row.ChangeType)
	assert.Equal(t, "314", *row.NewValue)
}

func TestRecentLimit(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewService(db, testutil.Logger())
	asset := testutil.CreateAsset(t, db, "Laptop", models.CategoryLaptop)

	for i := 0; i < 12; i++ {
		_, err := svc.LogMaintenance(ctx, asset.ID, nil, "check")
		require.NoError(t, err)
	}

	rows, err := svc.Recent(ctx, asset.ID, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 10)
	assert.Greater(t, rows[0].ID, rows[9].ID)
}
