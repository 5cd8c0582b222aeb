package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xelth-com/eckassets/internal/apperr"
	"github.com/xelth-com/eckassets/internal/config"
	"github.com/xelth-com/eckassets/internal/models"
	"github.com/xelth-com/eckassets/internal/services/assets"
	"github.com/xelth-com/eckassets/internal/services/complaints"
	"github.com/xelth-com/eckassets/internal/services/history"
	"github.com/xelth-com/eckassets/internal/services/maintenance"
	"github.com/xelth-com/eckassets/internal/testutil"
)

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func newAdvisor(t *testing.T, gen Generator) (*Advisor, *assets.Service, uint) {
	t.Helper()
	db := testutil.NewDB(t)
	log := testutil.Logger()
	hist := history.NewService(db, log)
	assetSvc := assets.NewService(db, hist, log)
	complaintSvc := complaints.NewService(db, assetSvc, hist, log)
	maintenanceSvc := maintenance.NewService(db, hist, log)
	user := testutil.CreateUser(t, db, "planner@example.com", models.RoleStaff)

	advisor := NewAdvisor(gen, assetSvc, complaintSvc, maintenanceSvc, hist, time.Second, log)
	asset, err := assetSvc.Create(context.Background(), assets.CreateInput{
		Name: "Laptop Lenovo T14", Category: models.CategoryLaptop, Condition: models.ConditionGood, Owner: "Finance",
	})
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := complaintSvc.Create(ctx, complaints.CreateInput{AssetID: asset.ID, SenderName: "Budi", Description: "battery drains"})
		require.NoError(t, err)
	}
	for i := 0; i < 7; i++ {
		_, err := maintenanceSvc.Create(ctx, maintenance.CreateInput{
			AssetID: asset.ID, ScheduledBy: user.ID, Title: "Battery check",
			ScheduledDate: time.Date(2026, 1, 1+i, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}
	for i := 0; i < 12; i++ {
		_, err := hist.LogMaintenance(ctx, asset.ID, nil, "note")
		require.NoError(t, err)
	}
	return advisor, assetSvc, asset.ID
}

func TestAgeInYears(t *testing.T) {
	since := time.Date(2022, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, AgeInYears(since, time.Date(2023, 6, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, AgeInYears(since, time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 3, AgeInYears(since, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, AgeInYears(since, since.AddDate(-1, 0, 0)))
}

func TestAdvisorContext(t *testing.T) {
	advisor, _, id := newAdvisor(t, &fakeGenerator{})

	c, err := advisor.Context(context.Background(), id)
	require.NoError(t, err)
	assert.EqualValues(t, 3, c.ComplaintCount)
	assert.Len(t, c.Maintenance, maintenanceContextSize)
	assert.Len(t, c.History, historyContextSize)
	assert.Equal(t, 7, c.Maintenance[0].ScheduledDate.Day(), "newest first")
	assert.Equal(t, 0, c.AgeYears)

	_, err = advisor.Context(context.Background(), 9999)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestGetSuggestionsStructured(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n{\"feasibility\":\"Layak\",\"maintenancePrediction\":\"Ganti baterai\",\"replacementRecommendation\":\"2027\"}\n```"}
	advisor, _, id := newAdvisor(t, gen)

	s, err := advisor.GetSuggestions(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, Suggestions{"Layak", "Ganti baterai", "2027"}, *s)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Laptop Lenovo T14")
	assert.Contains(t, gen.prompts[0], "Complaints filed: 3")
	assert.Contains(t, gen.prompts[0], "maintenancePrediction")
}

func TestGetSuggestionsProseWithoutKeywords(t *testing.T) {
	gen := &fakeGenerator{reply: "I am not sure what you mean."}
	advisor, _, id := newAdvisor(t, gen)

	s, err := advisor.GetSuggestions(context.Background(), id)
	require.NoError(t, err)
	assert.NotEmpty(t, s.Feasibility)
	assert.NotEmpty(t, s.MaintenancePrediction)
	assert.NotEmpty(t, s.ReplacementRecommendation)
}

func TestGetSuggestionsPropagatesUpstreamErrors(t *testing.T) {
	for _, upstream := range []error{ErrEmptyResponse, &EndpointError{StatusCode: 500, Body: "boom"}} {
		advisor, _, id := newAdvisor(t, &fakeGenerator{err: upstream})
		_, err := advisor.GetSuggestions(context.Background(), id)
		assert.ErrorIs(t, err, upstream)
	}
}

func TestGetSuggestionsMissingAsset(t *testing.T) {
	gen := &fakeGenerator{}
	advisor, _, _ := newAdvisor(t, gen)

	_, err := advisor.GetSuggestions(context.Background(), 4242)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Empty(t, gen.prompts, "no endpoint call for a missing asset")
}

func TestSingleFieldVariantsReturnRawText(t *testing.T) {
	raw := `{"feasibility":"not parsed"}`
	gen := &fakeGenerator{reply: raw}
	advisor, _, id := newAdvisor(t, gen)
	ctx := context.Background()

	got, err := advisor.AnalyzeCondition(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	got, err = advisor.PredictMaintenance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	got, err = advisor.RecommendReplacement(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	require.Len(t, gen.prompts, 3)
	assert.Contains(t, gen.prompts[0], "condition")
	assert.Contains(t, gen.prompts[1], "RECENT MAINTENANCE")
	assert.Contains(t, gen.prompts[2], "replaced")
}

func TestArchivedAssetStillAdvised(t *testing.T) {
	gen := &fakeGenerator{reply: "Kelayakan: cukup"}
	advisor, assetSvc, id := newAdvisor(t, gen)

	_, err := assetSvc.Archive(context.Background(), id, nil)
	require.NoError(t, err)

	s, err := advisor.GetSuggestions(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "cukup", s.Feasibility)
}

func TestNewGenerator(t *testing.T) {
	gen, closeFn, err := NewGenerator(context.Background(), config.AIConfig{Provider: "rest", APIKey: "k", Model: "m", BaseURL: "http://localhost", Timeout: time.Second}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &RESTClient{}, gen)
	assert.NoError(t, closeFn())

	_, _, err = NewGenerator(context.Background(), config.AIConfig{Provider: "pigeon"}, zap.NewNop())
	assert.Error(t, err)
}
