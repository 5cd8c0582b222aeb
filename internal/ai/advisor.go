package ai

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xelth-com/eckassets/internal/apperr"
	"github.com/xelth-com/eckassets/internal/services/assets"
	"github.com/xelth-com/eckassets/internal/services/complaints"
	"github.com/xelth-com/eckassets/internal/services/history"
	"github.com/xelth-com/eckassets/internal/services/maintenance"
)

const (
	maintenanceContextSize = 5
	historyContextSize     = 10
)

// Advisor gathers asset context, asks the Generator and shapes the answer.
// It never writes to the store.
type Advisor struct {
	gen         Generator
	assets      *assets.Service
	complaints  *complaints.Service
	maintenance *maintenance.Service
	history     *history.Service
	timeout     time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewAdvisor creates an Advisor. timeout bounds every endpoint call; zero
// leaves the caller's context as the only bound.
func NewAdvisor(gen Generator, assetSvc *assets.Service, complaintSvc *complaints.Service,
	maintenanceSvc *maintenance.Service, historySvc *history.Service, timeout time.Duration, logger *zap.Logger) *Advisor {
	return &Advisor{
		gen:         gen,
		assets:      assetSvc,
		complaints:  complaintSvc,
		maintenance: maintenanceSvc,
		history:     historySvc,
		timeout:     timeout,
		logger:      logger,
		now:         time.Now,
	}
}

// AgeInYears counts whole calendar years from since to now.
func AgeInYears(since, now time.Time) int {
	since, now = since.UTC(), now.UTC()
	years := now.Year() - since.Year()
	if now.Month() < since.Month() || (now.Month() == since.Month() && now.Day() < since.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// Context loads what the prompts need. A missing asset is NotFound.
func (a *Advisor) Context(ctx context.Context, assetID uint) (*AssetContext, error) {
	asset, err := a.assets.Get(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, apperr.NotFound("asset", assetID)
	}

	complaintCount, err := a.complaints.CountByAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	schedules, err := a.maintenance.Recent(ctx, assetID, maintenanceContextSize)
	if err != nil {
		return nil, err
	}
	rows, err := a.history.Recent(ctx, assetID, historyContextSize)
	if err != nil {
		return nil, err
	}

	return &AssetContext{
		Asset:          *asset,
		ComplaintCount: complaintCount,
		Maintenance:    schedules,
		History:        rows,
		AgeYears:       AgeInYears(asset.CreatedAt, a.now()),
	}, nil
}

func (a *Advisor) generate(ctx context.Context, assetID uint, kind, prompt string) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	started := time.Now()
	text, err := a.gen.GenerateContent(ctx, prompt)
	if err != nil {
		a.logger.Warn("ai request failed",
			zap.Uint("asset_id", assetID),
			zap.String("kind", kind),
			zap.Error(err),
		)
		return "", err
	}
	a.logger.Info("ai request completed",
		zap.Uint("asset_id", assetID),
		zap.String("kind", kind),
		zap.Duration("duration", time.Since(started)),
	)
	return text, nil
}

// GetSuggestions returns all three assessments. Only endpoint and store
// failures surface; a malformed answer degrades to line scanning and then
// to fallback texts.
func (a *Advisor) GetSuggestions(ctx context.Context, assetID uint) (*Suggestions, error) {
	c, err := a.Context(ctx, assetID)
	if err != nil {
		return nil, err
	}
	text, err := a.generate(ctx, assetID, "suggestions", SuggestionsPrompt(*c))
	if err != nil {
		return nil, err
	}
	s := ParseSuggestions(text)
	return &s, nil
}

// AnalyzeCondition returns the endpoint's raw answer.
func (a *Advisor) AnalyzeCondition(ctx context.Context, assetID uint) (string, error) {
	c, err := a.Context(ctx, assetID)
	if err != nil {
		return "", err
	}
	return a.generate(ctx, assetID, "condition", ConditionPrompt(*c))
}

// PredictMaintenance returns the endpoint's raw answer.
func (a *Advisor) PredictMaintenance(ctx context.Context, assetID uint) (string, error) {
	c, err := a.Context(ctx, assetID)
	if err != nil {
		return "", err
	}
	return a.generate(ctx, assetID, "maintenance", MaintenancePrompt(*c))
}

// RecommendReplacement returns the endpoint's raw answer.
func (a *Advisor) RecommendReplacement(ctx context.Context, assetID uint) (string, error) {
	c, err := a.Context(ctx, assetID)
	if err != nil {
		return "", err
	}
	return a.generate(ctx, assetID, "replacement", ReplacementPrompt(*c))
}
