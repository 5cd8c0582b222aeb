// Package ai turns asset context into maintenance suggestions through an
// external text-generation endpoint.
package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xelth-com/eckassets/internal/config"
)

// Generator is a single prompt-in, text-out exchange with the endpoint.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// NewGenerator builds the client selected by cfg.Provider. The returned
// close function releases SDK resources and is never nil.
func NewGenerator(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (Generator, func() error, error) {
	switch cfg.Provider {
	case "", "rest":
		return NewRESTClient(cfg, logger), func() error { return nil }, nil
	case "sdk":
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, logger)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	}
	return nil, nil, fmt.Errorf("unsupported AI provider %q", cfg.Provider)
}
