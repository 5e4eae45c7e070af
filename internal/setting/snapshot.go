package setting

import (
	"context"

	"github.com/fekuna/omnipos-pricing-service/internal/apperror"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
)

// LoadSnapshot reads the pricing parameters with defaults applied. A missing margin means
// 0.35; a missing or non-positive round step means 50.
func LoadSnapshot(ctx context.Context, repo Repository) (*model.PricingConfig, error) {
	margin, err := repo.GetNumber(ctx, KeyMarginPct)
	if err != nil {
		return nil, apperror.Fatal(err, "read margin setting")
	}
	step, err := repo.GetNumber(ctx, KeyRoundStep)
	if err != nil {
		return nil, apperror.Fatal(err, "read round step setting")
	}

	cfg := &model.PricingConfig{
		MarginPct: DefaultMarginPct,
		RoundStep: DefaultRoundStep,
	}
	if margin != nil {
		cfg.MarginPct = *margin
	}
	if step != nil && step.IsPositive() {
		cfg.RoundStep = *step
	}
	return cfg, nil
}
