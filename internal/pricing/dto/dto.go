package dto

import "github.com/fekuna/omnipos-pricing-service/internal/model"

type DailyPriceFilters struct {
	SessionID string
	Statuses  []model.PriceStatus
	OnlyReady bool
	// IncludeCosts keeps cost, margin and override details in the response.
	IncludeCosts bool
}
