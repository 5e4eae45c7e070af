package usecase

import (
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/shopspring/decimal"
)

// resolveMovement compares today's price with the previous READY price. Without both
// prices the movement is NEW and there is no delta.
func resolveMovement(today *decimal.Decimal, prev *model.PreviousPrice) (model.Movement, *decimal.Decimal) {
	if today == nil || prev == nil {
		return model.MovementNew, nil
	}

	delta := today.Sub(prev.SalePrice)
	switch delta.Sign() {
	case 1:
		return model.MovementUp, &delta
	case -1:
		return model.MovementDown, &delta
	default:
		return model.MovementSame, &delta
	}
}

func enrich(dp model.DailyPrice, variantName string, prev *model.PreviousPrice) model.DailyPriceView {
	movement, delta := resolveMovement(dp.SalePrice, prev)
	view := model.DailyPriceView{
		DailyPrice:  dp,
		VariantName: variantName,
		Movement:    &movement,
		Delta:       delta,
	}
	if prev != nil {
		price := prev.SalePrice
		dateKey := prev.DateKey
		view.PreviousPrice = &price
		view.PreviousDateKey = &dateKey
	}
	return view
}

// sanitize strips what only staff should see: cost basis and override details.
func sanitize(v model.DailyPriceView) model.DailyPriceView {
	v.NormalizedCost = nil
	v.MarginPct = decimal.Zero
	v.AnchorLotID = nil
	v.ManualPrice = nil
	v.ManualSetBy = nil
	v.ManualSetAt = nil
	v.ManualNote = ""
	v.PricingMode = ""
	return v
}
