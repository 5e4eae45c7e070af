package usecase

import (
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/unit"
	"github.com/shopspring/decimal"
)

// costScale is the precision normalized_cost is stored with. Prices use the unrounded cost.
const costScale = 4

type computation struct {
	Status         model.PriceStatus
	NormalizedCost *decimal.Decimal
	SalePrice      *decimal.Decimal
	AnchorLotID    *string
}

// selectAnchor picks the lot with the highest normalized cost. Ties go to the most recent
// lot (weighed-at, else purchased-at) and then to the greater lot id.
func selectAnchor(lots []model.PurchaseLot, cfg unit.Config) (*model.PurchaseLot, decimal.Decimal, bool) {
	var (
		best     *model.PurchaseLot
		bestCost decimal.Decimal
	)
	for i := range lots {
		l := &lots[i]
		cost, ok := unit.Normalize(l.Purchase(), cfg)
		if !ok {
			continue
		}
		if best == nil || beats(l, cost, best, bestCost) {
			best, bestCost = l, cost
		}
	}
	return best, bestCost, best != nil
}

func beats(l *model.PurchaseLot, cost decimal.Decimal, best *model.PurchaseLot, bestCost decimal.Decimal) bool {
	if c := cost.Cmp(bestCost); c != 0 {
		return c > 0
	}
	lt, bt := l.Timestamp(), best.Timestamp()
	if !lt.Equal(bt) {
		return lt.After(bt)
	}
	return l.ID > best.ID
}

func computePrice(lots []model.PurchaseLot, cfg unit.Config, pc model.PricingConfig) computation {
	if len(lots) == 0 {
		return computation{Status: model.PricePending}
	}

	anchor, cost, ok := selectAnchor(lots, cfg)
	if !ok {
		return computation{Status: model.PricePartial}
	}

	price := unit.RoundUp(cost.Mul(decimal.NewFromInt(1).Add(pc.MarginPct)), pc.RoundStep)
	stored := cost.Round(costScale)
	anchorID := anchor.ID

	return computation{
		Status:         model.PriceReady,
		NormalizedCost: &stored,
		SalePrice:      &price,
		AnchorLotID:    &anchorID,
	}
}
