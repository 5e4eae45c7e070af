package dto

import (
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/shopspring/decimal"
)

type WeighLotInput struct {
	LotID     string          `json:"-"`
	NetWeight decimal.Decimal `json:"net_weight"`
	UserID    string          `json:"-"`
}

type WeighResult struct {
	Lot        *model.PurchaseLot `json:"lot"`
	DailyPrice *model.DailyPrice  `json:"daily_price"`
}
