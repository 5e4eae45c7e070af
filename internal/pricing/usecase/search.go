package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/search"
	"go.uber.org/zap"
)

const boardIndex = "daily_prices"

const boardMapping = `{
	"mappings": {
		"properties": {
			"session_id": { "type": "keyword" },
			"variant_id": { "type": "keyword" },
			"sale_unit": { "type": "keyword" },
			"status": { "type": "keyword" },
			"sale_price": { "type": "double" },
			"updated_at": { "type": "date" }
		}
	}
}`

type boardDocument struct {
	SessionID string            `json:"session_id"`
	VariantID string            `json:"variant_id"`
	SaleUnit  string            `json:"sale_unit"`
	Status    model.PriceStatus `json:"status"`
	SalePrice *float64          `json:"sale_price"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// EnsureBoardIndex creates the price board index. It runs once at startup so writes only index.
func EnsureBoardIndex(ctx context.Context, es *search.Client) error {
	return es.CreateIndex(ctx, boardIndex, boardMapping)
}

// syncToElastic indexes the public part of a price in the background. The row's update time is
// the document version, so a late goroutine cannot overwrite a newer price. Failures are logged only.
func (uc *pricingUseCase) syncToElastic(dp *model.DailyPrice) {
	if uc.es == nil {
		return
	}

	doc := boardDocument{
		SessionID: dp.SessionID,
		VariantID: dp.VariantID,
		SaleUnit:  string(dp.SaleUnit),
		Status:    dp.Status,
		UpdatedAt: dp.UpdatedAt,
	}
	if dp.SalePrice != nil {
		f, _ := dp.SalePrice.Float64()
		doc.SalePrice = &f
	}
	id := dp.SessionID + ":" + dp.VariantID

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := uc.es.IndexVersioned(ctx, boardIndex, id, boardVersion(dp), doc); err != nil {
			uc.logger.Error("failed to index daily price", zap.String("id", id), zap.Error(err))
		}
	}()
}

func boardVersion(dp *model.DailyPrice) int64 {
	return dp.UpdatedAt.UnixNano()
}
