package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/lot"
	"github.com/fekuna/omnipos-pricing-service/internal/lot/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MessageReader is satisfied by *broker.KafkaConsumer.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// WeighingListener applies scale readings published by the weighing station.
type WeighingListener struct {
	consumer MessageReader
	uc       lot.UseCase
	logger   logger.ZapLogger
}

func NewWeighingListener(consumer MessageReader, uc lot.UseCase, logger logger.ZapLogger) *WeighingListener {
	return &WeighingListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *WeighingListener) Start(ctx context.Context) {
	l.logger.Info("Starting Weighing Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Weighing Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type LotWeighedEvent struct {
	LotID     string          `json:"lot_id"`
	NetWeight decimal.Decimal `json:"net_weight"`
	WeighedBy string          `json:"weighed_by"`
}

func (l *WeighingListener) processMessage(ctx context.Context, value []byte) {
	var event LotWeighedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal weighing event", zap.Error(err))
		return
	}
	if event.LotID == "" {
		l.logger.Warn("Weighing event without lot_id")
		return
	}

	weighedBy := event.WeighedBy
	if weighedBy == "" {
		weighedBy = "scale"
	}

	_, err := l.uc.Weigh(ctx, &dto.WeighLotInput{
		LotID:     event.LotID,
		NetWeight: event.NetWeight,
		UserID:    weighedBy,
	})
	if err != nil {
		l.logger.Error("Failed to apply lot weight",
			zap.String("lot_id", event.LotID),
			zap.Error(err),
		)
	}
}
