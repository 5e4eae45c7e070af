package listener_test

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/lot/listener"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/testutil"
	"github.com/fekuna/omnipos-pricing-service/internal/unit"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanReader struct {
	msgs chan kafka.Message
}

func (r *chanReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case m := <-r.msgs:
		return m, nil
	}
}

func TestWeighingListener_AppliesReadings(t *testing.T) {
	env := testutil.NewTestEnv(t)
	s := testutil.SeedSession(t, env.DB, "2026-03-10", model.SessionOpen)
	testutil.SeedSupplier(t, env.DB, "sup-1", "Don Pepe", true)
	testutil.SeedVariant(t, env.DB, "tomato", "Tomato", unit.Config{SaleUnit: unit.Weight, PurchaseUnit: unit.Box})
	l := testutil.SeedLot(t, env.DB, model.PurchaseLot{
		SessionID: s.ID, VariantID: "tomato", SupplierID: "sup-1",
		Quantity: testutil.Dec("1"), UnitCost: testutil.Dec("6000"), PurchaseUnit: unit.Box,
	})

	reader := &chanReader{msgs: make(chan kafka.Message, 2)}
	reader.msgs <- kafka.Message{Value: []byte(`not json`)}
	reader.msgs <- kafka.Message{Value: []byte(`{"lot_id":"` + l.ID + `","net_weight":"20"}`)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		listener.NewWeighingListener(reader, env.UseCases.Lot, logger.NewNopLogger()).Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		view, err := env.UseCases.Pricing.GetDailyPrice(context.Background(), s.ID, "tomato")
		return err == nil && view.Status == model.PriceReady
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	<-done

	got, err := env.UseCases.Lot.Get(context.Background(), l.ID)
	require.NoError(t, err)
	require.NotNil(t, got.MeasuredWeight)
	assert.True(t, got.MeasuredWeight.Equal(testutil.Dec("20")))

	view, err := env.UseCases.Pricing.GetDailyPrice(context.Background(), s.ID, "tomato")
	require.NoError(t, err)
	assert.True(t, view.SalePrice.Equal(testutil.Dec("450")))
}
