package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	channel string
	payload []byte
	err     error
}

func (f *fakeRedis) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	return redis.NewIntResult(1, f.err)
}

type fakeWriter struct {
	msgs []kafka.Message
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(context.Context, Event) error {
	f.calls++
	return errors.New("broker down")
}

func TestRedisPublisher_PublishesOnSessionChannel(t *testing.T) {
	client := &fakeRedis{}
	pub := NewRedisPublisher(client)

	err := pub.Publish(context.Background(), Event{Type: ItemReserved, SessionID: "s1", ItemID: "i1"})
	require.NoError(t, err)

	assert.Equal(t, "session:s1", client.channel)
	var got Event
	require.NoError(t, json.Unmarshal(client.payload, &got))
	assert.Equal(t, ItemReserved, got.Type)
	assert.Equal(t, "i1", got.ItemID)
}

func TestKafkaPublisher_KeysBySession(t *testing.T) {
	w := &fakeWriter{}
	pub := NewKafkaPublisher(w)

	require.NoError(t, pub.Publish(context.Background(), Event{Type: DailyPriceUpdated, SessionID: "s2", VariantID: "v1"}))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "s2", string(w.msgs[0].Key))
	assert.Equal(t, "daily_price_updated", string(w.msgs[0].Headers[0].Value))
}

func TestFanout_DeliversToAllAndJoinsErrors(t *testing.T) {
	w := &fakeWriter{}
	failing := &failingPublisher{}
	fan := NewFanout(failing, NewKafkaPublisher(w))

	err := fan.Publish(context.Background(), Event{Type: ItemCancelled, SessionID: "s3"})

	assert.Error(t, err)
	assert.Equal(t, 1, failing.calls)
	assert.Len(t, w.msgs, 1)
}

func TestEmit_SwallowsPublishErrors(t *testing.T) {
	failing := &failingPublisher{}
	assert.NotPanics(t, func() {
		Emit(context.Background(), failing, logger.NewNopLogger(), Event{Type: SessionClosed, SessionID: "s4"})
		Emit(context.Background(), nil, logger.NewNopLogger(), Event{Type: SessionClosed, SessionID: "s4"})
	})
	assert.Equal(t, 1, failing.calls)
}
