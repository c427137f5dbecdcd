package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dujiao-next/delivery/internal/config"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaPublisherSendsKeyedEvent(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got OrderEvent
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.Type != "order.placed" || got.OrderNo != "AB12CD34" || got.OccurredAt.IsZero() {
			return errors.New("unexpected event payload")
		}
		return nil
	})

	pub := NewKafkaPublisher(producer, "")
	err := pub.Publish(context.Background(), OrderEvent{Type: "order.placed", OrderID: 1, OrderNo: "AB12CD34", Status: "PENDING"})
	require.NoError(t, err)
	assert.Equal(t, defaultTopic, pub.topic)
	require.NoError(t, pub.Close())
}

func TestKafkaPublisherReturnsSendError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewKafkaPublisher(producer, "orders.test")
	err := pub.Publish(context.Background(), OrderEvent{Type: "order.status_changed", OrderNo: "X"})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}

func TestNewPublisherDisabledIsNop(t *testing.T) {
	pub, err := NewPublisher(&config.EventsConfig{Enabled: false})
	require.NoError(t, err)
	assert.IsType(t, NopPublisher{}, pub)
	assert.NoError(t, pub.Publish(context.Background(), OrderEvent{}))
}

func TestNewPublisherRequiresBrokers(t *testing.T) {
	_, err := NewPublisher(&config.EventsConfig{Enabled: true, Brokers: []string{" "}})
	assert.Error(t, err)
}
