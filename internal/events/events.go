// Package events 订单生命周期事件投递（Kafka）
package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/dujiao-next/delivery/internal/config"
	"github.com/dujiao-next/delivery/internal/logger"

	"github.com/IBM/sarama"
)

const defaultTopic = "orders.events"

// OrderEvent 订单事件
type OrderEvent struct {
	Type       string    `json:"type"`
	OrderID    uint      `json:"order_id"`
	OrderNo    string    `json:"order_no"`
	UserID     uint      `json:"user_id"`
	DriverID   *uint     `json:"driver_id,omitempty"`
	FromStatus string    `json:"from_status,omitempty"`
	Status     string    `json:"status"`
	Total      string    `json:"total"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher 订单事件发布器
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// KafkaPublisher 基于 sarama 同步生产者的发布器
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewPublisher 根据配置创建发布器，未启用时返回空实现
func NewPublisher(cfg *config.EventsConfig) (Publisher, error) {
	if cfg == nil || !cfg.Enabled {
		return NopPublisher{}, nil
	}
	brokers := make([]string, 0, len(cfg.Brokers))
	for _, b := range cfg.Brokers {
		if trimmed := strings.TrimSpace(b); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	if len(brokers) == 0 {
		return nil, errors.New("events enabled but no kafka brokers configured")
	}

	saramaCfg := sarama.NewConfig()
	saramaCfg.ClientID = strings.TrimSpace(cfg.ClientID)
	if saramaCfg.ClientID == "" {
		saramaCfg.ClientID = "delivery"
	}
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 5
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.Idempotent = true
	saramaCfg.Net.MaxOpenRequests = 1
	saramaCfg.Version = sarama.V2_6_0_0

	producer, err := sarama.NewSyncProducer(brokers, saramaCfg)
	if err != nil {
		return nil, err
	}
	return NewKafkaPublisher(producer, cfg.Topic), nil
}

// NewKafkaPublisher 使用已有生产者创建发布器
func NewKafkaPublisher(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = defaultTopic
	}
	return &KafkaPublisher{producer: producer, topic: topic}
}

// Publish 以订单号为 key 投递事件，保证同一订单的事件有序
func (p *KafkaPublisher) Publish(ctx context.Context, event OrderEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.OrderNo),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
		},
		Timestamp: event.OccurredAt,
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		logger.Ctx(ctx).Errorw("order_event_publish_failed", "type", event.Type, "order_no", event.OrderNo, "error", err)
		return err
	}
	logger.Ctx(ctx).Debugw("order_event_published",
		"topic", p.topic,
		"partition", partition,
		"offset", offset,
		"type", event.Type,
		"order_no", event.OrderNo,
	)
	return nil
}

// Close 关闭生产者
func (p *KafkaPublisher) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

// NopPublisher 未启用事件时的空实现
type NopPublisher struct{}

// Publish 丢弃事件
func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }

// Close 无操作
func (NopPublisher) Close() error { return nil }
