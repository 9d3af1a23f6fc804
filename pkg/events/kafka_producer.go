// Package events publishes order lifecycle events to Kafka for downstream
// consumers (analytics, dispatch history). The producer is optional: the
// service runs without it when no brokers are configured.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"taxihub/pkg/models"
)

type OrderEvent struct {
	OrderID   string  `json:"order_id"`
	UserID    string  `json:"user_id"`
	DriverID  *string `json:"driver_id,omitempty"`
	Status    string  `json:"status"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}

type KafkaProducer struct {
	writer *kafka.Writer
}

func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &KafkaProducer{writer: w}
}

func (k *KafkaProducer) PublishOrderEvent(o *models.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ev := OrderEvent{
		OrderID:   o.ID,
		UserID:    o.UserID,
		DriverID:  o.DriverID,
		Status:    o.Status,
		Price:     o.Price,
		Timestamp: time.Now().UnixMilli(),
	}
	b, _ := json.Marshal(ev)
	return k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(o.ID), Value: b})
}

func (k *KafkaProducer) Close() error {
	if k.writer == nil {
		return nil
	}
	return k.writer.Close()
}
