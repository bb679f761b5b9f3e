// Package messaging 提供支付完成事件的 Kafka 发布实现。
package messaging

import (
	"context"
	"fmt"

	"github.com/shoplite/shoplite/internal/payment/domain"
	"github.com/shoplite/shoplite/pkg/mq"
)

// KafkaPublisher 将支付完成事件写入 Kafka
type KafkaPublisher struct {
	producer *mq.KafkaProducer
	topic    string
}

// NewKafkaPublisher 创建事件发布器
func NewKafkaPublisher(producer *mq.KafkaProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// PaymentCompleted 实现 domain.EventPublisher
func (p *KafkaPublisher) PaymentCompleted(ctx context.Context, payment *domain.Payment) error {
	event := map[string]any{
		"order_id":       payment.ID,
		"email":          payment.Email,
		"payment_method": string(payment.PaymentMethod),
		"total_amount":   payment.TotalAmount.StringFixed(2),
		"created_at":     payment.CreatedAt.Unix(),
	}
	return p.producer.SendMessage(ctx, p.topic, fmt.Sprintf("payment-%d", payment.ID), event)
}
