package repository

import (
	"context"

	"github.com/quantfra/swingdesk/internal/domain/models"
	domrepo "github.com/quantfra/swingdesk/internal/domain/repository"
	pkgkafka "github.com/quantfra/swingdesk/pkg/kafka"
)

// KafkaTradePublisher emits committed ledger trades to the audit topic.
// Keys are currency:symbol so one position's events stay in order on a
// single partition.
type KafkaTradePublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaTradePublisher(producer *pkgkafka.Producer, topic string) domrepo.TradePublisher {
	return &KafkaTradePublisher{producer: producer, topic: topic}
}

func (p *KafkaTradePublisher) Publish(ctx context.Context, t *models.Trade) error {
	return p.producer.Publish(ctx, p.topic, []byte(t.Currency+":"+t.Symbol), t)
}

func (p *KafkaTradePublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopTradePublisher is used when no broker is configured.
type NoopTradePublisher struct{}

func (NoopTradePublisher) Publish(context.Context, *models.Trade) error { return nil }
func (NoopTradePublisher) Close() error                                 { return nil }
