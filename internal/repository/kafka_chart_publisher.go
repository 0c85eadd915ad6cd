package repository

import (
	"context"

	"AstroChart/internal/domain/models"
	domrepo "AstroChart/internal/domain/repository"
	pkgkafka "AstroChart/pkg/kafka"
)

// KafkaPublisher publishes chart events keyed by chart id.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

var _ domrepo.Publisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e *models.ChartEvent) error {
	return p.producer.Publish(ctx, p.topic, eventMessage(e))
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, events []*models.ChartEvent) error {
	msgs := make([]pkgkafka.Message, len(events))
	for i, e := range events {
		msgs[i] = eventMessage(e)
	}
	return p.producer.Publish(ctx, p.topic, msgs...)
}

func eventMessage(e *models.ChartEvent) pkgkafka.Message {
	return pkgkafka.Message{
		Key:     []byte(e.ChartID),
		Value:   e,
		Headers: map[string]string{"event_type": e.Type},
	}
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopPublisher drops events. It stands in when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *models.ChartEvent) error { return nil }
func (NopPublisher) PublishBatch(context.Context, []*models.ChartEvent) error { return nil }
func (NopPublisher) Close() error { return nil }
