package repository

import (
	"context"

	"CandlePull/internal/domain/models"
	"CandlePull/pkg/kafka"
)

// KafkaCandlePublisher emits upserted candles to a Kafka topic, keyed by
// symbol so per-symbol ordering survives partitioning.
type KafkaCandlePublisher struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaCandlePublisher creates the publisher.
func NewKafkaCandlePublisher(producer *kafka.Producer, topic string) *KafkaCandlePublisher {
	return &KafkaCandlePublisher{producer: producer, topic: topic}
}

func (p *KafkaCandlePublisher) PublishUpserts(ctx context.Context, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(candles))
	for _, c := range candles {
		msgs = append(msgs, kafka.Message{
			Key:   []byte(c.Symbol),
			Value: c,
		})
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaCandlePublisher) Close() error {
	return p.producer.Close()
}
