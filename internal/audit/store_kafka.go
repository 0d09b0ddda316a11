package audit

import (
	"context"
	"encoding/json"

	"fusebot/internal/platform/kafka/producer"
	dErrors "fusebot/pkg/domain-errors"
)

// KafkaStore publishes audit events to a Kafka topic, keyed by room so each
// conversation's trail stays ordered within a partition. It is write-only:
// reads are served by whatever consumes the topic, not by the bot.
type KafkaStore struct {
	producer *producer.Producer
	topic    string
}

// NewKafkaStore creates a Kafka-backed audit sink.
func NewKafkaStore(p *producer.Producer, topic string) *KafkaStore {
	return &KafkaStore{producer: p, topic: topic}
}

func (s *KafkaStore) Append(_ context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "marshal audit event")
	}
	return s.producer.ProduceAsync(&producer.Message{
		Topic: s.topic,
		Key:   []byte(event.RoomID),
		Value: value,
	})
}

// ListByRoom is not supported on the Kafka sink.
func (s *KafkaStore) ListByRoom(_ context.Context, _ string) ([]Event, error) {
	return nil, ErrNotFound
}
