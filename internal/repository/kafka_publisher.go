package repository

import (
	"context"
	"time"

	"TicketPulse/internal/domain/models"
	"TicketPulse/internal/domain/repository"
	pkgkafka "TicketPulse/pkg/kafka"
)

// KafkaSnapshotPublisher streams every dashboard snapshot to a topic, one
// message per tier keyed by external id plus the full snapshot keyed "dashboard".
type KafkaSnapshotPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaSnapshotPublisher(producer *pkgkafka.Producer, topic string) repository.SnapshotPublisher {
	return &KafkaSnapshotPublisher{producer: producer, topic: topic}
}

type tierEvent struct {
	Sequence    uint64    `json:"sequence"`
	GeneratedAt time.Time `json:"generatedAt"`
	models.TierView
}

func (p *KafkaSnapshotPublisher) Publish(ctx context.Context, s *models.DashboardSnapshot) error {
	msgs := make([]pkgkafka.Message, 0, len(s.Tiers)+1)
	for _, v := range s.Tiers {
		msgs = append(msgs, pkgkafka.Message{
			Key:   []byte(v.ExternalID),
			Value: tierEvent{Sequence: s.Sequence, GeneratedAt: s.GeneratedAt, TierView: v},
		})
	}
	msgs = append(msgs, pkgkafka.Message{Key: []byte("dashboard"), Value: s})
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

// KafkaLogPublisher ships aggregated error logs; it implements logger.Publisher.
type KafkaLogPublisher struct {
	producer *pkgkafka.Producer
	source   string
}

func NewKafkaLogPublisher(producer *pkgkafka.Producer, source string) *KafkaLogPublisher {
	return &KafkaLogPublisher{producer: producer, source: source}
}

func (p *KafkaLogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, []byte(p.source), payload)
}
