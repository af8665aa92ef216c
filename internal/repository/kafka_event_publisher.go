package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"CupoCast/internal/domain/models"
	"CupoCast/internal/domain/repository"
	pkgkafka "CupoCast/pkg/kafka"
)

// EventProducer is the subset of the Kafka producer the publisher needs. The
// producer is shared with the log collector and closed by its owner.
type EventProducer interface {
	Publish(ctx context.Context, topic string, msg pkgkafka.Message) error
}

// KafkaEventPublisher sends assessment events keyed by user, so every event
// for one user lands on the same partition.
type KafkaEventPublisher struct {
	producer EventProducer
	topic    string
	now      func() time.Time
}

func NewKafkaEventPublisher(producer EventProducer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic, now: time.Now}
}

var _ repository.EventPublisher = (*KafkaEventPublisher)(nil)

func (p *KafkaEventPublisher) PublishProjection(ctx context.Context, res *models.ProjectionResult) error {
	if res == nil {
		return nil
	}
	return p.publish(ctx, models.EventProjection, res.UserID, res)
}

func (p *KafkaEventPublisher) PublishRisk(ctx context.Context, res *models.RiskAssessment) error {
	if res == nil {
		return nil
	}
	return p.publish(ctx, models.EventRisk, res.UserID, res)
}

func (p *KafkaEventPublisher) publish(ctx context.Context, typ models.EventType, userID int64, payload interface{}) error {
	ev := models.AssessmentEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		UserID:     userID,
		OccurredAt: p.now().UTC(),
		Payload:    payload,
	}
	var key []byte
	if userID > 0 {
		key = []byte(strconv.FormatInt(userID, 10))
	}
	return p.producer.Publish(ctx, p.topic, pkgkafka.Message{
		Key:   key,
		Value: ev,
		Headers: map[string]string{
			"event_type": string(typ),
			"event_id":   ev.ID,
		},
	})
}
