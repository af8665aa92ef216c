package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CupoCast/internal/domain/models"
	pkgkafka "CupoCast/pkg/kafka"
)

type captureProducer struct {
	topic string
	msgs  []pkgkafka.Message
}

func (p *captureProducer) Publish(_ context.Context, topic string, msg pkgkafka.Message) error {
	p.topic = topic
	p.msgs = append(p.msgs, msg)
	return nil
}

func TestKafkaEventPublisherKeysByUser(t *testing.T) {
	prod := &captureProducer{}
	pub := NewKafkaEventPublisher(prod, "cupocast.assessments")

	res := &models.ProjectionResult{UserID: 12, Status: models.ProjectionOK, Horizon: 3}
	require.NoError(t, pub.PublishProjection(context.Background(), res))
	require.NoError(t, pub.PublishRisk(context.Background(), &models.RiskAssessment{Level: models.RiskLow}))

	require.Len(t, prod.msgs, 2)
	assert.Equal(t, "cupocast.assessments", prod.topic)
	assert.Equal(t, []byte("12"), prod.msgs[0].Key)
	assert.Nil(t, prod.msgs[1].Key)

	ev, ok := prod.msgs[0].Value.(models.AssessmentEvent)
	require.True(t, ok)
	assert.Equal(t, models.EventProjection, ev.Type)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, ev.ID, prod.msgs[0].Headers["event_id"])
	assert.Equal(t, string(models.EventRisk), prod.msgs[1].Headers["event_type"])
}

func TestKafkaEventPublisherIgnoresNil(t *testing.T) {
	prod := &captureProducer{}
	pub := NewKafkaEventPublisher(prod, "t")
	assert.NoError(t, pub.PublishProjection(context.Background(), nil))
	assert.NoError(t, pub.PublishRisk(context.Background(), nil))
	assert.Empty(t, prod.msgs)
}
