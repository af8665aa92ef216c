package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"CupoCast/internal/domain/models"
	domrepo "CupoCast/internal/domain/repository"
	pkgkafka "CupoCast/pkg/kafka"
)

// KafkaHistoryHandler persists monthly history records from the ingest topic.
// A message is one HistoryEntry object or an array of them.
type KafkaHistoryHandler struct {
	topic   string
	users   *UserUseCase
	metrics domrepo.Metrics
}

func NewKafkaHistoryHandler(topic string, users *UserUseCase, metrics domrepo.Metrics) *KafkaHistoryHandler {
	if metrics == nil {
		metrics = domrepo.NoopMetrics{}
	}
	return &KafkaHistoryHandler{topic: topic, users: users, metrics: metrics}
}

func (h *KafkaHistoryHandler) Topic() string { return h.topic }

func (h *KafkaHistoryHandler) Handle(ctx context.Context, b []byte) error {
	entries, err := decodeEntries(b)
	if err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("%w: decode history: %v", pkgkafka.ErrPermanent, err)
	}
	if len(entries) == 0 {
		return nil
	}

	start := time.Now()
	err = h.users.Ingest(ctx, entries)
	h.metrics.RecordLatency("ingest", time.Since(start).Seconds())
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrInvalidRecord), errors.Is(err, models.ErrUserNotFound):
		h.metrics.RecordError("consumer_invalid")
		return fmt.Errorf("%w: %v", pkgkafka.ErrPermanent, err)
	default:
		h.metrics.RecordError("consumer_store")
		return err
	}
}

func decodeEntries(b []byte) ([]models.HistoryEntry, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, errors.New("empty payload")
	}
	if b[0] == '[' {
		var entries []models.HistoryEntry
		if err := json.Unmarshal(b, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}
	var e models.HistoryEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	return []models.HistoryEntry{e}, nil
}

var _ pkgkafka.MessageHandler = (*KafkaHistoryHandler)(nil)
