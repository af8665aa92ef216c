package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"CupoCast/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

// MessageHandler handles messages from a specific topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

// Consumer fans messages from per-topic readers into a worker pool. Offsets are
// committed explicitly after a message is handled or dead-lettered.
type Consumer struct {
	cfg      *ConsumerConfig
	log      *logger.Logger
	readers  map[string]*kafka.Reader
	handlers map[string]MessageHandler
	hook     ConsumerHook
	dlq      *kafka.Writer

	msgChan  chan *message
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	lockMu    sync.Mutex
	partLocks map[string]map[int]*sync.Mutex
}

type message struct {
	topic string
	km    kafka.Message
}

// NewConsumer creates a new Kafka consumer.
func NewConsumer(log *logger.Logger, opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		GroupID:     "cupocast",
		StartOffset: kafka.FirstOffset,
		WorkerCount: 1,
		BufferSize:  64,
		RetryMax:    3,
		BackoffMin:  50 * time.Millisecond,
		BackoffMax:  2 * time.Second,
		MinBytes:    1,
		MaxBytes:    10e6,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	if log == nil {
		log = logger.NewNop()
	}

	c := &Consumer{
		cfg:       cfg,
		log:       log,
		readers:   make(map[string]*kafka.Reader),
		handlers:  make(map[string]MessageHandler),
		hook:      NoopHook{},
		msgChan:   make(chan *message, cfg.BufferSize),
		stopChan:  make(chan struct{}),
		partLocks: make(map[string]map[int]*sync.Mutex),
	}

	initConsumerMetrics()

	if cfg.DLQTopic != "" {
		c.dlq = &kafka.Writer{Addr: kafka.TCP(cfg.Brokers...), Balancer: &kafka.Hash{}}
	}

	return c, nil
}

// RegisterHandler registers a message handler for its topic. Must be called before Start.
func (c *Consumer) RegisterHandler(handler MessageHandler) {
	topic := handler.Topic()
	if _, ok := c.handlers[topic]; ok {
		c.log.Warn("kafka consumer: handler already registered", logger.String("topic", topic))
		return
	}
	c.handlers[topic] = handler
}

// WithConsumerHook sets a hook implementation for lifecycle events.
func (c *Consumer) WithConsumerHook(h ConsumerHook) {
	if h != nil {
		c.hook = h
	}
}

// Start starts the readers and workers. It returns immediately.
func (c *Consumer) Start() error {
	if len(c.handlers) == 0 {
		return fmt.Errorf("no handlers registered")
	}
	for topic := range c.handlers {
		c.readers[topic] = kafka.NewReader(kafka.ReaderConfig{
			Brokers:     c.cfg.Brokers,
			Topic:       topic,
			GroupID:     c.cfg.GroupID,
			StartOffset: c.cfg.StartOffset,
			MinBytes:    c.cfg.MinBytes,
			MaxBytes:    c.cfg.MaxBytes,
		})
	}

	for i := 0; i < c.cfg.WorkerCount; i++ {
		c.wg.Add(1)
		go c.worker()
	}

	var readers sync.WaitGroup
	for topic, reader := range c.readers {
		readers.Add(1)
		go func(topic string, reader *kafka.Reader) {
			defer readers.Done()
			c.fetch(topic, reader)
		}(topic, reader)
	}
	// workers drain msgChan until every reader has stopped feeding it
	go func() {
		readers.Wait()
		close(c.msgChan)
	}()

	c.log.Info("kafka consumer started",
		logger.Int("workers", c.cfg.WorkerCount),
		logger.String("group_id", c.cfg.GroupID),
		logger.Int("topics", len(c.readers)))
	return nil
}

// Stop stops the consumer gracefully, waiting for in-flight messages up to ctx.
func (c *Consumer) Stop(ctx context.Context) error {
	var stopErr error

	c.stopOnce.Do(func() {
		close(c.stopChan)
		stopErr = c.waitForWorkers(ctx)

		for topic, reader := range c.readers {
			if err := reader.Close(); err != nil {
				c.log.Warn("kafka consumer: close reader", logger.String("topic", topic), logger.Error(err))
			}
		}
		if c.dlq != nil {
			if err := c.dlq.Close(); err != nil {
				c.log.Warn("kafka consumer: close dlq writer", logger.Error(err))
			}
		}
		if stopErr == nil {
			c.log.Info("kafka consumer stopped")
		}
	})

	return stopErr
}

func (c *Consumer) waitForWorkers(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("timeout waiting for consumer to stop: %w", ctx.Err())
	case <-done:
		return nil
	}
}

func (c *Consumer) fetch(topic string, reader *kafka.Reader) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-c.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		km, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Warn("kafka consumer: fetch failed", logger.String("topic", topic), logger.Error(err))
			select {
			case <-time.After(time.Second):
				continue
			case <-c.stopChan:
				return
			}
		}

		// blocking send applies backpressure to the reader
		select {
		case c.msgChan <- &message{topic: topic, km: km}:
			consumerQueueDepth.WithLabelValues(topic).Set(float64(len(c.msgChan)))
		case <-c.stopChan:
			return
		}
	}
}

func (c *Consumer) worker() {
	defer c.wg.Done()

	for msg := range c.msgChan {
		c.process(msg)
	}
}

func (c *Consumer) process(msg *message) {
	handler, ok := c.handlers[msg.topic]
	if !ok {
		return
	}
	start := time.Now()

	// max in-flight=1 per (topic, partition) keeps per-key ordering
	pl := c.partitionLock(msg.topic, msg.km.Partition)
	pl.Lock()
	defer pl.Unlock()

	attempts, err := c.handleWithRetry(handler, msg)
	result := "ok"
	if err != nil {
		result = "failed"
		c.hook.OnError(context.Background(), msg.topic, msg.km, msg.km.Value, err)
		c.log.Error("kafka consumer: message failed",
			logger.String("topic", msg.topic),
			logger.Int("partition", msg.km.Partition),
			logger.Int64("offset", msg.km.Offset),
			logger.Int("attempts", attempts),
			logger.Error(err))
		if c.dlq != nil {
			result = "dead_lettered"
			c.deadLetter(msg, err)
		}
	}
	consumerMessagesTotal.WithLabelValues(msg.topic, result).Inc()

	// commit after DLQ too so a poison message does not block the partition
	if err == nil || c.dlq != nil {
		if reader := c.readers[msg.topic]; reader != nil {
			_ = c.commitWithRetry(reader, msg.km, 3)
		}
	}
	consumerHandleLatency.WithLabelValues(msg.topic).Observe(time.Since(start).Seconds())
}

func (c *Consumer) handleWithRetry(handler MessageHandler, msg *message) (attempts int, err error) {
	for {
		attempts++
		err = c.handleOnce(handler, msg)
		if err == nil || attempts > c.cfg.RetryMax || errors.Is(err, ErrPermanent) {
			return attempts, err
		}
		sleep := backoffWithJitter(c.cfg.BackoffMin, c.cfg.BackoffMax, attempts)
		select {
		case <-time.After(sleep):
		case <-c.stopChan:
			return attempts, err
		}
	}
}

func (c *Consumer) handleOnce(handler MessageHandler, msg *message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: handler panic: %v", ErrPermanent, r)
		}
	}()
	ctx, km, data, err := c.hook.BeforeHandle(context.Background(), msg.topic, msg.km, msg.km.Value)
	if err != nil {
		return err
	}
	err = handler.Handle(ctx, data)
	c.hook.AfterHandle(ctx, msg.topic, km, data, err)
	return err
}

func (c *Consumer) deadLetter(msg *message, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := c.dlq.WriteMessages(ctx, kafka.Message{
		Topic: c.cfg.DLQTopic,
		Key:   msg.km.Key,
		Value: msg.km.Value,
		Time:  time.Now(),
		Headers: append(msg.km.Headers,
			kafka.Header{Key: "source_topic", Value: []byte(msg.topic)},
			kafka.Header{Key: "error", Value: []byte(cause.Error())},
		),
	})
	if err != nil {
		c.log.Error("kafka consumer: dlq write failed", logger.String("dlq_topic", c.cfg.DLQTopic), logger.Error(err))
	}
}

// commitWithRetry commits a single message offset with bounded retries.
func (c *Consumer) commitWithRetry(reader *kafka.Reader, km kafka.Message, max int) error {
	var err error
	for attempt := 1; attempt <= max; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = reader.CommitMessages(ctx, km)
		cancel()
		if err == nil {
			return nil
		}
		time.Sleep(backoffWithJitter(50*time.Millisecond, 500*time.Millisecond, attempt))
	}
	c.log.Error("kafka consumer: commit failed", logger.String("topic", km.Topic), logger.Int("attempts", max), logger.Error(err))
	return err
}

func (c *Consumer) partitionLock(topic string, partition int) *sync.Mutex {
	c.lockMu.Lock()
	defer c.lockMu.Unlock()
	m, ok := c.partLocks[topic]
	if !ok {
		m = make(map[int]*sync.Mutex)
		c.partLocks[topic] = m
	}
	l, ok := m[partition]
	if !ok {
		l = &sync.Mutex{}
		m[partition] = l
	}
	return l
}

// ErrPermanent marks handler errors that retrying cannot fix, such as a
// malformed payload. Wrap it to skip straight to the DLQ.
var ErrPermanent = errors.New("permanent failure")

func backoffWithJitter(min, max time.Duration, attempt int) time.Duration {
	if min <= 0 {
		min = 50 * time.Millisecond
	}
	if max < min {
		max = min
	}
	if attempt < 1 {
		attempt = 1
	}
	exp := max
	if attempt < 31 {
		if d := min << uint(attempt-1); d > 0 && d < max {
			exp = d
		}
	}
	// jitter up to 50%
	half := int64(exp) / 2
	if half <= 0 {
		return exp
	}
	return exp - time.Duration(rand.Int63n(half))
}

var (
	consumerQueueDepth    *prometheus.GaugeVec
	consumerMessagesTotal *prometheus.CounterVec
	consumerHandleLatency *prometheus.HistogramVec
	consumerOnce          sync.Once
)

func initConsumerMetrics() {
	consumerOnce.Do(func() {
		consumerQueueDepth = promauto.NewGaugeVec(
			prometheus.GaugeOpts{Name: "cupocast_kafka_consumer_queue_depth", Help: "Messages waiting in the worker queue"},
			[]string{"topic"},
		)
		consumerMessagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{Name: "cupocast_kafka_consumer_messages_total", Help: "Consumed messages by outcome"},
			[]string{"topic", "result"},
		)
		consumerHandleLatency = promauto.NewHistogramVec(
			prometheus.HistogramOpts{Name: "cupocast_kafka_consumer_handle_seconds", Help: "Handling time per message, retries included"},
			[]string{"topic"},
		)
	})
}
