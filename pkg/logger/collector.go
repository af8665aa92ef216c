package logger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Publisher ships aggregated log batches, typically to Kafka.
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

type CollectionConfig struct {
	TimeInterval   time.Duration // flush interval
	CountThreshold int           // max distinct entries before an early flush
	Topic          string
	Publisher      Publisher
}

type AggregatedLogEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// LogBatch is the payload published on every flush.
type LogBatch struct {
	Host      string               `json:"host"`
	FlushedAt time.Time            `json:"flushed_at"`
	Entries   []AggregatedLogEntry `json:"entries"`
}

// LogCollector deduplicates warn/error entries and publishes them in batches.
type LogCollector struct {
	config  *CollectionConfig
	host    string
	entries map[string]*AggregatedLogEntry
	mutex   sync.Mutex
	stop    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

func NewLogCollector(config *CollectionConfig) *LogCollector {
	if config.TimeInterval <= 0 {
		config.TimeInterval = 30 * time.Second
	}
	if config.CountThreshold <= 0 {
		config.CountThreshold = 100
	}
	host, _ := os.Hostname()

	c := &LogCollector{
		config:  config,
		host:    host,
		entries: make(map[string]*AggregatedLogEntry),
		stop:    make(chan struct{}),
	}

	c.wg.Add(1)
	go c.loop()

	return c
}

func (c *LogCollector) AddLog(level, message string, fields map[string]interface{}, caller string) {
	now := time.Now()
	key := entryKey(level, message, fields, caller)

	c.mutex.Lock()
	if entry, ok := c.entries[key]; ok {
		entry.Count++
		entry.LastSeen = now
	} else {
		c.entries[key] = &AggregatedLogEntry{
			Level:     level,
			Message:   message,
			Fields:    fields,
			Caller:    caller,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}
	var batch []AggregatedLogEntry
	if len(c.entries) >= c.config.CountThreshold {
		batch = c.drainLocked()
	}
	c.mutex.Unlock()

	if batch != nil {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.publish(batch)
		}()
	}
}

func entryKey(level, message string, fields map[string]interface{}, caller string) string {
	b, _ := json.Marshal([]interface{}{level, message, fields, caller})
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func (c *LogCollector) loop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.TimeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.flush()
		case <-c.stop:
			c.flush()
			return
		}
	}
}

func (c *LogCollector) flush() {
	c.mutex.Lock()
	batch := c.drainLocked()
	c.mutex.Unlock()
	if batch != nil {
		c.publish(batch)
	}
}

func (c *LogCollector) drainLocked() []AggregatedLogEntry {
	if len(c.entries) == 0 {
		return nil
	}
	batch := make([]AggregatedLogEntry, 0, len(c.entries))
	for _, e := range c.entries {
		batch = append(batch, *e)
	}
	c.entries = make(map[string]*AggregatedLogEntry)
	return batch
}

func (c *LogCollector) publish(entries []AggregatedLogEntry) {
	if c.config.Publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	batch := LogBatch{Host: c.host, FlushedAt: time.Now().UTC(), Entries: entries}
	if err := c.config.Publisher.PublishMessage(ctx, c.config.Topic, batch); err != nil {
		// The logger may be what failed; stderr is the only safe sink.
		fmt.Fprintf(os.Stderr, "log collector: publish %d entries: %v\n", len(entries), err)
	}
}

// Close flushes what is pending and waits for in-flight publishes.
func (c *LogCollector) Close() {
	c.once.Do(func() { close(c.stop) })
	c.wg.Wait()
}
