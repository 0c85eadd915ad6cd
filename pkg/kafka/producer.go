package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	applogger "AstroChart/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// Message is one record to publish. Value is sent as is when it is []byte
// or string and JSON encoded otherwise.
type Message struct {
	Key     []byte
	Value   interface{}
	Headers map[string]string
}

// Producer publishes records through a shared kafka.Writer. Topics are set
// per message, so one Producer serves every topic.
type Producer struct {
	writer *kafka.Writer
	codec  string
	logger *applogger.Logger
}

func NewProducer(opts ...ProducerOption) (*Producer, error) {
	cfg := defaultProducerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka producer: no brokers configured")
	}
	if cfg.Logger == nil {
		cfg.Logger = applogger.Nop()
	}

	p := &Producer{codec: cfg.Compression, logger: cfg.Logger}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     balancer(cfg.HashByKey),
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:  parseCompression(cfg.Compression),
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		BatchSize:    cfg.BatchSize,
		BatchBytes:   int64(cfg.BatchBytes),
		BatchTimeout: cfg.BatchTimeout,
		Async:        cfg.Async,
	}
	if cfg.Async {
		p.writer.Completion = p.asyncDone
	}

	initMetricsOnce()
	return p, nil
}

// Publish writes msgs to topic in a single call.
func (p *Producer) Publish(ctx context.Context, topic string, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}

	start := time.Now()
	records := make([]kafka.Message, len(msgs))
	var size int64
	for i, m := range msgs {
		rec, err := m.record(topic, start)
		if err != nil {
			return err
		}
		records[i] = rec
		size += int64(len(rec.Value))
	}

	err := p.writer.WriteMessages(ctx, records...)
	observeProducerMetrics(topic, p.codec, size, len(records), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("kafka publish %s: %w", topic, err)
	}
	return nil
}

// PublishMessage sends one unkeyed record. The log collector ships its
// aggregated batches through it.
func (p *Producer) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.Publish(ctx, topic, Message{Value: payload})
}

// Close flushes buffered records.
func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func (p *Producer) asyncDone(records []kafka.Message, err error) {
	if err == nil || len(records) == 0 {
		return
	}
	p.logger.Error("kafka async write failed",
		applogger.String("topic", records[0].Topic),
		applogger.Int("messages", len(records)),
		applogger.Error(err))
}

func (m Message) record(topic string, at time.Time) (kafka.Message, error) {
	value, err := encodeValue(m.Value)
	if err != nil {
		return kafka.Message{}, err
	}
	rec := kafka.Message{Topic: topic, Key: m.Key, Value: value, Time: at}
	if len(m.Headers) > 0 {
		keys := make([]string, 0, len(m.Headers))
		for k := range m.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			rec.Headers = append(rec.Headers, kafka.Header{Key: k, Value: []byte(m.Headers[k])})
		}
	}
	return rec, nil
}

func encodeValue(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode kafka value: %w", err)
	}
	return b, nil
}

func balancer(hashByKey bool) kafka.Balancer {
	if hashByKey {
		return &kafka.Hash{}
	}
	return &kafka.LeastBytes{}
}

var codecs = map[string]kafka.Compression{
	"gzip":   kafka.Gzip,
	"snappy": kafka.Snappy,
	"lz4":    kafka.Lz4,
	"zstd":   kafka.Zstd,
}

// parseCompression falls back to snappy for unknown names.
func parseCompression(name string) kafka.Compression {
	if c, ok := codecs[name]; ok {
		return c
	}
	return kafka.Snappy
}
