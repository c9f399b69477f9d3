package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"gangland/pkg/platform/circuit"
)

// KafkaSink produces events as JSON records keyed by user uuid. Produce is
// asynchronous; delivery failures are logged from the promise and counted by
// the breaker. While the breaker is open every event is also written to the
// fallback sink.
type KafkaSink struct {
	client   *kgo.Client
	topic    string
	logger   *slog.Logger
	breaker  *circuit.Breaker
	fallback Sink
}

type KafkaOption func(*KafkaSink)

// WithFallback mirrors events to fallback while breaker is open.
func WithFallback(fallback Sink, breaker *circuit.Breaker) KafkaOption {
	return func(s *KafkaSink) {
		s.fallback = fallback
		s.breaker = breaker
	}
}

// NewKafkaSink connects to brokers and makes sure topic exists.
func NewKafkaSink(ctx context.Context, brokers []string, topic string, logger *slog.Logger, opts ...KafkaOption) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka audit sink needs at least one broker")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(50*time.Millisecond),
		kgo.RecordRetries(5),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}
	s := &KafkaSink{client: client, topic: topic, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopic(ctx, 1, -1, nil, topic)
	if err != nil {
		return fmt.Errorf("create audit topic %s: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create audit topic %s: %w", topic, resp.Err)
	}
	return nil
}

func (s *KafkaSink) Append(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	record := &kgo.Record{
		Key:       []byte(e.UserUUID),
		Value:     value,
		Timestamp: e.Timestamp,
		Headers:   []kgo.RecordHeader{{Key: "action", Value: []byte(e.Action)}},
	}
	if s.breaker != nil && s.breaker.IsOpen() && s.fallback != nil {
		if err := s.fallback.Append(ctx, e); err != nil {
			s.logger.Warn("audit fallback append failed", "action", e.Action, "error", err)
		}
	}
	// The request context ends before the record is flushed.
	s.client.Produce(context.WithoutCancel(ctx), record, func(_ *kgo.Record, err error) {
		s.delivered(e, err)
	})
	return nil
}

func (s *KafkaSink) delivered(e Event, err error) {
	if err != nil {
		s.logger.Error("audit record not delivered",
			"action", e.Action,
			"topic", s.topic,
			"error", err,
		)
	}
	if s.breaker == nil {
		return
	}
	if err != nil {
		if _, change := s.breaker.RecordFailure(); change.Opened {
			s.logger.Warn("audit circuit opened, mirroring events to fallback", "breaker", s.breaker.Name())
		}
		return
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.Info("audit circuit closed", "breaker", s.breaker.Name())
	}
}

// Close flushes buffered records for up to five seconds, then disconnects.
func (s *KafkaSink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.client.Flush(ctx)
	s.client.Close()
	if err != nil {
		return fmt.Errorf("flush audit records: %w", err)
	}
	return nil
}
