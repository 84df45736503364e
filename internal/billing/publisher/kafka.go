// Package publisher streams ledger entries to Kafka for billing
// reconciliation. The gateway's own stores stay authoritative; the stream
// exists so downstream billing can detect gaps and re-bill.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"padron/internal/billing"
)

type Kafka struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

type Option func(*Kafka)

func WithLogger(logger *slog.Logger) Option {
	return func(k *Kafka) {
		k.logger = logger
	}
}

// NewKafka connects to the brokers and ensures the topic exists. Topic
// creation failure on an "already exists" response is not an error.
func NewKafka(ctx context.Context, brokers []string, topic string, opts ...Option) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	if _, err := adm.CreateTopic(ctx, 1, 1, nil, topic); err != nil {
		// Existing topics are fine; anything else is surfaced at startup.
		if exists, lookupErr := adm.ListTopics(ctx, topic); lookupErr != nil || !exists.Has(topic) {
			client.Close()
			return nil, fmt.Errorf("ensure topic %q: %w", topic, err)
		}
	}

	k := &Kafka{client: client, topic: topic}
	for _, opt := range opts {
		opt(k)
	}
	return k, nil
}

// Publish produces one ledger entry keyed by account so per-account ordering
// survives partitioning. Production is asynchronous; delivery failures are
// logged, matching the fire-and-forget ledger contract.
func (k *Kafka) Publish(ctx context.Context, entry billing.LedgerEntry) error {
	payload, err := EncodeEntry(entry)
	if err != nil {
		return err
	}

	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(entry.AccountID),
		Value: payload,
	}
	k.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil && k.logger != nil {
			k.logger.WarnContext(ctx, "kafka delivery failed",
				"entry_id", entry.ID,
				"topic", k.topic,
				"error", err,
			)
		}
	})
	return nil
}

func (k *Kafka) Close() {
	k.client.Close()
}

// EncodeEntry is the wire form consumed by the reconciliation pipeline.
func EncodeEntry(entry billing.LedgerEntry) ([]byte, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshal ledger entry: %w", err)
	}
	return payload, nil
}
