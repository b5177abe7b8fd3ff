// Package events publishes balance change notifications after a ledger
// mutation has committed.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"ledgerly/internal/balance"
)

// BalanceChanged is emitted once per committed ledger mutation that moved at
// least one balance.
type BalanceChanged struct {
	TeamID        string            `json:"team_id"`
	TransactionID string            `json:"transaction_id"`
	Revision      int64             `json:"revision"`
	Kind          balance.EventKind `json:"kind"`
	Changes       []balance.Delta   `json:"changes"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

// Publisher delivers balance change notifications.
type Publisher interface {
	Publish(ctx context.Context, event BalanceChanged) error
	Close() error
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, BalanceChanged) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }

// KafkaPublisher writes events as JSON to a Kafka topic, keyed by team so
// that one team's changes stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// Publish implements Publisher.
func (p *KafkaPublisher) Publish(ctx context.Context, event BalanceChanged) error {
	msg, err := encode(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

// Close flushes pending writes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encode(event BalanceChanged) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(event.TeamID),
		Value: data,
		Time:  event.OccurredAt,
	}, nil
}
