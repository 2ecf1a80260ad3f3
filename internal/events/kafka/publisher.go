package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/fastprodman/scraps/internal/events"
)

var _ events.Publisher = (*Publisher)(nil)

// Publisher writes ledger events to one topic, keyed by account id so every
// account's events stay ordered within a partition.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, evts ...events.EntryRecorded) error {
	if len(evts) == 0 {
		return nil
	}

	msgs, err := messages(evts)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, msgs...)
	if err != nil {
		return fmt.Errorf("write messages: %w", err)
	}

	return nil
}

func messages(evts []events.EntryRecorded) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(evts))

	for _, e := range evts {
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal event: %w", err)
		}

		msgs = append(msgs, kafka.Message{Key: []byte(e.AccountID), Value: data})
	}

	return msgs, nil
}

func (p *Publisher) Close() error {
	err := p.writer.Close()
	if err != nil {
		return fmt.Errorf("close kafka writer: %w", err)
	}

	return nil
}
