package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/IBM/sarama"

	"societypay/model"
)

const EventBillSettled = "bill.settled"

// Publisher announces settlements to downstream consumers (receipts, dues reports).
type Publisher interface {
	PublishSettled(ctx context.Context, ev model.SettledEvent) error
}

type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewProducer(brokers []string, topic string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	p, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}
	return NewWithSyncProducer(p, topic), nil
}

func NewWithSyncProducer(p sarama.SyncProducer, topic string) *Producer {
	return &Producer{producer: p, topic: topic}
}

// PublishSettled keys messages by bill id so events for a bill stay ordered.
func (p *Producer) PublishSettled(_ context.Context, ev model.SettledEvent) error {
	ev.EventType = EventBillSettled
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.BillID),
		Value: sarama.ByteEncoder(data),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return err
	}
	slog.Debug("published settled event", "order_id", ev.OrderID, "partition", partition, "offset", offset)
	return nil
}

func (p *Producer) Close() error { return p.producer.Close() }

type noop struct{}

// Noop is used when no brokers are configured.
func Noop() Publisher { return noop{} }

func (noop) PublishSettled(context.Context, model.SettledEvent) error { return nil }
