package feed

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"
)

// Kafka topics for deployments where order events land on a broker instead
// of (or alongside) Redis. Events carry their name in an event_type header.
const (
	KafkaEventsTopic   = "order.events"
	KafkaCommandsTopic = "order.commands"
)

// KafkaTransport is the broker-backed Transport. Commands are written to
// the commands topic for a backend consumer group; events are fetched from
// the events topic and committed once delivered.
type KafkaTransport struct {
	broker       string
	groupID      string
	writer       *kafka.Writer
	eventsWriter *kafka.Writer
}

func NewKafkaTransport(broker, groupID string) *KafkaTransport {
	return &KafkaTransport{
		broker:  broker,
		groupID: groupID,
		writer: &kafka.Writer{
			Addr:     kafka.TCP(broker),
			Topic:    KafkaCommandsTopic,
			Balancer: &kafka.LeastBytes{},
		},
		eventsWriter: &kafka.Writer{
			Addr:     kafka.TCP(broker),
			Topic:    KafkaEventsTopic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (t *KafkaTransport) Emit(ctx context.Context, command string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Value: raw,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(command)},
		},
	}
	return t.writer.WriteMessages(ctx, msg)
}

// Listen consumes the events topic, forwarding only the requested event
// types and committing everything fetched. The reader is closed when ctx
// ends.
func (t *KafkaTransport) Listen(ctx context.Context, events ...string) (<-chan Event, error) {
	wanted := make(map[string]struct{}, len(events))
	for _, ev := range events {
		wanted[ev] = struct{}{}
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{t.broker},
		Topic:   KafkaEventsTopic,
		GroupID: t.groupID,
	})

	out := make(chan Event)

	go func() {
		defer close(out)
		defer reader.Close()

		for {
			msg, err := reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("[FEED] Error fetching message: %v", err)
				continue
			}

			eventType := getHeader(msg.Headers, "event_type")
			if _, ok := wanted[eventType]; ok {
				ev := Event{Name: eventType, Payload: msg.Value}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}

			if err := reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
				log.Printf("[FEED] Error committing message: %v", err)
			}
		}
	}()

	return out, nil
}

func (t *KafkaTransport) Close() error {
	if err := t.writer.Close(); err != nil {
		return err
	}
	return t.eventsWriter.Close()
}

// PublishEvent writes a named event to the events topic; used by the dev
// server's fan-out publisher.
func (t *KafkaTransport) PublishEvent(ctx context.Context, event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event),
		Value: raw,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event)},
		},
	}
	return t.eventsWriter.WriteMessages(ctx, msg)
}

func getHeader(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
