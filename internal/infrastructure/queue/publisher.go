// Package queue delivers advert change events to Kafka.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/adverts/adverts-api/internal/core/ports"
)

const writeTimeout = 5 * time.Second

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// eventMessage is the JSON value of each Kafka message.
type eventMessage struct {
	Type       string         `json:"type"`
	AdvertID   int64          `json:"advert_id"`
	Actor      string         `json:"actor,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Advert     *advertPayload `json:"advert,omitempty"`
}

type advertPayload struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	DateAdded   time.Time   `json:"dateAdded"`
}

// KafkaPublisher implements ports.EventPublisher. Messages are keyed by advert
// id so every change to one advert lands on the same partition, in order.
type KafkaPublisher struct {
	writer messageWriter
	log    zerolog.Logger
}

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string, log zerolog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           writeTimeout,
	}
	return &KafkaPublisher{writer: w, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event ports.AdvertEvent) error {
	msg := eventMessage{
		Type:       event.Type,
		AdvertID:   event.AdvertID,
		Actor:      event.Actor,
		OccurredAt: event.OccurredAt.UTC(),
	}
	if a := event.Advert; a != nil {
		msg.Advert = &advertPayload{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Price:       json.Number(a.Price.String()),
			DateAdded:   a.DateAdded.UTC(),
		}
	}

	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("kafka: marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(event.AdvertID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
		Time: msg.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("kafka: write %s: %w", event.Type, err)
	}

	p.log.Debug().Str("event", event.Type).Int64("advert_id", event.AdvertID).Msg("event published")
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
