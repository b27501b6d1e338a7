package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adverts/adverts-api/internal/core/domain"
	"github.com/adverts/adverts-api/internal/core/ports"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{writer: w, log: zerolog.Nop()}
	at := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(), ports.AdvertEvent{
		Type:     "advert.created",
		AdvertID: 42,
		Actor:    "richard_admin",
		Advert: &domain.Advert{
			ID:        42,
			Name:      "Bike",
			Price:     decimal.RequireFromString("50.10"),
			DateAdded: at,
		},
		OccurredAt: at,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, "event-type", msg.Headers[0].Key)
	assert.Equal(t, "advert.created", string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "advert.created", decoded["type"])
	assert.Equal(t, "richard_admin", decoded["actor"])
	advert := decoded["advert"].(map[string]any)
	assert.Equal(t, 50.1, advert["price"])
}

func TestKafkaPublisher_DeleteHasNoPayload(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{writer: w, log: zerolog.Nop()}

	require.NoError(t, p.Publish(context.Background(), ports.AdvertEvent{Type: "advert.deleted", AdvertID: 7}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.NotContains(t, decoded, "advert")
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &recordingWriter{err: errors.New("no brokers")}, log: zerolog.Nop()}

	err := p.Publish(context.Background(), ports.AdvertEvent{Type: "advert.updated", AdvertID: 1})
	assert.Error(t, err)
}
