package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

const (
	eventStreamName  = "DRAFT_EVENTS"
	eventSubjects    = "draft.events.>"
	consumerName     = "gateway-broadcast"
	consumeBatchWait = 5 * time.Second
)

// EventConsumer consumes session events from JetStream and fans them out to
// WebSocket connections.
type EventConsumer struct {
	js                jetstream.JetStream
	connectionManager *ConnectionManager
	consumeCtx        jetstream.ConsumeContext
}

// NewEventConsumer creates a consumer bound to the given NATS connection.
func NewEventConsumer(nc *nats.Conn, cm *ConnectionManager) (*EventConsumer, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &EventConsumer{
		js:                js,
		connectionManager: cm,
	}, nil
}

// Start ensures the consumer exists and begins delivering messages. It
// returns once consumption is running; stop with Stop or context cancel.
func (ec *EventConsumer) Start(ctx context.Context) error {
	consumer, err := ec.ensureConsumer(ctx)
	if err != nil {
		return fmt.Errorf("failed to ensure consumer: %w", err)
	}

	consumeCtx, err := consumer.Consume(ec.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	ec.consumeCtx = consumeCtx

	log.Info().
		Str("stream", eventStreamName).
		Str("consumer", consumerName).
		Msg("gateway event consumer started")

	go func() {
		<-ctx.Done()
		ec.Stop()
	}()

	return nil
}

// Stop halts message delivery.
func (ec *EventConsumer) Stop() {
	if ec.consumeCtx != nil {
		ec.consumeCtx.Stop()
		log.Info().Msg("gateway event consumer stopped")
	}
}

func (ec *EventConsumer) ensureConsumer(ctx context.Context) (jetstream.Consumer, error) {
	stream, err := ec.js.Stream(ctx, eventStreamName)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream %s: %w", eventStreamName, err)
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          consumerName,
		Durable:       consumerName,
		FilterSubject: eventSubjects,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       consumeBatchWait,
		MaxDeliver:    5,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	return consumer, nil
}

func (ec *EventConsumer) handleMessage(msg jetstream.Msg) {
	var event SessionEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		log.Error().
			Err(err).
			Str("subject", msg.Subject()).
			Msg("failed to unmarshal session event, terminating message")
		msg.Term()
		return
	}

	sessionID, err := uuid.Parse(event.SessionID)
	if err != nil {
		log.Error().
			Err(err).
			Str("session_id", event.SessionID).
			Msg("event carries invalid session id, terminating message")
		msg.Term()
		return
	}

	ec.connectionManager.BroadcastToSession(sessionID, &event)

	if err := msg.Ack(); err != nil {
		log.Error().Err(err).Str("subject", msg.Subject()).Msg("failed to ack event")
	}
}
