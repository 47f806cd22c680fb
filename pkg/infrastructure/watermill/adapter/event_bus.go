package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/mateusmacedo/go-ticket-booking/pkg/application"
	"github.com/mateusmacedo/go-ticket-booking/pkg/domain"
)

const eventNameMetadata = "event_name"

// PubSub pairs the two halves of a watermill transport.
type PubSub struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
}

func (ps PubSub) Close() error {
	return errors.Join(ps.Publisher.Close(), ps.Subscriber.Close())
}

// WatermillEventBus publishes events as JSON messages on a topic named after the
// event and delivers consumed messages to the registered handlers. Any watermill
// transport works: gochannel, redis streams, kafka.
type WatermillEventBus[E domain.Event[D], D any] struct {
	pubSub   PubSub
	handlers map[string][]application.EventHandler[E, D]
	mu       sync.RWMutex
	logger   application.AppLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWatermillEventBus[E domain.Event[D], D any](pubSub PubSub, logger application.AppLogger) *WatermillEventBus[E, D] {
	ctx, cancel := context.WithCancel(context.Background())
	return &WatermillEventBus[E, D]{
		pubSub:   pubSub,
		handlers: make(map[string][]application.EventHandler[E, D]),
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// RegisterHandler subscribes to the event topic on the first handler for a name.
// The subscription is open when RegisterHandler returns.
func (bus *WatermillEventBus[E, D]) RegisterHandler(eventName string, handler application.EventHandler[E, D]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	first := len(bus.handlers[eventName]) == 0
	bus.handlers[eventName] = append(bus.handlers[eventName], handler)
	if !first {
		return
	}

	messages, err := bus.pubSub.Subscriber.Subscribe(bus.ctx, eventName)
	if err != nil {
		application.LogError(bus.ctx, bus.logger, "error subscribing to event", err, map[string]interface{}{
			"event_name": eventName,
		})
		return
	}

	bus.wg.Add(1)
	go func() {
		defer bus.wg.Done()
		for msg := range messages {
			bus.consume(eventName, msg)
		}
	}()
}

func (bus *WatermillEventBus[E, D]) consume(eventName string, msg *message.Message) {
	ctx := bus.ctx
	if requestID := msg.Metadata.Get("request_id"); requestID != "" {
		ctx = application.WithRequestID(ctx, requestID)
	}

	var payload D
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		application.LogError(ctx, bus.logger, "error unmarshalling event payload", err, map[string]interface{}{
			"event_name": eventName,
		})
		msg.Nack()
		return
	}

	typedEvent, ok := interface{}(&dynamicEvent[D]{eventName: eventName, payload: payload}).(E)
	if !ok {
		application.LogError(ctx, bus.logger, "error asserting event type", nil, map[string]interface{}{
			"event_name": eventName,
		})
		msg.Nack()
		return
	}

	bus.mu.RLock()
	handlers := append([]application.EventHandler[E, D](nil), bus.handlers[eventName]...)
	bus.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler.Handle(ctx, typedEvent); err != nil {
			application.LogError(ctx, bus.logger, "error handling event", err, map[string]interface{}{
				"event_name": eventName,
			})
			msg.Nack()
			return
		}
	}

	application.LogDebug(ctx, bus.logger, "event handled", map[string]interface{}{
		"event_name": eventName,
	})
	msg.Ack()
}

func (bus *WatermillEventBus[E, D]) Publish(ctx context.Context, event E) error {
	eventName := event.EventName()

	payload, err := application.MarshalPayload(event.Payload())
	if err != nil {
		application.LogError(ctx, bus.logger, "error marshalling event payload", err, map[string]interface{}{
			"event_name": eventName,
		})
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(eventNameMetadata, eventName)
	if requestID, ok := application.RequestID(ctx); ok {
		msg.Metadata.Set("request_id", requestID)
	}

	if err := bus.pubSub.Publisher.Publish(eventName, msg); err != nil {
		application.LogError(ctx, bus.logger, "error publishing event", err, map[string]interface{}{
			"event_name": eventName,
		})
		return err
	}

	application.LogDebug(ctx, bus.logger, "event published", map[string]interface{}{
		"event_name": eventName,
		"message_id": msg.UUID,
	})
	return nil
}

// Close stops the subscriptions and closes the transport.
func (bus *WatermillEventBus[E, D]) Close() error {
	bus.cancel()
	err := bus.pubSub.Close()
	bus.wg.Wait()
	return err
}

type dynamicEvent[D any] struct {
	eventName string
	payload   D
}

func (e *dynamicEvent[D]) EventName() string {
	return e.eventName
}

func (e *dynamicEvent[D]) Payload() D {
	return e.payload
}
