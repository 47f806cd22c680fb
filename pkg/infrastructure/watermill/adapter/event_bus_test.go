package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateusmacedo/go-ticket-booking/pkg/application"
	"github.com/mateusmacedo/go-ticket-booking/pkg/domain"
)

type seatEvent struct {
	EntityID string `json:"entityId"`
	UserID   string `json:"userId"`
}

type staticEvent struct {
	name    string
	payload seatEvent
}

func (e staticEvent) EventName() string  { return e.name }
func (e staticEvent) Payload() seatEvent { return e.payload }

type recordingHandler struct {
	received chan domain.Event[seatEvent]
}

func (h *recordingHandler) Handle(_ context.Context, event domain.Event[seatEvent]) error {
	h.received <- event
	return nil
}

func newGoChannelBus(t *testing.T) *WatermillEventBus[domain.Event[seatEvent], seatEvent] {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	bus := NewWatermillEventBus[domain.Event[seatEvent], seatEvent](
		PubSub{Publisher: pubSub, Subscriber: pubSub},
		application.NopLogger{},
	)
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

func TestWatermillEventBusDeliversPayload(t *testing.T) {
	bus := newGoChannelBus(t)
	handler := &recordingHandler{received: make(chan domain.Event[seatEvent], 1)}
	bus.RegisterHandler("BookingCreated", handler)

	err := bus.Publish(context.Background(), staticEvent{
		name:    "BookingCreated",
		payload: seatEvent{EntityID: "T100", UserID: "U1"},
	})
	require.NoError(t, err)

	select {
	case event := <-handler.received:
		assert.Equal(t, "BookingCreated", event.EventName())
		assert.Equal(t, seatEvent{EntityID: "T100", UserID: "U1"}, event.Payload())
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestWatermillEventBusIgnoresOtherTopics(t *testing.T) {
	bus := newGoChannelBus(t)
	handler := &recordingHandler{received: make(chan domain.Event[seatEvent], 1)}
	bus.RegisterHandler("BookingCancelled", handler)

	require.NoError(t, bus.Publish(context.Background(), staticEvent{name: "BookingCreated"}))

	select {
	case event := <-handler.received:
		t.Fatalf("unexpected event %s", event.EventName())
	case <-time.After(100 * time.Millisecond):
	}
}
