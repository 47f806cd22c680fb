package adapter

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	wmAdapter "github.com/mateusmacedo/go-ticket-booking/pkg/infrastructure/watermill/adapter"
)

// NewGoChannelPubSub returns an in-memory transport. Messages published while
// nobody is subscribed are dropped.
func NewGoChannelPubSub(logger watermill.LoggerAdapter) wmAdapter.PubSub {
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, logger)

	return wmAdapter.PubSub{Publisher: pubSub, Subscriber: pubSub}
}
