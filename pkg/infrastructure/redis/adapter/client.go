package adapter

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"

	wmAdapter "github.com/mateusmacedo/go-ticket-booking/pkg/infrastructure/watermill/adapter"
)

func NewRedisClient(addr string) redis.UniversalClient {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "",
		DB:       0,
	})
}

// NewRedisPubSub builds a redis streams transport. Every process in consumerGroup
// shares the stream; consumer must be unique per process.
func NewRedisPubSub(client redis.UniversalClient, consumerGroup, consumer string, logger watermill.LoggerAdapter) (wmAdapter.PubSub, error) {
	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: client,
	}, logger)
	if err != nil {
		return wmAdapter.PubSub{}, err
	}

	subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        client,
		ConsumerGroup: consumerGroup,
		Consumer:      consumer,
	}, logger)
	if err != nil {
		_ = publisher.Close()
		return wmAdapter.PubSub{}, err
	}

	return wmAdapter.PubSub{Publisher: publisher, Subscriber: subscriber}, nil
}
