package adapter

import (
	"github.com/Shopify/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"

	wmAdapter "github.com/mateusmacedo/go-ticket-booking/pkg/infrastructure/watermill/adapter"
)

// NewKafkaPubSub builds a kafka transport using the default marshaler;
// payloads are already JSON encoded by the event bus.
func NewKafkaPubSub(brokers []string, consumerGroup string, logger watermill.LoggerAdapter) (wmAdapter.PubSub, error) {
	marshaler := kafka.DefaultMarshaler{}

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: marshaler,
	}, logger)
	if err != nil {
		return wmAdapter.PubSub{}, err
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V1_0_0_0
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.ClientID = "ticket-booking"

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               brokers,
		Unmarshaler:           marshaler,
		ConsumerGroup:         consumerGroup,
		OverwriteSaramaConfig: saramaConfig,
		InitializeTopicDetails: &sarama.TopicDetail{
			NumPartitions:     1,
			ReplicationFactor: 1,
		},
	}, logger)
	if err != nil {
		_ = publisher.Close()
		return wmAdapter.PubSub{}, err
	}

	return wmAdapter.PubSub{Publisher: publisher, Subscriber: subscriber}, nil
}
