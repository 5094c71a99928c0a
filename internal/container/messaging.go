package container

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/samber/do"
	"github.com/serroba/url-shortener/internal/audit"
	auditstore "github.com/serroba/url-shortener/internal/audit/store"
	"github.com/serroba/url-shortener/internal/messaging"
	"go.uber.org/zap"
)

// EventBusPackage provides the audit event publisher and subscriber: redis streams when
// redis is configured, otherwise a single in-process channel serving both sides.
func EventBusPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*gochannel.GoChannel, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		return gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			messaging.NewZapLoggerAdapter(logger),
		), nil
	})

	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		if !redisEnabled(i) {
			return messaging.NewPublisherGroup(do.MustInvoke[*gochannel.GoChannel](i)), nil
		}

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: do.MustInvoke[*RedisClient](i).Client},
			messaging.NewZapLoggerAdapter(do.MustInvoke[*zap.Logger](i)),
		)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (message.Subscriber, error) {
		if !redisEnabled(i) {
			return do.MustInvoke[*gochannel.GoChannel](i), nil
		}

		opts := do.MustInvoke[*Options](i)

		return redisstream.NewSubscriber(
			redisstream.SubscriberConfig{
				Client:        do.MustInvoke[*RedisClient](i).Client,
				ConsumerGroup: opts.ConsumerGroup,
			},
			messaging.NewZapLoggerAdapter(do.MustInvoke[*zap.Logger](i)),
		)
	})

	do.Provide(i, func(i *do.Injector) (audit.Publishers, error) {
		return audit.NewPublishers(do.MustInvoke[*messaging.PublisherGroup](i).Publisher()), nil
	})
}

// ConsumerGroupPackage provides the audit consumers writing to the log-backed audit store.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		group := messaging.NewConsumerGroup(do.MustInvoke[message.Subscriber](i), logger)
		group.Add(audit.NewConsumers(group.Subscriber(), auditstore.NewLog(logger.Named("audit")), logger)...)

		return group, nil
	})
}
