package audit

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/url-shortener/internal/messaging"
	"go.uber.org/zap"
)

// NewConsumers builds one consumer per audit topic, all writing to store.
func NewConsumers(subscriber message.Subscriber, store Store, logger *zap.Logger) []messaging.Runnable {
	logger = logger.Named("audit")

	return []messaging.Runnable{
		messaging.NewConsumer[MappingCreatedEvent](subscriber, TopicMappingCreated, store.SaveMappingCreated, logger),
		messaging.NewConsumer[MappingsClearedEvent](subscriber, TopicMappingsCleared, store.SaveMappingsCleared, logger),
	}
}
