package audit

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/url-shortener/internal/messaging"
)

// Publishers bundles the typed publish functions for audit events.
type Publishers struct {
	MappingCreated  messaging.Publish[MappingCreatedEvent]
	MappingsCleared messaging.Publish[MappingsClearedEvent]
}

// NewPublishers binds each audit topic to publisher.
func NewPublishers(publisher message.Publisher) Publishers {
	return Publishers{
		MappingCreated:  messaging.NewPublishFunc[MappingCreatedEvent](publisher, TopicMappingCreated),
		MappingsCleared: messaging.NewPublishFunc[MappingsClearedEvent](publisher, TopicMappingsCleared),
	}
}
