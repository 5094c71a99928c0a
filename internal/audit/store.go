package audit

import "context"

// Store persists audit events.
type Store interface {
	SaveMappingCreated(ctx context.Context, event *MappingCreatedEvent) error
	SaveMappingsCleared(ctx context.Context, event *MappingsClearedEvent) error
}
