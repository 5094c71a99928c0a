// Package audit records an append-only trail of mapping mutations.
package audit

import (
	"time"

	"github.com/google/uuid"
)

const (
	TopicMappingCreated  = "mapping.created"
	TopicMappingsCleared = "mappings.cleared"
)

// MappingCreatedEvent is emitted when a new mapping is stored.
// Returning an existing mapping for a duplicate URL emits nothing.
type MappingCreatedEvent struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	OriginalURL string    `json:"originalUrl"`
	URLHash     string    `json:"urlHash"`
	CreatedAt   time.Time `json:"createdAt"`
	ClientIP    string    `json:"clientIp,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty"`
	Referrer    string    `json:"referrer,omitempty"`
}

// MappingsClearedEvent is emitted after every mapping was deleted.
type MappingsClearedEvent struct {
	ID        string    `json:"id"`
	Deleted   int64     `json:"deleted"`
	ClearedAt time.Time `json:"clearedAt"`
	ClientIP  string    `json:"clientIp,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
}

// NewMappingCreated builds a creation event with a fresh id.
func NewMappingCreated(code, originalURL, urlHash string, createdAt time.Time) *MappingCreatedEvent {
	return &MappingCreatedEvent{
		ID:          uuid.NewString(),
		Code:        code,
		OriginalURL: originalURL,
		URLHash:     urlHash,
		CreatedAt:   createdAt,
	}
}

// NewMappingsCleared builds a clear event with a fresh id.
func NewMappingsCleared(deleted int64, clearedAt time.Time) *MappingsClearedEvent {
	return &MappingsClearedEvent{
		ID:        uuid.NewString(),
		Deleted:   deleted,
		ClearedAt: clearedAt,
	}
}
