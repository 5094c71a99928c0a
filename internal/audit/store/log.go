package store

import (
	"context"

	"github.com/serroba/url-shortener/internal/audit"
	"go.uber.org/zap"
)

// Log is an audit.Store that writes each event as a structured log entry.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a new log-backed audit store.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) SaveMappingCreated(_ context.Context, event *audit.MappingCreatedEvent) error {
	l.logger.Info("mapping created",
		zap.String("eventId", event.ID),
		zap.String("code", event.Code),
		zap.String("originalUrl", event.OriginalURL),
		zap.String("urlHash", event.URLHash),
		zap.Time("createdAt", event.CreatedAt),
		zap.String("clientIp", event.ClientIP),
		zap.String("userAgent", event.UserAgent),
		zap.String("referrer", event.Referrer),
	)

	return nil
}

func (l *Log) SaveMappingsCleared(_ context.Context, event *audit.MappingsClearedEvent) error {
	l.logger.Info("mappings cleared",
		zap.String("eventId", event.ID),
		zap.Int64("deleted", event.Deleted),
		zap.Time("clearedAt", event.ClearedAt),
		zap.String("clientIp", event.ClientIP),
		zap.String("userAgent", event.UserAgent),
		zap.String("referrer", event.Referrer),
	)

	return nil
}

var _ audit.Store = (*Log)(nil)
