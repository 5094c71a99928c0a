package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-shortener/internal/audit"
	"github.com/serroba/url-shortener/internal/shortener"
	"go.uber.org/zap"
)

// Shortener is the domain surface the HTTP layer depends on.
type Shortener interface {
	Shorten(ctx context.Context, rawURL string) (*shortener.ShortURL, bool, error)
	Resolve(ctx context.Context, code string) (*shortener.ShortURL, error)
	List(ctx context.Context, limit int) ([]*shortener.ShortURL, error)
	Clear(ctx context.Context) (int64, error)
}

// URLHandler handles URL shortening operations.
type URLHandler struct {
	service    Shortener
	baseURL    string
	publishers audit.Publishers
	logger     *zap.Logger
	now        func() time.Time
}

// NewURLHandler creates a new URL handler.
func NewURLHandler(
	service Shortener,
	baseURL string,
	publishers audit.Publishers,
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		service:    service,
		baseURL:    baseURL,
		publishers: publishers,
		logger:     logger,
		now:        time.Now,
	}
}

func (h *URLHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	shortURL, created, err := h.service.Shorten(ctx, req.Body.URL)
	if err != nil {
		switch {
		case errors.Is(err, shortener.ErrValidation):
			return nil, huma.Error422UnprocessableEntity(err.Error())
		case errors.Is(err, shortener.ErrCodeExhausted):
			h.logger.Error("short code space exhausted", zap.Error(err))

			return nil, huma.Error500InternalServerError("failed to generate a unique short code")
		default:
			h.logger.Error("failed to shorten url", zap.Error(err))

			return nil, huma.Error500InternalServerError("failed to save url")
		}
	}

	if created {
		meta := RequestMetaFromContext(ctx)
		event := audit.NewMappingCreated(
			string(shortURL.Code), shortURL.OriginalURL, string(shortURL.URLHash), shortURL.CreatedAt,
		)
		event.ClientIP = meta.ClientIP
		event.UserAgent = meta.UserAgent
		event.Referrer = meta.Referrer

		if err := h.publishers.MappingCreated(ctx, event); err != nil {
			h.logger.Error("failed to publish audit event",
				zap.String("code", event.Code),
				zap.Error(err),
			)
		}
	}

	fullShortURL := h.shortURL(shortURL.Code)

	resp := &CreateShortURLResponse{}
	resp.Location = fullShortURL
	resp.Body.ShortCode = string(shortURL.Code)
	resp.Body.ShortURL = fullShortURL
	resp.Body.OriginalURL = shortURL.OriginalURL

	return resp, nil
}

func (h *URLHandler) RedirectToURL(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	shortURL, err := h.service.Resolve(ctx, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, shortener.ErrInvalidCode):
			return nil, huma.Error400BadRequest(err.Error())
		case errors.Is(err, shortener.ErrNotFound):
			return nil, huma.Error404NotFound("short url not found")
		default:
			h.logger.Error("failed to resolve code", zap.String("code", req.Code), zap.Error(err))

			return nil, huma.Error500InternalServerError("failed to get url")
		}
	}

	return &RedirectResponse{
		Status:   http.StatusTemporaryRedirect,
		Location: shortURL.OriginalURL,
	}, nil
}

func (h *URLHandler) ListURLs(ctx context.Context, req *ListURLsRequest) (*ListURLsResponse, error) {
	urls, err := h.service.List(ctx, req.Limit)
	if err != nil {
		h.logger.Error("failed to list urls", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to list urls")
	}

	resp := &ListURLsResponse{Body: make([]MappingItem, 0, len(urls))}
	for _, u := range urls {
		resp.Body = append(resp.Body, MappingItem{
			ShortCode:   string(u.Code),
			ShortURL:    h.shortURL(u.Code),
			OriginalURL: u.OriginalURL,
			CreatedAt:   u.CreatedAt,
		})
	}

	return resp, nil
}

func (h *URLHandler) ClearURLs(ctx context.Context, _ *struct{}) (*ClearURLsResponse, error) {
	deleted, err := h.service.Clear(ctx)
	if err != nil {
		h.logger.Error("failed to clear urls", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to delete urls")
	}

	meta := RequestMetaFromContext(ctx)
	event := audit.NewMappingsCleared(deleted, h.now().UTC())
	event.ClientIP = meta.ClientIP
	event.UserAgent = meta.UserAgent
	event.Referrer = meta.Referrer

	if err := h.publishers.MappingsCleared(ctx, event); err != nil {
		h.logger.Error("failed to publish audit event", zap.Int64("deleted", deleted), zap.Error(err))
	}

	resp := &ClearURLsResponse{}
	resp.Body.Message = "All URLs deleted"
	resp.Body.Deleted = deleted

	return resp, nil
}

func (h *URLHandler) shortURL(code shortener.Code) string {
	return fmt.Sprintf("%s/%s", h.baseURL, code)
}
