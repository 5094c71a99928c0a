package handlers

import "time"

// CreateShortURLRequest is the request body for creating a short URL.
type CreateShortURLRequest struct {
	Body struct {
		URL string `doc:"The http or https URL to shorten" example:"https://example.com/very/long/path" json:"url"`
	}
}

// CreateShortURLResponse is the response for a shortened URL.
type CreateShortURLResponse struct {
	Location string `doc:"The short URL" header:"Location"`
	Body     struct {
		ShortCode   string `doc:"The short code"     example:"aB3xY9"                             json:"short_code"`
		ShortURL    string `doc:"The full short URL" example:"http://localhost:8888/aB3xY9"       json:"short_url"`
		OriginalURL string `doc:"The original URL"   example:"https://example.com/very/long/path" json:"original_url"`
	}
}

// RedirectRequest is the request for redirecting a short URL.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"aB3xY9" path:"code"`
}

// RedirectResponse is a temporary redirect to the original URL.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}

// ListURLsRequest selects how many mappings to return.
type ListURLsRequest struct {
	Limit int `default:"10" doc:"Maximum number of mappings" maximum:"1000" minimum:"1" query:"limit"`
}

// MappingItem is one entry of the mapping listing.
type MappingItem struct {
	ShortCode   string    `json:"short_code"`
	ShortURL    string    `json:"short_url"`
	OriginalURL string    `json:"original_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListURLsResponse lists mappings, newest first.
type ListURLsResponse struct {
	Body []MappingItem
}

// ClearURLsResponse reports how many mappings were deleted.
type ClearURLsResponse struct {
	Body struct {
		Message string `example:"All URLs deleted" json:"message"`
		Deleted int64  `example:"42"               json:"deleted"`
	}
}
