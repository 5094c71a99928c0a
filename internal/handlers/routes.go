package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers all URL shortener routes.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-short-url",
		Method:        http.MethodPost,
		Path:          "/shorten",
		Summary:       "Create short URL",
		Description:   "Returns the existing short code when the URL was shortened before.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusOK,
		Middlewares:   huma.Middlewares{RejectMalformedJSON(api)},
	}, urlHandler.CreateShortURL)

	huma.Register(api, huma.Operation{
		OperationID:   "list-urls",
		Method:        http.MethodGet,
		Path:          "/urls",
		Summary:       "List mappings",
		Description:   "Lists the most recently created mappings first.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusOK,
	}, urlHandler.ListURLs)

	huma.Register(api, huma.Operation{
		OperationID:   "clear-urls",
		Method:        http.MethodDelete,
		Path:          "/urls",
		Summary:       "Delete all mappings",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusOK,
	}, urlHandler.ClearURLs)

	// Registered last; chi prefers the static routes above.
	huma.Register(api, huma.Operation{
		OperationID:   "redirect",
		Method:        http.MethodGet,
		Path:          "/{code}",
		Summary:       "Redirect to original URL",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusTemporaryRedirect,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, urlHandler.RedirectToURL)
}
