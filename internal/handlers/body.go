package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// maxJSONBody matches huma's default request body limit.
const maxJSONBody = 1 << 20

// humaContext names the embedded field so it does not shadow the Context method.
type humaContext = huma.Context

// bodyContext serves an already consumed request body to the next handler.
type bodyContext struct {
	humaContext
	body io.Reader
}

func (c *bodyContext) BodyReader() io.Reader {
	return c.body
}

// RejectMalformedJSON answers 422 for a JSON request body that cannot be decoded,
// the same status as any other malformed input. Other content types pass through.
func RejectMalformedJSON(api huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		contentType := ctx.Header("Content-Type")
		if contentType != "" && !strings.Contains(contentType, "json") {
			next(ctx)

			return
		}

		body, err := io.ReadAll(io.LimitReader(ctx.BodyReader(), maxJSONBody+1))
		if err != nil {
			_ = huma.WriteErr(api, ctx, http.StatusBadRequest, "unable to read request body", err)

			return
		}

		rest := io.MultiReader(bytes.NewReader(body), ctx.BodyReader())

		// Oversized bodies are left to huma's own limit.
		if len(body) <= maxJSONBody && (len(bytes.TrimSpace(body)) == 0 || !json.Valid(body)) {
			_ = huma.WriteErr(api, ctx, http.StatusUnprocessableEntity, "request body must be a JSON object",
				&huma.ErrorDetail{Location: "body", Message: "invalid JSON", Value: string(body)})

			return
		}

		next(&bodyContext{humaContext: ctx, body: rest})
	}
}
