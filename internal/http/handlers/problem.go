// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the problem-document utilities used across all endpoints.
// Error responses follow RFC 7807 (application/problem+json): a stable type
// URI, a status-derived title, and — for expected domain failures — an
// `errors` list carrying the registry Error values the operation produced.
//
// Conventions:
//   - Expected failures are mapped to statuses by the HANDLER that owns the
//     operation, via an explicit code→status table declared next to it.
//     There is no global mapping; a code the table does not know falls back
//     to 422 so a missing entry is visible without masquerading as a fault.
//   - problem() centralizes serialization and logging; 5xx responses are
//     logged with request context for observability.
//   - Unexpected faults (the service error channel, or panics caught by the
//     middleware boundary) always surface as the fixed 500 document with no
//     internal detail.
//
// Example error response:
//
//	HTTP/1.1 409 Conflict
//	Content-Type: application/problem+json
//	{
//	  "type": "https://tools.ietf.org/html/rfc7231#section-6.5.8",
//	  "title": "Conflict",
//	  "status": 409,
//	  "errors": [{"code": "Poll.DuplicatedTitle", "description": "a poll with the same title already exists"}]
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-polls-backend/internal/domain"
	"github.com/tbourn/go-polls-backend/internal/http/middleware"
)

// ProblemContentType is the media type for RFC 7807 responses.
const ProblemContentType = "application/problem+json"

// ProblemDocument is the error body returned by all endpoints.
//
// Fields:
//   - Type: RFC reference URI for the status class.
//   - Title: human-readable status title (http.StatusText).
//   - Status: the HTTP status code, duplicated in the body for clients that
//     do not surface transport metadata.
//   - Errors: the registry errors behind an expected failure; omitted for
//     unexpected faults so no internal detail leaks.
type ProblemDocument struct {
	Type   string         `json:"type" example:"https://tools.ietf.org/html/rfc7231#section-6.5.8"`
	Title  string         `json:"title" example:"Conflict"`
	Status int            `json:"status" example:"409"`
	Errors []domain.Error `json:"errors,omitempty"`
}

// typeForStatus returns the RFC section URI conventionally used for status.
func typeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "https://tools.ietf.org/html/rfc7231#section-6.5.1"
	case http.StatusNotFound:
		return "https://tools.ietf.org/html/rfc7231#section-6.5.4"
	case http.StatusConflict:
		return "https://tools.ietf.org/html/rfc7231#section-6.5.8"
	case http.StatusUnprocessableEntity:
		return "https://tools.ietf.org/html/rfc4918#section-11.2"
	case http.StatusMethodNotAllowed:
		return "https://tools.ietf.org/html/rfc7231#section-6.5.5"
	case http.StatusTooManyRequests:
		return "https://tools.ietf.org/html/rfc6585#section-4"
	case http.StatusInternalServerError:
		return "https://tools.ietf.org/html/rfc7231#section-6.6.1"
	default:
		return "about:blank"
	}
}

// NewProblem builds the ProblemDocument for status carrying errs.
func NewProblem(status int, errs ...domain.Error) ProblemDocument {
	return ProblemDocument{
		Type:   typeForStatus(status),
		Title:  http.StatusText(status),
		Status: status,
		Errors: errs,
	}
}

// problem aborts the request with an RFC 7807 body and logs server-side errors.
//
// Server errors (>=500) are logged using the request-scoped logger from middleware.
func problem(c *gin.Context, status int, errs ...domain.Error) {
	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		ev := lg.Error().Int("status", status)
		for _, e := range errs {
			ev = ev.Str("code", e.Code)
		}
		ev.Msg("api error")
	}

	c.Header("Content-Type", ProblemContentType)
	c.AbortWithStatusJSON(status, NewProblem(status, errs...))
}

// Problem is the exported variant of problem().
//
// External packages (e.g., router setup) should call Problem to return
// consistent problem documents without directly depending on unexported helpers.
func Problem(c *gin.Context, status int, errs ...domain.Error) { problem(c, status, errs...) }

// failure translates an expected domain failure into a problem document
// using the operation-local statusByCode table. Codes absent from the table
// fall back to 422 Unprocessable Entity.
func failure(c *gin.Context, err domain.Error, statusByCode map[string]int) {
	status, ok := statusByCode[err.Code]
	if !ok {
		status = http.StatusUnprocessableEntity
	}
	problem(c, status, err)
}

// internal reports an unexpected fault: it logs the underlying error with
// request context and emits the fixed, detail-free 500 document.
func internal(c *gin.Context, err error) {
	middleware.LoggerFrom(c).Error().Err(err).Msg("unexpected fault")
	c.Header("Content-Type", ProblemContentType)
	c.AbortWithStatusJSON(http.StatusInternalServerError, NewProblem(http.StatusInternalServerError))
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
