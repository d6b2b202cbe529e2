// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the global fault boundary: a single panic-recovery
// layer composed around the entire request pipeline. Handlers never wrap
// their own recover; any fault that escapes them is intercepted exactly once
// here, logged with full diagnostic detail (panic value, stack, correlation
// ID) to the operator sink, and answered with a fixed, sanitized problem
// document that carries no internal detail — no message, no stack, no type
// names.
//
// Per request the boundary is one-way: once a fault is intercepted and the
// response written, the original operation is never retried. A canceled
// request context does not bypass the boundary; the fault is still logged
// and, when the transport allows, a response is still written.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// problemContentType is the media type for RFC 7807 responses. Duplicated
// from the handlers package to keep this package free of an import cycle.
const problemContentType = "application/problem+json"

// internalProblem is the fixed document written for any uncaught fault.
// Marshaled shape: {"type":"…rfc7231#section-6.6.1","title":"Internal Server Error","status":500}
var internalProblem = struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
}{
	Type:   "https://tools.ietf.org/html/rfc7231#section-6.6.1",
	Title:  http.StatusText(http.StatusInternalServerError),
	Status: http.StatusInternalServerError,
}

// FaultBoundary intercepts panics, logs a stack trace, and returns the fixed
// problem-document 500 response.
//
// Behavior:
//   - Logs the panic value and stack trace with the request ID.
//   - If no response has been written, emits the constant sanitized body:
//     { "type": "…", "title": "Internal Server Error", "status": 500 }
//   - Ensures the X-Request-ID header is present on the response.
//
// Place this after Logger() so the fault is captured with structured context.
func FaultBoundary() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				rid, _ := c.Get(requestIDKey)
				log.Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Str("request_id", asString(rid)).
					Msg("panic recovered")

				// Only write if nothing has been written yet.
				if !c.Writer.Written() {
					c.Header("Content-Type", problemContentType)
					c.Header(requestIDHeader, asString(rid))
					c.AbortWithStatusJSON(http.StatusInternalServerError, internalProblem)
					return
				}
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}
