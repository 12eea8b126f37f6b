// Package security applies response security headers and CORS handling.
package security

import (
	"net/http"
)

type HeadersConfig struct {
	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string

	// CORS
	AllowedOrigin  string
	AllowedMethods string
	AllowedHeaders string
}

func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		XFrameOptions:       "DENY",
		XContentTypeOptions: "nosniff",
		ReferrerPolicy:      "strict-origin-when-cross-origin",

		AllowedOrigin:  "*",
		AllowedMethods: "GET, POST, PUT, DELETE, OPTIONS",
		AllowedHeaders: "Content-Type, Authorization",
	}
}

type HeadersMiddleware struct {
	config HeadersConfig
}

func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	if config.AllowedOrigin == "" {
		config.AllowedOrigin = "*"
	}
	if config.AllowedMethods == "" {
		config.AllowedMethods = DefaultHeadersConfig().AllowedMethods
	}
	if config.AllowedHeaders == "" {
		config.AllowedHeaders = DefaultHeadersConfig().AllowedHeaders
	}
	return &HeadersMiddleware{config: config}
}

// Middleware sets the security and CORS headers on every response and
// answers preflight requests directly.
func (h *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		headers.Set("X-Content-Type-Options", h.config.XContentTypeOptions)
		headers.Set("X-Frame-Options", h.config.XFrameOptions)
		headers.Set("Referrer-Policy", h.config.ReferrerPolicy)

		headers.Set("Access-Control-Allow-Origin", h.config.AllowedOrigin)
		headers.Set("Access-Control-Allow-Methods", h.config.AllowedMethods)
		headers.Set("Access-Control-Allow-Headers", h.config.AllowedHeaders)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
