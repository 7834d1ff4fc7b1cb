package server

import (
	"net/http"
	"slices"
	"strings"
)

// DefaultMaxNValue bounds the sequence length of a single /sweep request.
const DefaultMaxNValue = 20000

// SecurityConfig holds the CORS policy and request bounds of the API.
type SecurityConfig struct {
	// EnableCORS turns on Access-Control-* headers and preflight answers.
	EnableCORS bool
	// AllowedOrigins lists accepted origins; "*" accepts any.
	AllowedOrigins []string
	// AllowedMethods is advertised in Access-Control-Allow-Methods.
	AllowedMethods []string
	// MaxNValue is the largest sequence length a request may ask for.
	MaxNValue int
}

// DefaultSecurityConfig allows read-only cross-origin access from anywhere.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxNValue:      DefaultMaxNValue,
	}
}

// securityHeaders are set on every response. The API only serves JSON and
// metrics text, so nothing may be framed, sniffed or loaded from it.
var securityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"X-XSS-Protection", "1; mode=block"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Cache-Control", "no-store"},
}

// allowedOrigin returns the Access-Control-Allow-Origin value for origin,
// or "" when the origin is not accepted.
func (c SecurityConfig) allowedOrigin(origin string) string {
	if slices.Contains(c.AllowedOrigins, "*") {
		return "*"
	}
	if origin != "" && slices.Contains(c.AllowedOrigins, origin) {
		return origin
	}
	return ""
}

// securityMiddleware sets the security headers, applies the CORS policy
// and answers preflight requests with 204.
func (s *Server) securityMiddleware(next http.HandlerFunc) http.HandlerFunc {
	cfg := s.securityConfig
	methods := strings.Join(cfg.AllowedMethods, ", ")
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range securityHeaders {
			h.Set(kv[0], kv[1])
		}
		if !cfg.EnableCORS {
			next(w, r)
			return
		}

		if origin := cfg.allowedOrigin(r.Header.Get("Origin")); origin != "" {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", "Content-Type, Accept")
			h.Set("Access-Control-Max-Age", "86400")
			if origin != "*" {
				h.Add("Vary", "Origin")
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}
