package handler

import (
	"crypto/subtle"
	"net/http"
	"time"

	"highlight-saver/internal/domain"
)

// ExtensionTokenHeader carries the shared secret configured as EXTENSION_TOKEN.
const ExtensionTokenHeader = "X-Extension-Token"

// ExtensionTokenMiddleware rejects API requests that do not present the
// configured token. An empty token disables the check.
type ExtensionTokenMiddleware struct {
	token  string
	logger domain.Logger
}

func NewExtensionTokenMiddleware(token string, logger domain.Logger) *ExtensionTokenMiddleware {
	return &ExtensionTokenMiddleware{token: token, logger: logger}
}

func (m *ExtensionTokenMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.token == "" || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		got := r.Header.Get(ExtensionTokenHeader)
		if got == "" {
			writeError(w, http.StatusUnauthorized, "Extension token required")
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(m.token)) != 1 {
			m.logger.Warn("Rejected request with invalid extension token", "path", r.URL.Path)
			writeError(w, http.StatusUnauthorized, "Invalid extension token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs method, path, status and duration of each request.
func RequestLogger(logger domain.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
