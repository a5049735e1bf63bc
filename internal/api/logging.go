package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const maxLoggedBody = 10000

type requestIDKey struct{}

// LoggingMiddleware tags every request with an id and logs it. Bodies under 10KB are logged at debug level.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

		entry := log.WithFields(log.Fields{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
		})

		debug := log.IsLevelEnabled(log.DebugLevel)
		if debug && r.Body != nil && r.Body != http.NoBody {
			// Only a prefix is buffered; the handler reads the rest under its own size limit.
			prefix, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody+1))
			r.Body = prefixedBody{Reader: io.MultiReader(bytes.NewReader(prefix), r.Body), Closer: r.Body}
			if len(prefix) > 0 && len(prefix) < maxLoggedBody {
				entry.WithField("body", string(prefix)).Debug("request body")
			}
		}

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			capture:        debug,
		}

		next.ServeHTTP(wrapped, r)

		entry.WithFields(log.Fields{
			"status":   wrapped.statusCode,
			"duration": time.Since(start).String(),
			"remote":   r.RemoteAddr,
		}).Info("request handled")
		if wrapped.body.Len() > 0 && wrapped.body.Len() < maxLoggedBody {
			entry.WithField("body", wrapped.body.String()).Debug("response body")
		}
	})
}

// RequestID returns the id LoggingMiddleware assigned to r, if any.
func RequestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}

// prefixedBody replays an already consumed prefix before the remaining body.
type prefixedBody struct {
	io.Reader
	io.Closer
}

// responseWriter wraps http.ResponseWriter to capture status code and body
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	capture    bool
	body       bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.capture && rw.body.Len() < maxLoggedBody {
		rw.body.Write(b)
	}
	return rw.ResponseWriter.Write(b)
}
