package api

import (
	"context"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/theLastOfCats/novel-library-server/internal/auth"
)

type contextKey string

const SubjectKey contextKey = "subject"

// Middleware guards write endpoints. With no Tokens configured every request passes.
type Middleware struct {
	Tokens *auth.TokenService
}

func (m *Middleware) AuthMiddleware(next http.Handler) http.Handler {
	if m == nil || m.Tokens == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			JSONError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			JSONError(w, "Invalid authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := m.Tokens.Parse(parts[1])
		if err != nil {
			log.WithField("request_id", RequestID(r)).Debugf("AuthMiddleware: %v", err)
			JSONError(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		if claims.Subject != auth.AdminSubject {
			JSONError(w, "Forbidden", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), SubjectKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetSubject(r *http.Request) (string, bool) {
	subject, ok := r.Context().Value(SubjectKey).(string)
	return subject, ok
}
