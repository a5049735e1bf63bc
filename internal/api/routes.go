package api

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter registers every endpoint and wraps the mux in the middleware chain.
func NewRouter(novels *NovelHandler, authHandler *AuthHandler, m *Middleware) http.Handler {
	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /{$}", Health)
	mux.HandleFunc("POST /auth", authHandler.Login)

	mux.HandleFunc("GET /novels/home", novels.Home)
	mux.HandleFunc("GET /novels/count", novels.Count)
	mux.HandleFunc("GET /novels/all", novels.List)
	mux.HandleFunc("GET /novels", novels.Search)
	mux.HandleFunc("GET /novels/{id}", novels.Get)

	// Write Routes (Protected when auth is enabled)
	mux.Handle("POST /novels", m.AuthMiddleware(http.HandlerFunc(novels.Add)))
	mux.Handle("POST /novels/bulk", m.AuthMiddleware(http.HandlerFunc(novels.AddBulk)))
	mux.Handle("PATCH /novels/{id}", m.AuthMiddleware(http.HandlerFunc(novels.Update)))
	mux.Handle("DELETE /novels/{id}", m.AuthMiddleware(http.HandlerFunc(novels.Delete)))
	mux.Handle("PUT /novels/{id}/details", m.AuthMiddleware(http.HandlerFunc(novels.UpdateDetails)))
	mux.Handle("PUT /novels/{id}/opinion", m.AuthMiddleware(http.HandlerFunc(novels.UpdateOpinion)))

	return middleware.RealIP(LoggingMiddleware(RecoverMiddleware(mux)))
}
