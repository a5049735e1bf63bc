package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/theLastOfCats/novel-library-server/internal/api"
	"github.com/theLastOfCats/novel-library-server/internal/auth"
	"github.com/theLastOfCats/novel-library-server/internal/config"
	"github.com/theLastOfCats/novel-library-server/internal/db"
	"github.com/theLastOfCats/novel-library-server/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	cfg.ConfigureLogger()

	// Initialize Database
	database, err := db.Open(db.Options{
		Driver:   cfg.DBDriver,
		URL:      cfg.DBURL,
		Username: cfg.DBUsername,
		Password: cfg.DBPassword,
	})
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Initialize Auth
	var tokens *auth.TokenService
	if cfg.AuthEnabled() {
		tokens = auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
		if cfg.AdminPasswordHash == "" {
			log.Warn("JWT_SECRET is set without ADMIN_PASSWORD_HASH; POST /auth is disabled")
		}
	} else {
		log.Warn("JWT_SECRET is not set; write endpoints are open")
	}

	// Initialize Handlers
	novelHandler := &api.NovelHandler{Service: service.NewNovelService(database)}
	authHandler := &api.AuthHandler{Tokens: tokens, AdminPasswordHash: cfg.AdminPasswordHash}
	middleware := &api.Middleware{Tokens: tokens}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(novelHandler, authHandler, middleware),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{"port": cfg.Port, "dialect": database.Dialect()}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Infof("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Errorf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("http shutdown error: %v", err)
	}
	log.Info("server stopped")
}
