// Package server wires storage, services and handlers into one HTTP server
// and owns its lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Elagoht/passenger-reborn/internal/server/config"
	"github.com/Elagoht/passenger-reborn/internal/server/handlers"
	"github.com/Elagoht/passenger-reborn/internal/server/middleware"
	"github.com/Elagoht/passenger-reborn/internal/server/services"
	"github.com/Elagoht/passenger-reborn/internal/server/storage"
	"github.com/Elagoht/passenger-reborn/internal/wordlist"
)

const (
	shutdownTimeout = 10 * time.Second

	// online guessing budget for the master passphrase
	loginRateLimit  = 10
	loginRateWindow = 5 * time.Minute
)

// Server is the assembled vault HTTP server.
type Server struct {
	logger *slog.Logger
	http   *http.Server
}

// New builds the full service stack over the given storage and cipher key.
func New(cfg *config.Config, logger *slog.Logger, store storage.Storage, key []byte, version string) *Server {
	source := wordlist.NewSource(cfg.WordlistDir)
	logs := services.NewLogStore(0, nil)

	authService := services.NewAuthService(logger, store)
	statsService := services.NewStatsService(logger, store)
	credService := services.NewCredentialService(logger, store, statsService, key)
	analysisService := services.NewAnalysisService(logger, store, key, source, logs)
	wordlistService := services.NewWordlistService(logger, store, source)

	jwtConfig := handlers.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		TokenTTL: cfg.TokenTTL,
	}

	authHandler := handlers.NewAuthHandler(logger, authService, jwtConfig)
	credHandler := handlers.NewCredentialsHandler(logger, credService)
	analysisHandler := handlers.NewAnalysesHandler(logger, analysisService)
	statsHandler := handlers.NewStatsHandler(logger, statsService)
	wordlistHandler := handlers.NewWordlistsHandler(logger, wordlistService)
	generateHandler := handlers.NewGenerateHandler(logger)
	healthHandler := handlers.NewHealthHandler(logger, version)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.Health)

	// auth endpoints stay public; login and reset sit behind a rate limit
	// so the master passphrase cannot be guessed online
	limited := middleware.RateLimit(loginRateLimit, loginRateWindow, logger)
	mux.HandleFunc("GET /api/v1/auth/status", authHandler.Status)
	mux.Handle("POST /api/v1/auth/initialize", limited(http.HandlerFunc(authHandler.Initialize)))
	mux.Handle("POST /api/v1/auth/login", limited(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/v1/auth/reset", limited(http.HandlerFunc(authHandler.Reset)))

	protected := middleware.Auth(logger, jwtConfig)
	route := func(pattern string, handlerFunc http.HandlerFunc) {
		mux.Handle(pattern, protected(handlerFunc))
	}

	route("POST /api/v1/credentials", credHandler.Create)
	route("GET /api/v1/credentials", credHandler.List)
	route("GET /api/v1/credentials/{id}", credHandler.Get)
	route("PUT /api/v1/credentials/{id}", credHandler.Update)
	route("DELETE /api/v1/credentials/{id}", credHandler.Delete)
	route("GET /api/v1/credentials/{id}/passphrase", credHandler.Passphrase)
	route("GET /api/v1/credentials/{id}/similar", credHandler.Similar)
	route("GET /api/v1/credentials/{id}/strength", statsHandler.Strength)
	route("POST /api/v1/credentials/{id}/tags/{tagID}", credHandler.AddTag)
	route("DELETE /api/v1/credentials/{id}/tags/{tagID}", credHandler.RemoveTag)

	route("POST /api/v1/tags", credHandler.CreateTag)
	route("GET /api/v1/tags", credHandler.ListTags)

	route("POST /api/v1/analyses", analysisHandler.Initialize)
	route("GET /api/v1/analyses", analysisHandler.List)
	route("GET /api/v1/analyses/wordlists", analysisHandler.AvailableWordlists)
	route("GET /api/v1/analyses/{id}", analysisHandler.Report)
	route("GET /api/v1/analyses/{id}/observe", analysisHandler.Observe)
	route("POST /api/v1/analyses/{id}/stop", analysisHandler.Stop)

	route("GET /api/v1/generate", generateHandler.Generate)
	route("POST /api/v1/generate/alternative", generateHandler.Alternative)

	route("GET /api/v1/stats/strength-graph", statsHandler.Graph)
	route("GET /api/v1/stats/count", statsHandler.Count)

	route("POST /api/v1/wordlists", wordlistHandler.Import)
	route("GET /api/v1/wordlists", wordlistHandler.List)
	route("GET /api/v1/wordlists/{id}", wordlistHandler.Get)
	route("GET /api/v1/wordlists/{id}/status", wordlistHandler.Status)
	route("POST /api/v1/wordlists/{id}/downloaded", wordlistHandler.MarkDownloaded)
	route("POST /api/v1/wordlists/{id}/validate", wordlistHandler.Validate)
	route("POST /api/v1/wordlists/{id}/cancel", wordlistHandler.CancelDownload)
	route("DELETE /api/v1/wordlists/{id}", wordlistHandler.Delete)

	var handler http.Handler = mux
	handler = middleware.Logging(logger, "/health")(handler)
	handler = middleware.Recovery(logger)(handler)

	return &Server{
		logger: logger,
		http: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errC := make(chan error, 1)

	go func() {
		s.logger.Info("server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()

	select {
	case err := <-errC:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
