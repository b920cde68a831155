package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mwork/experience-api/internal/config"
	"github.com/mwork/experience-api/internal/domain/experience"
	"github.com/mwork/experience-api/internal/middleware"
	"github.com/mwork/experience-api/internal/pkg/database"
	"github.com/mwork/experience-api/internal/pkg/jwt"
	"github.com/mwork/experience-api/internal/pkg/logger"
	"github.com/mwork/experience-api/internal/pkg/objectid"
	pkgresponse "github.com/mwork/experience-api/internal/pkg/response"
	"github.com/mwork/experience-api/migrations"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()

	logCloser, err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		LogFile:     cfg.LogFile,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}
	defer logCloser.Close()

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Experience API")

	ctx := context.Background()

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	if err := database.Migrate(ctx, db, migrations.FS); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	redis, err := database.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// ---------- Experience ----------
	experienceRepo := experience.NewRepository(db)
	experienceCache := experience.NewCache(redis, cfg.CacheTTL)
	factory := experience.NewFactory(objectid.NewGenerator(), clockwork.NewRealClock())
	experienceService := experience.NewService(experienceRepo, experienceCache, factory)
	experienceHandler := experience.NewHandler(experienceService, cfg.MaxBodyBytes)

	r := newRouter(cfg, experienceHandler, middleware.Auth(jwtService))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	log.Info().Msg("Server exited properly")
}

// newRouter builds the HTTP router with the shared middleware chain
func newRouter(cfg *config.Config, experienceHandler *experience.Handler, authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/experiences", experienceHandler.Routes(authMiddleware, middleware.RequireAdmin()))
	})

	return r
}
