// Command server runs the pelada service HTTP API.
//
// Usage:
//
//	pelada-server serve
//	pelada-server migrate
package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/peladahub/pelada-service/internal/balancer"
	"github.com/peladahub/pelada-service/internal/config"
	"github.com/peladahub/pelada-service/internal/events"
	"github.com/peladahub/pelada-service/internal/handler"
	"github.com/peladahub/pelada-service/internal/logger"
	"github.com/peladahub/pelada-service/internal/repository"
	"github.com/peladahub/pelada-service/internal/repository/memory"
	"github.com/peladahub/pelada-service/internal/repository/postgres"
	"github.com/peladahub/pelada-service/internal/service"
	"github.com/peladahub/pelada-service/internal/session"
)

func main() {
	// Load .env if present; real config still comes from config.yaml + env.
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "pelada-server",
		Short: "Pelada roster, draw and match session service",
	}
	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("load config: %w", err)
	}
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("init logger: %w", err)
	}
	return cfg, appLogger, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, appLogger, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, appLogger)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, appLogger, err := loadConfig()
			if err != nil {
				return err
			}
			repo, err := repository.New(cmd.Context(), cfg, &appLogger)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer repo.Close()
			return repo.Migrate(cmd.Context(), &appLogger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		players repository.PlayerRepository
		matches repository.MatchRepository
		pinger  repository.Pinger
	)

	// An empty postgres host selects the in-memory store, handy for a pelada
	// laptop setup with no database around.
	if cfg.Postgres.Host == "" {
		appLogger.Warn().Msg("no postgres host configured, using in-memory storage")
		memMatches := memory.NewMatchRepository()
		players = memory.NewPlayerRepository(memMatches)
		matches = memMatches
		pinger = memory.Pinger{}
	} else {
		repo, err := repository.New(ctx, cfg, &appLogger)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer repo.Close()
		if err := repo.Migrate(ctx, &appLogger); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		players = postgres.NewPlayerRepository(repo.Pool())
		matches = postgres.NewMatchRepository(repo.Pool())
		pinger = postgres.NewPinger(repo.Pool())
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATS.URL != "" {
		p, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject, appLogger)
		if err != nil {
			// The broker is an optional integration; archive flow works without it.
			appLogger.Warn().Err(err).Msg("nats unavailable, archived match events disabled")
		} else {
			publisher = p
			defer p.Close()
		}
	}

	playerSvc := service.NewPlayerService(players, appLogger)
	matchSvc := service.NewMatchService(matches, publisher, appLogger)
	drawSvc := service.NewDrawService(
		players,
		balancer.New(rand.New(rand.NewSource(time.Now().UnixNano()))),
		cfg.Match.PlayersPerTeam,
		appLogger,
	)

	rules := session.Rules{
		MatchDuration:       time.Duration(cfg.Match.DurationSeconds) * time.Second,
		GoldenGoalThreshold: cfg.Match.GoldenGoalThreshold,
		TieBreak:            session.TieBreakPolicy(cfg.Match.TieBreakPolicy),
	}
	engine := session.NewEngine(rules, matchSvc, clockwork.NewRealClock(), appLogger)

	if cfg.Logger.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(handler.RateLimitMiddleware(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst))
	handler.Register(router, pinger, playerSvc, matchSvc, drawSvc, engine, appLogger)

	corsWrapper := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      corsWrapper.Handler(router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorLog:     stdlog.New(appLogger, "", 0),
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	appLogger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	appLogger.Info().Msg("server stopped")
	return nil
}
