package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"forkful/internal/api"
	"forkful/internal/config"
	"forkful/internal/seed"
	"forkful/pkg/auth"
	"forkful/pkg/bus"
	"forkful/pkg/db"
	gos3 "forkful/pkg/s3"
	"forkful/pkg/telemetry"
)

const serviceName = "forkful"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "forkful",
		Short:         "Recipe-sharing API service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newSeedCommand())
	return cmd
}

func setup(ctx context.Context) (config.Config, error) {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	return config.Load(ctx)
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := setup(ctx)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			shutdownTracing, traceMiddleware, err := telemetry.Init(ctx, serviceName, cfg.OTLPEndpoint)
			if err != nil {
				return fmt.Errorf("init telemetry: %w", err)
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownTracing(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("shutdown tracing")
				}
			}()

			pool, err := db.Open(ctx, cfg.DBDSN)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}

			orm, err := db.OpenGorm(cfg.DBDSN)
			if err != nil {
				return fmt.Errorf("open gorm session: %w", err)
			}
			defer func() {
				if err := db.CloseGorm(orm); err != nil {
					log.Error().Err(err).Msg("close gorm session")
				}
			}()

			store := &api.Store{DB: pool, ORM: orm}

			if os.Getenv("S3_ENDPOINT") != "" {
				client, err := gos3.NewClientFromEnv()
				if err != nil {
					return fmt.Errorf("init s3 client: %w", err)
				}
				store.S3 = client
			}

			if cfg.NATSURL != "" {
				b, err := bus.New(cfg.NATSURL)
				if err != nil {
					return fmt.Errorf("connect nats: %w", err)
				}
				defer b.Close()
				store.Bus = b
			}

			tokens, err := auth.NewTokens(cfg.JWTSigningKey, cfg.JWTAlgorithm, cfg.AccessTokenTTL())
			if err != nil {
				return fmt.Errorf("init token service: %w", err)
			}

			apiLayer, err := api.New(store, tokens, api.Config{
				ImageBucket:     cfg.ImageBucket,
				AllowedOrigins:  cfg.AllowedOrigins,
				RateLimit:       cfg.RateLimit,
				RateLimitWindow: cfg.RateLimitWindow,
			})
			if err != nil {
				return fmt.Errorf("init api: %w", err)
			}

			routes, err := apiLayer.Routes()
			if err != nil {
				return fmt.Errorf("build routes: %w", err)
			}

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           traceMiddleware(routes),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", cfg.Addr).Msg("starting forkful api")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("http server: %w", err)
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			return nil
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := setup(ctx)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			pool, err := db.Open(ctx, cfg.DBDSN)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}

			log.Info().Msg("migrations applied")
			return nil
		},
	}
}

func newSeedCommand() *cobra.Command {
	var fixtureFile string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo users and recipes from a YAML fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := setup(ctx)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			orm, err := db.OpenGorm(cfg.DBDSN)
			if err != nil {
				return fmt.Errorf("open gorm session: %w", err)
			}
			defer func() {
				if err := db.CloseGorm(orm); err != nil {
					log.Error().Err(err).Msg("close gorm session")
				}
			}()

			if err := seed.Load(ctx, orm, fixtureFile); err != nil {
				return fmt.Errorf("seed fixtures: %w", err)
			}

			log.Info().Str("file", fixtureFile).Msg("fixtures loaded")
			return nil
		},
	}

	cmd.Flags().StringVar(&fixtureFile, "file", "", "Path to the fixture YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
