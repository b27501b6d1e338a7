// Command api serves the adverts HTTP API.
//
//	@title						Adverts API
//	@version					1.0
//	@description				CRUD over classified adverts with JWT bearer authentication and role-based access.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	_ "github.com/adverts/adverts-api/docs"
	"github.com/adverts/adverts-api/internal/api"
	"github.com/adverts/adverts-api/internal/core/ports"
	"github.com/adverts/adverts-api/internal/core/service"
	"github.com/adverts/adverts-api/internal/infrastructure/config"
	"github.com/adverts/adverts-api/internal/infrastructure/credentials"
	mongodb "github.com/adverts/adverts-api/internal/infrastructure/db/mongo"
	redisdb "github.com/adverts/adverts-api/internal/infrastructure/db/redis"
	"github.com/adverts/adverts-api/internal/infrastructure/db/sqldb"
	"github.com/adverts/adverts-api/internal/infrastructure/queue"
	"github.com/adverts/adverts-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// advertStore is what every storage driver provides.
type advertStore interface {
	ports.AdvertRepository
	ports.Pinger
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "adverts-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.IsDevelopment()})

	// --- Credentials ---
	store, err := loadCredentials(cfg)
	if err != nil {
		return err
	}

	// --- Storage ---
	repo, closeRepo, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	readiness := map[string]ports.Pinger{"storage": repo}

	// --- Optional collaborators ---
	var idempotency ports.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()

		s := redisdb.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
		idempotency = s
		readiness["redis"] = s
		log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotency keys enabled")
	}

	var events ports.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		p := queue.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		defer func() {
			if err := p.Close(); err != nil {
				log.Warn().Err(err).Msg("kafka close error")
			}
		}()
		events = p
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("advert events enabled")
	}

	// --- Services ---
	authService := service.NewAuthService(store, service.TokenConfig{
		Secret:   cfg.JWT.Key,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	}, log)
	advertService := service.NewAdvertService(repo, idempotency, events, log)

	e := api.NewRouter(api.Deps{
		Logger:        log,
		AuthService:   authService,
		Tokens:        authService,
		AdvertService: advertService,
		Readiness:     readiness,
		EnableSwagger: cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("storage", cfg.Storage.Driver).Msg("adverts api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("adverts api stopped")
	return nil
}

func loadCredentials(cfg *config.Config) (*credentials.Store, error) {
	if cfg.CredentialsFile != "" {
		return credentials.LoadFromFile(cfg.CredentialsFile, 0)
	}
	return credentials.New(credentials.DefaultUsers(), 0)
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (advertStore, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect error")
			}
		}
		return mongodb.NewAdvertRepository(db), closeFn, nil

	default:
		openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		var (
			db  *gorm.DB
			err error
		)
		if cfg.Storage.Driver == config.DriverSQLite {
			db, err = sqldb.OpenSQLite(openCtx, cfg.Storage.SQLitePath)
		} else {
			db, err = sqldb.OpenPostgres(openCtx, cfg.Storage.DatabaseURL)
		}
		if err != nil {
			return nil, nil, err
		}

		repo := sqldb.NewAdvertRepository(db)
		if err := repo.Migrate(openCtx); err != nil {
			_ = repo.Close()
			return nil, nil, err
		}
		closeFn := func() {
			if err := repo.Close(); err != nil {
				log.Warn().Err(err).Msg("database close error")
			}
		}
		return repo, closeFn, nil
	}
}
