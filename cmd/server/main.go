// @title                       Catalog Gateway API
// @version                     1.0
// @description                 Bearer-token gateway in front of the product catalog.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-gateway/internal/api"
	"github.com/99minutos/catalog-gateway/internal/api/handler"
	"github.com/99minutos/catalog-gateway/internal/core/ports"
	"github.com/99minutos/catalog-gateway/internal/core/service"
	"github.com/99minutos/catalog-gateway/internal/infrastructure/db/memory"
	"github.com/99minutos/catalog-gateway/internal/infrastructure/db/mongo"
	"github.com/99minutos/catalog-gateway/internal/infrastructure/db/redis"
	"github.com/99minutos/catalog-gateway/internal/infrastructure/queue"
	"github.com/99minutos/catalog-gateway/internal/infrastructure/security"
	"github.com/99minutos/catalog-gateway/internal/pkg/config"
	"github.com/99minutos/catalog-gateway/pkg/logger"
)

// storage groups the persistence adapters selected by STORAGE.
type storage struct {
	identities ports.IdentityRepository
	lookup     ports.IdentityLookup
	products   ports.ProductRepository
	audit      ports.AuditRepository
	checks     []handler.DependencyCheck
	close      func(context.Context)
}

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "catalog-gateway",
	})
	logger.Install(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg, logger.Component(log, "storage"))
	if err != nil {
		log.Fatal().Err(err).Str("storage", cfg.Storage).Msg("storage unavailable")
	}

	codec, err := service.NewJWTCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, service.WithIssuer(cfg.Auth.Issuer))
	if err != nil {
		log.Fatal().Err(err).Msg("token codec")
	}

	// The audit workers outlive the HTTP server so events from in-flight
	// requests are still persisted during shutdown.
	auditCtx, stopAudit := context.WithCancel(context.Background())
	auditLog := logger.Component(log, "audit")
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, service.NewAuditService(store.audit, auditLog), auditLog)
	dispatcher.Start(auditCtx)

	e := api.NewRouter(api.Deps{
		Logger:         log,
		Tokens:         codec,
		Identities:     store.lookup,
		Audit:          dispatcher,
		AuthService:    service.NewAuthService(store.identities, security.NewBcryptHasher(cfg.Auth.BcryptCost), codec, dispatcher, log),
		ProductService: service.NewProductService(store.products, log),
		HealthChecks:   store.checks,
	})

	e.Server.ReadTimeout = cfg.HTTP.ReadTimeout
	e.Server.WriteTimeout = cfg.HTTP.WriteTimeout

	go func() {
		log.Info().Str("port", cfg.Port).Str("storage", cfg.Storage).Msg("catalog gateway listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	stopAudit()
	dispatcher.Wait()
	store.close(shutdownCtx)

	log.Info().Msg("bye")
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.Storage == config.StorageMemory {
		identities := memory.NewIdentityStore()
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		return &storage{
			identities: identities,
			lookup:     identities,
			products:   memory.NewProductStore(),
			audit:      memory.NewAuditStore(),
			close:      func(context.Context) {},
		}, nil
	}

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	identities := mongo.NewIdentityRepository(db)
	s := &storage{
		identities: identities,
		lookup:     identities,
		products:   mongo.NewProductRepository(db),
		audit:      mongo.NewAuditRepository(db),
		checks:     []handler.DependencyCheck{handler.MongoCheck(db)},
	}

	var rdb *goredis.Client
	rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		// The cache is an optimisation; run without it.
		log.Warn().Err(err).Msg("redis unavailable, identity cache disabled")
	} else {
		s.lookup = redis.NewIdentityCache(rdb, identities, cfg.Redis.IdentityTTL, log)
		s.checks = append(s.checks, handler.RedisCheck(rdb))
	}

	s.close = func(ctx context.Context) {
		if rdb != nil {
			_ = rdb.Close()
		}
		if err := client.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}
	return s, nil
}
