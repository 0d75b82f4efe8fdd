package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/yabetsTesfaye/addiscares-backend/internal/directory"
	directoryhandler "github.com/yabetsTesfaye/addiscares-backend/internal/directory/handler"
	"github.com/yabetsTesfaye/addiscares-backend/internal/jwttoken"
	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/cache"
	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/events"
	notificationhandler "github.com/yabetsTesfaye/addiscares-backend/internal/notification/handler"
	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/metrics"
	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/service"
	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/store"
	"github.com/yabetsTesfaye/addiscares-backend/internal/platform/config"
	"github.com/yabetsTesfaye/addiscares-backend/internal/platform/httpserver"
	"github.com/yabetsTesfaye/addiscares-backend/internal/platform/logger"
	platformredis "github.com/yabetsTesfaye/addiscares-backend/internal/platform/redis"
	httptransport "github.com/yabetsTesfaye/addiscares-backend/internal/transport/http"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage backend: Postgres when configured, memory otherwise.
	var (
		notifStore store.Store
		dirStore   directory.Store
		db         *sql.DB
	)
	if cfg.Postgres.URL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("ensure notification schema: %w", err)
		}
		if err := directory.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("ensure directory schema: %w", err)
		}
		notifStore = store.NewPostgresStore(db)
		dirStore = directory.NewPostgresStore(db)
		log.Info("using postgres backend")
	} else {
		notifStore = store.NewInMemoryStore()
		dirStore = directory.NewInMemoryStore()
		log.Info("using in-memory backend")
	}

	// Unread-count cache. Disabled when Redis is not configured.
	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	var unreadCache *cache.UnreadCache
	if redisClient != nil {
		defer redisClient.Close()
		unreadCache = cache.New(redisClient.Client, cfg.Redis.UnreadTTL)
		log.Info("unread cache enabled")
	}

	// Lifecycle event sink. Discarded when no brokers are configured.
	var sink events.Sink = events.NoopSink{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := events.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("kafka event sink enabled", "topic", cfg.Kafka.Topic)
	}
	emitter := events.NewEmitter(sink, log, 0)

	m := metrics.New()
	notifications := service.NewService(notifStore, dirStore, emitter, unreadCache, m, log)

	jwtService := jwttoken.NewJWTService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)
	validator := jwttoken.NewValidatorAdapter(jwtService)

	handlers := []httptransport.Registrar{
		directoryhandler.New(dirStore, jwtService, cfg.Server.AdminToken, log),
		notificationhandler.New(notifications, log, validator),
	}
	checks := map[string]httptransport.HealthChecker{}
	if db != nil {
		checks["postgres"] = dbHealth{db}
	}
	if redisClient != nil {
		checks["redis"] = redisClient
	}
	router := httptransport.NewRouter(handlers, checks)

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return emitter.Run(gctx)
	})
	g.Go(func() error {
		log.Info("starting addiscares server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("server stopped")
	return nil
}

type dbHealth struct {
	db *sql.DB
}

func (h dbHealth) Health(ctx context.Context) error {
	return h.db.PingContext(ctx)
}
