package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"bookvideolink/internal/config"
	"bookvideolink/internal/domain"
	"bookvideolink/internal/events"
	"bookvideolink/internal/logging"
	"bookvideolink/internal/metrics"
	"bookvideolink/internal/repository"
	"bookvideolink/internal/service"
	"bookvideolink/internal/upstream"
	"bookvideolink/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	if strings.EqualFold(cfg.App.Environment, "production") {
		gin.SetMode(gin.ReleaseMode)
	}

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer (func() { _ = repository.Close(redisClient) })()
	}

	sessions := initSessions(cfg, redisClient, &logger)

	bvls := upstream.NewBookAVideoLinkClient(cfg.APIs.BookAVideoLink, &logger)
	search := upstream.NewPrisonerSearchClient(cfg.APIs.PrisonerSearch, &logger)
	users := upstream.NewManageUsersClient(cfg.APIs.ManageUsers, &logger)
	locations := upstream.NewLocationsClient(cfg.APIs.Locations, &logger)
	if redisClient != nil {
		bvls.UseRedisCache(redisClient, cfg.APIs.BookAVideoLink.CacheTTL)
		locations.UseRedisCache(redisClient, cfg.APIs.Locations.CacheTTL)
	}

	bus := events.NewEventBus()
	events.RegisterBookingSubscribers(bus, logging.Audit(&logger))

	composer := service.NewComposer(bvls, cfg.Features)
	server, err := web.NewServer(cfg, web.Deps{
		Journeys:  service.NewJourneyService(sessions, &logger),
		Bookings:  service.NewBookingService(bvls, search, composer, bus, cfg.Location(), &logger),
		Composer:  composer,
		API:       bvls,
		Search:    search,
		Users:     users,
		Locations: locations,
	}, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("create web server")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, server, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "web-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, sessions will be kept in memory until it recovers")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}
	return redisClient
}

// initSessions keeps sessions in Redis when it is configured and in memory otherwise.
func initSessions(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.SessionRepository {
	memory := repository.NewMemorySessionRepository(cfg.Session.Expiry)
	if redisClient == nil {
		logger.Warn().Msg("redis is disabled, sessions are kept in memory")
		return memory
	}
	primary := repository.NewRedisSessionRepository(redisClient, cfg.Session.Expiry)
	return repository.NewFailoverSessionRepository(primary, memory, logger)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServer(ctx context.Context, server *web.Server, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info().Int("port", cfg.Server.Port).Msg("web server started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("web server stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("web server shutdown")
	}

	logger.Info().Msg("web server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
