package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aromabalance/balance/internal/adapters/cache"
	"github.com/aromabalance/balance/internal/adapters/http/api"
	"github.com/aromabalance/balance/internal/adapters/http/swagger"
	"github.com/aromabalance/balance/internal/adapters/videosearch"
	app "github.com/aromabalance/balance/internal/app"
	"github.com/aromabalance/balance/internal/config"
	"github.com/aromabalance/balance/pkg/logger"
	"github.com/aromabalance/balance/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	redisPingTimeout          = 3 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Initialize logging with defaults until the configured format is known.
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Get().Error(ctx, "failed to load config", logger.Error(err))
		os.Exit(1)
	}
	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "service stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := logger.InitWithFormat(cfg.LogFormat, os.Stdout); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	resultCache, closeCache := buildCache(ctx, cfg, log)
	defer closeCache()

	svc := buildService(cfg, log, resultCache)
	if !svc.Configured() {
		log.Warn(ctx, "youtube_api_key is empty; video lookups will answer 500 not_configured")
	}

	go startSystemMetricsUpdater(ctx, metrics.RefreshInterval())
	go startServiceMetricsUpdater(ctx, svc, metrics.RefreshInterval())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// buildCache selects the search result cache backend. The returned func
// releases backend resources.
func buildCache(ctx context.Context, cfg *config.Config, log logger.Logger) (cache.Cache, func()) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			// Lookups still work; every cache access degrades to a miss.
			log.Warn(ctx, "redis unreachable at startup", logger.String("addr", cfg.RedisAddr), logger.Error(err))
		}
		log.Info(ctx, "using redis cache", logger.String("addr", cfg.RedisAddr), logger.Int("db", cfg.RedisDB))
		c := cache.NewRedis(client,
			cache.WithRedisTTL(cfg.CacheTTL()),
			cache.WithRedisLogger(log.Named("cache")),
		)
		return c, func() { _ = client.Close() }
	case config.CacheNone:
		log.Info(ctx, "result cache disabled")
		return cache.Noop{}, func() {}
	default:
		log.Info(ctx, "using in-memory cache", logger.Int("size", cfg.CacheSize))
		return cache.NewInMemory(
			cache.WithMaxSize(cfg.CacheSize),
			cache.WithTTL(cfg.CacheTTL()),
		), func() {}
	}
}

// buildService wires the provider client and selector into the service.
func buildService(cfg *config.Config, log logger.Logger, resultCache cache.Cache) *app.Service {
	opts := []videosearch.Option{
		videosearch.WithTimeout(cfg.SearchTimeout()),
		videosearch.WithMaxResults(cfg.VideoMaxResults),
		videosearch.WithLanguage(cfg.VideoLanguage),
		videosearch.WithDuration(cfg.VideoDuration),
		videosearch.WithRateLimit(cfg.SearchRatePerSec, cfg.SearchBurst),
		videosearch.WithLogger(log.Named("videosearch")),
	}
	if cfg.YouTubeBaseURL != "" {
		opts = append(opts, videosearch.WithBaseURL(cfg.YouTubeBaseURL))
	}

	return app.New(
		app.WithLogger(log.Named("service")),
		app.WithSearcher(videosearch.NewYouTubeClient(cfg.YouTubeAPIKey, opts...)),
		app.WithCache(resultCache),
		app.WithEmbedHost(cfg.EmbedHost),
		app.WithSearchTimeout(cfg.SearchTimeout()),
	)
}

// newHandler registers docs and business routes behind the request id middleware.
func newHandler(ctx context.Context, svc *app.Service, log logger.Logger) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, api.WithLogger(log.Named("api"))).Register(ctx, mux)
	return api.RequestIDMiddleware(mux)
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes gauges derived from service stats.
func updateServiceMetrics(svc *app.Service) {
	if size, ok := svc.GetStats()["cacheSize"].(int64); ok {
		metrics.UpdateCacheSize(size)
	}
}
