package main

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmarket/internal/cache"
	"github.com/maxaizer/jobmarket/internal/config"
	"github.com/maxaizer/jobmarket/internal/logger"
	"github.com/maxaizer/jobmarket/internal/metrics"
	"github.com/maxaizer/jobmarket/internal/repositories"
	"github.com/maxaizer/jobmarket/internal/services"
	log "github.com/sirupsen/logrus"
	"os"
	"os/signal"
	"syscall"
	"time"
)

type versionedEngine struct {
	engine   services.Engine
	versions interface {
		Version(ctx context.Context) (string, error)
	}
	watcherOpts []services.WatcherOption
}

func buildEngine(ctx context.Context, cfg *config.Config, dbContext *repositories.DbContext) versionedEngine {

	dataset := repositories.NewJobsFile(cfg.Engine.DatasetFile)

	if cfg.Engine.Backend == config.BackendMemory {
		return versionedEngine{engine: services.NewMemoryEngine(dataset), versions: dataset}
	}

	jobs := repositories.NewJobsRepository(dbContext.DB)
	engine := services.NewStoreEngine(jobs, cfg.Engine.IsProduction())

	if !cfg.Engine.ImportOnStart {
		return versionedEngine{engine: engine, versions: jobs}
	}

	importer := services.NewImporter(dataset, jobs, repositories.NewSettingsRepository(dbContext.DB))
	if _, err := importer.Import(ctx); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDataset).Fatalf("can't import dataset %s: %v", dataset.Path(), err)
	}

	return versionedEngine{engine: engine, versions: importer, watcherOpts: []services.WatcherOption{services.WithSync(importer)}}
}

func buildCache(ctx context.Context, cfg config.CacheConfig) *cache.Cache {
	if cfg.RedisURL == "" {
		return cache.New()
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	client, err := cache.NewRedisClient(pingCtx, cfg.RedisURL)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeCache).Warnf("redis unavailable, using local cache only: %v", err)
		return cache.New()
	}

	log.Info("redis cache tier enabled")
	return cache.New(cache.WithRedis(client, cfg.RedisPrefix, cfg.RedisTTL))
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer(cfg.Metrics.Port)

	dbContext, err := repositories.NewDbContext(cfg.DB)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	err = dbContext.Migrate()
	if err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	bus := EventBus.New()
	built := buildEngine(ctx, cfg, dbContext)

	service, err := services.NewAnalyticsService(bus, built.engine, buildCache(ctx, cfg.Cache), built.versions)
	if err != nil {
		log.Fatalf("can't create analytics service: %v", err)
	}

	if _, err = services.NewCacheWarmer(bus, service, cfg.Engine.WarmTopSkills); err != nil {
		log.Fatalf("can't create cache warmer: %v", err)
	}

	watcher, err := services.NewVersionWatcher(bus, built.versions, cfg.Engine.VersionCheckSchedule, built.watcherOpts...)
	if err != nil {
		log.Fatalf("can't create version watcher: %v", err)
	}
	if _, err = watcher.Check(ctx); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("initial version check failed: %v", err)
	}
	watcher.Start()

	clearRequests := make(chan os.Signal, 1)
	signal.Notify(clearRequests, syscall.SIGHUP)
	go func() {
		for range clearRequests {
			log.Info("SIGHUP received, clearing result cache")
			service.ClearCache(ctx)
		}
	}()

	<-ctx.Done()
	signal.Stop(clearRequests)

	log.Info("Shutting down services...")
	watcher.Stop()
	bus.WaitAsync()
	log.Info("Services stopped.")
}
