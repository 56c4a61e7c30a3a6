package main

import (
	"log"
	"os"

	"github.com/questline/questline-backend/internal/config"
	"github.com/questline/questline-backend/internal/repository"
	"github.com/questline/questline-backend/internal/service"
	pkgcache "github.com/questline/questline-backend/pkg/cache"
	pkglogger "github.com/questline/questline-backend/pkg/logger"
	pkgredis "github.com/questline/questline-backend/pkg/redis"
)

// App bundles the wired services for an embedding caller
type App struct {
	DB        *repository.DB
	Cache     pkgcache.Service
	Trends    *service.TrendService
	Interlink *service.InterlinkService
	Seo       *service.SeoService
	Schedules *service.ScheduleService
	Analytics *service.AnalyticsService
}

func buildApp(cfg *config.Config) *App {
	zlog := pkglogger.GetLogger()

	// Redis is optional; without it caching runs in-process
	var cacheService pkgcache.Service
	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		zlog.Warn().Err(err).Msg("redis unavailable, using in-process cache")
		cacheService = pkgcache.NewMemory()
	} else {
		zlog.Info().Str("host", cfg.Redis.Host).Msg("connected to redis")
		cacheService = pkgcache.NewRedis(redisClient)
	}

	db := repository.NewDB()
	forumRepo := repository.NewForumRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	seoRepo := repository.NewSeoRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	funnelRepo := repository.NewFunnelRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	return &App{
		DB:    db,
		Cache: cacheService,
		Trends: service.NewTrendService(
			forumRepo, questionRepo, seoRepo, leadRepo, funnelRepo, analyticsRepo,
		),
		// augmentation and generation calls are deployment-provided;
		// nil falls back to local scoring and blocks publishing
		Interlink: service.NewInterlinkService(cfg.Scoring, cacheService, nil, cfg.AugmentTimeout),
		Seo:       service.NewSeoService(seoRepo, analyticsRepo),
		Schedules: service.NewScheduleService(scheduleRepo, questionRepo, nil),
		Analytics: service.NewAnalyticsService(analyticsRepo),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pkglogger.InitStructured(cfg.Env)
	zlog := pkglogger.GetLogger()
	zlog.Info().Str("env", cfg.Env).Msg("starting questline backend")

	app := buildApp(cfg)

	if os.Getenv("QUESTLINE_SEED") == "1" {
		if err := repository.Seed(app.DB); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	zlog.Info().Msg("store ready")
}
