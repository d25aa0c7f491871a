package app

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"havenmind_backend/internal/config"
	"havenmind_backend/internal/controller"
	"havenmind_backend/internal/provider"
	"havenmind_backend/internal/repository"
	"havenmind_backend/internal/service"
	"havenmind_backend/pkg/database"
	"havenmind_backend/pkg/logger"
	"havenmind_backend/pkg/monitoring"
	"havenmind_backend/pkg/security"
	"havenmind_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	journal      *repository.JournalRepository
	element      *repository.ElementRepository
	skill        *repository.SkillRepository
	skillSession *repository.SkillSessionRepository
	story        *repository.StoryRepository
}

type services struct {
	storage   *service.StorageService
	sentiment *service.SentimentService
	visual    *service.VisualService
	companion *service.CompanionService
	story     *service.StoryService
	image     *service.ImageService
	skills    *service.SkillsService
	sanctuary *service.SanctuaryService
}

type controllers struct {
	sanctuary *controller.SanctuaryController
	skills    *controller.SkillsController
	story     *controller.StoryController
	health    *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		journal:      repository.NewJournalRepository(db),
		element:      repository.NewElementRepository(db),
		skill:        repository.NewSkillRepository(db),
		skillSession: repository.NewSkillSessionRepository(db),
		story:        repository.NewStoryRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	// each service owns its generator; the per-entry background goroutines
	// drive these services concurrently
	newRNG := func() *rand.Rand { return rand.New(rand.NewSource(rand.Int63())) }

	gemini := provider.NewGeminiProvider(cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel)
	groq := provider.NewGroqProvider(cfg.AI.GroqAPIKey, cfg.AI.GroqBaseURL, cfg.AI.GroqModel)
	textProviders := []provider.TextProvider{gemini, groq}
	imageProviders := []provider.ImageProvider{
		provider.NewStabilityProvider(cfg.AI.StabilityAPIKey),
	}

	s.storage = service.NewStorageService(cfg)
	s.sentiment = service.NewSentimentService()
	s.visual = service.NewVisualService(cfg.Sanctuary, newRNG())
	s.companion = service.NewCompanionService(textProviders, newRNG())
	s.image = service.NewImageService(gemini, imageProviders, service.NewProceduralRenderer(newRNG()), s.storage)
	s.story = service.NewStoryService(textProviders, repos.journal, repos.element, repos.story, newRNG())
	s.skills = service.NewSkillsService(db, repos.skill, repos.skillSession, repos.journal)
	s.sanctuary = service.NewSanctuaryService(
		repos.journal,
		repos.element,
		s.sentiment,
		s.visual,
		s.companion,
		s.image,
		s.skills,
		rdb,
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		sanctuary: controller.NewSanctuaryController(s.sanctuary, s.companion),
		skills:    controller.NewSkillsController(s.skills),
		story:     controller.NewStoryController(s.story, s.image),
		health:    controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 300
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// the stats cache degrades to direct queries without redis
		logger.Log.Warn("Failed to initialize redis, caching disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("havenmind", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
