package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/config"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/controller"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/repository"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/service"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/pkg/database"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/pkg/logger"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/pkg/monitoring"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/pkg/security"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	lesson     *repository.LessonRepository
	document   *repository.DocumentRepository
	completion *repository.CompletionRepository
	media      *repository.MediaRepository
}

type services struct {
	auth       *service.AuthService
	storage    *service.StorageService
	ai         *service.AIService
	validator  *service.SectionValidator
	fallback   *service.FallbackService
	roleCache  *service.RoleCache
	lesson     *service.LessonService
	document   *service.DocumentService
	completion *service.CompletionService
	migration  *service.LegacyMigrationService
	media      *service.MediaService
}

type controllers struct {
	auth       *controller.AuthController
	lesson     *controller.LessonController
	document   *controller.DocumentController
	completion *controller.CompletionController
	admin      *controller.AdminController
	media      *controller.MediaController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig is the hot-reload hook fed by the config watcher. Only
// callback-registered settings take effect without a restart; connection
// settings still need one.
func (a *App) ApplyConfig(newCfg interface{}) {
	cfg, ok := newCfg.(*config.Config)
	if !ok {
		return
	}
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		lesson:     repository.NewLessonRepository(db),
		document:   repository.NewDocumentRepository(db),
		completion: repository.NewCompletionRepository(db),
		media:      repository.NewMediaRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.ai = service.NewAIService(cfg.AI)
	s.validator = service.NewSectionValidator()
	s.fallback = service.NewFallbackService()
	s.roleCache = service.NewRoleCache(service.NewRedisRoleStore(rdb))

	lock := service.NewRedisGenerationLock(rdb, time.Duration(cfg.Generation.LockTTLSeconds)*time.Second)
	s.lesson = service.NewLessonService(repos.lesson, repos.user, s.ai, lock, cfg.Generation.SubTopicCount)
	s.document = service.NewDocumentService(repos.document, repos.lesson, repos.user, s.ai, s.validator, s.fallback, s.roleCache)
	s.completion = service.NewCompletionService(repos.completion, repos.lesson)

	migration, err := service.NewLegacyMigrationService(repos.completion, repos.lesson, cfg.Migration.LegacyIDPattern)
	if err != nil {
		logger.Log.Fatal("invalid migration configuration", zap.Error(err))
	}
	s.migration = migration

	s.media = service.NewMediaService(repos.media, repos.lesson, s.storage, os.TempDir())

	return s
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		lesson:     controller.NewLessonController(s.lesson),
		document:   controller.NewDocumentController(s.document, s.lesson, s.completion),
		completion: controller.NewCompletionController(s.completion),
		admin:      controller.NewAdminController(s.migration, s.document, repos.document, s.roleCache),
		media:      controller.NewMediaController(s.media),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
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

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	// Release deployments migrate only when forced with -migrate.
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
		logger.Log.Info("Database migration completed")
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(services, repos, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("linguaflow", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

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

	logger.Log.Sync()
	log.Println("Server exiting")
}
