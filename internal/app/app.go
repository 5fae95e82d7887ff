package app

import (
	"context"
	"course_studio_backend/internal/config"
	"course_studio_backend/internal/controller"
	"course_studio_backend/internal/repository"
	"course_studio_backend/internal/service"
	"course_studio_backend/pkg/configwatcher"
	"course_studio_backend/pkg/database"
	"course_studio_backend/pkg/logger"
	"course_studio_backend/pkg/monitoring"
	"course_studio_backend/pkg/security"
	"course_studio_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

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
	user          *repository.UserRepository
	course        *repository.CourseRepository
	courseVersion *repository.CourseVersionRepository
}

type services struct {
	auth          *service.AuthService
	storage       *service.StorageService
	course        *service.CourseService
	courseVersion *service.CourseVersionService
	backfill      *service.VersionBackfillService
}

type controllers struct {
	auth          *controller.AuthController
	course        *controller.CourseController
	courseVersion *controller.CourseVersionController
	health        *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:          repository.NewUserRepository(db),
		course:        repository.NewCourseRepository(db),
		courseVersion: repository.NewCourseVersionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.course = service.NewCourseService(repos.course, db)
	s.courseVersion = service.NewCourseVersionService(repos.course, repos.courseVersion, db, rdb)
	s.backfill = service.NewVersionBackfillService(repos.course, repos.courseVersion, db)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:          controller.NewAuthController(s.auth),
		course:        controller.NewCourseController(s.course, s.storage),
		courseVersion: controller.NewCourseVersionController(s.courseVersion),
		health:        controller.NewHealthController(db, rdb),
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

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode, cfg.ForceMigrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
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
	services := app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("course-studio", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.setupMiddlewares(router, cfg)

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
		router.Static("/api/uploads", cfg.Storage.LocalPath)
	}

	// 配置热更新（目前只有限流和 CORS 白名单会即时生效）
	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		logger.Log.Info("Config reloaded")
		app.Config.CORS = newCfg.CORS
		app.Config.RateLimit = newCfg.RateLimit
	})

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

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
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
