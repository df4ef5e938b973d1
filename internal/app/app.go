package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bcs_edu_backend/internal/config"
	"bcs_edu_backend/internal/controller"
	"bcs_edu_backend/internal/repository"
	"bcs_edu_backend/internal/service"
	"bcs_edu_backend/pkg/database"
	"bcs_edu_backend/pkg/logger"
	"bcs_edu_backend/pkg/monitoring"
	"bcs_edu_backend/pkg/security"
	"bcs_edu_backend/pkg/tracing"

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
	user        *repository.UserRepository
	module      *repository.ModuleRepository
	course      *repository.CourseRepository
	tracking    *repository.TrackingRepository
	progress    *repository.ProgressRepository
	stats       *repository.GamificationRepository
	session     *repository.SessionRepository
	achievement *repository.AchievementRepository
}

type services struct {
	auth         *service.AuthService
	module       *service.ModuleService
	course       *service.CourseService
	curriculum   *service.CurriculumService
	gamification *service.GamificationService
	achievement  *service.AchievementService
	progress     *service.ProgressService
}

type controllers struct {
	auth        *controller.AuthController
	module      *controller.ModuleController
	course      *controller.CourseController
	curriculum  *controller.CurriculumController
	progress    *controller.ProgressController
	achievement *controller.AchievementController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig swaps the active configuration after a hot reload and notifies
// registered callbacks.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("Configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		module:      repository.NewModuleRepository(db),
		course:      repository.NewCourseRepository(db),
		tracking:    repository.NewTrackingRepository(db),
		progress:    repository.NewProgressRepository(db),
		stats:       repository.NewGamificationRepository(db),
		session:     repository.NewSessionRepository(db),
		achievement: repository.NewAchievementRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.module = service.NewModuleService(repos.module, repos.course)
	s.gamification = service.NewGamificationService(repos.stats, repos.session)
	s.achievement = service.NewAchievementService(
		repos.achievement,
		repos.progress,
		repos.tracking,
		repos.stats,
		repos.module,
		repos.user,
	)
	s.course = service.NewCourseService(repos.course, repos.tracking, repos.progress, repos.stats, rdb)
	s.curriculum = service.NewCurriculumService(repos.course, repos.tracking, repos.stats, repos.user, rdb)
	s.progress = service.NewProgressService(
		repos.module,
		repos.course,
		repos.tracking,
		repos.progress,
		s.gamification,
		s.achievement,
		db,
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		module:      controller.NewModuleController(s.module),
		course:      controller.NewCourseController(s.course),
		curriculum:  controller.NewCurriculumController(s.curriculum),
		progress:    controller.NewProgressController(s.progress, s.gamification),
		achievement: controller.NewAchievementController(s.achievement),
		health:      controller.NewHealthController(db),
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
	logger.InitLogger(cfg.Server.Mode)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(services, db)

	monitoring.Init()

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("bcs-edu-platform", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	return app
}

func ginMode(mode string) string {
	if mode == "release" {
		return gin.ReleaseMode
	}
	return gin.DebugMode
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
