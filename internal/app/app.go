package app

import (
	"context"
	"learnpath_backend/internal/config"
	"learnpath_backend/internal/controller"
	"learnpath_backend/internal/repository"
	"learnpath_backend/internal/service"
	"learnpath_backend/pkg/database"
	"learnpath_backend/pkg/logger"
	"learnpath_backend/pkg/monitoring"
	"learnpath_backend/pkg/security"
	"learnpath_backend/pkg/tracing"
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
	Config *config.Store
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	user     *repository.UserRepository
	skill    *repository.SkillRepository
	goal     *repository.GoalRepository
	test     *repository.TestRepository
	score    *repository.ScoreRepository
	feedback *repository.FeedbackRepository
	module   *repository.ModuleRepository
}

type services struct {
	ai           *service.AIService
	artifacts    *service.MinioArtifactStore
	auth         *service.AuthService
	user         *service.UserService
	qualifier    *service.QualifierService
	learningGoal *service.LearningGoalService
	test         *service.TestService
	evaluation   *service.EvaluationService
	module       *service.ModuleService
	recommend    *service.RecommendationService
	chat         *service.ChatService
}

type controllers struct {
	auth         *controller.AuthController
	user         *controller.UserController
	learningGoal *controller.LearningGoalController
	test         *controller.TestController
	module       *controller.ModuleController
	chat         *controller.ChatController
	health       *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		skill:    repository.NewSkillRepository(db),
		goal:     repository.NewGoalRepository(db),
		test:     repository.NewTestRepository(db),
		score:    repository.NewScoreRepository(db),
		feedback: repository.NewFeedbackRepository(db),
		module:   repository.NewModuleRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, store *config.Store, rdb *redis.Client) (*services, error) {
	s := &services{}

	s.ai = service.NewAIService(cfg.AI)

	artifacts, err := service.NewMinioArtifactStore(&cfg.Artifact, rdb)
	if err != nil {
		return nil, err
	}
	s.artifacts = artifacts

	s.auth = service.NewAuthService(repos.user, store)
	s.user = service.NewUserService(repos.user, repos.skill)
	s.qualifier = service.NewQualifierService(s.ai, cfg.AI)
	s.learningGoal = service.NewLearningGoalService(repos.goal, repos.skill, s.qualifier)
	s.test = service.NewTestService(s.ai, cfg.AI, s.artifacts, repos.test, repos.goal, repos.skill, repos.user, repos.score, repos.feedback)
	s.evaluation = service.NewEvaluationService(s.ai, cfg.AI)
	s.module = service.NewModuleService(s.ai, cfg.AI, s.artifacts, s.evaluation,
		repos.module, repos.goal, repos.skill, repos.user, repos.test, repos.score, repos.feedback)
	s.recommend = service.NewRecommendationService(s.ai, cfg.AI, repos.goal)
	s.chat = service.NewChatService(s.ai, cfg.AI, service.NewRedisChatHistory(rdb), repos.goal)

	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		user:         controller.NewUserController(s.user),
		learningGoal: controller.NewLearningGoalController(s.learningGoal, s.recommend),
		test:         controller.NewTestController(s.test),
		module:       controller.NewModuleController(s.module),
		chat:         controller.NewChatController(s.chat),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
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

	// debug 模式启动即迁移，release 模式只在显式要求时迁移
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := database.AutoMigrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	store := config.NewStore(cfg)
	app := &App{
		Config: store,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services, err := app.initServices(repos, cfg, store, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("learnpath-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, store)

	return app
}

// ApplyConfig 热更新请求路径上读取的配置项（JWT密钥/有效期等），
// 原子替换整个快照。数据库、Redis、MinIO连接和AI参数在构造时拷贝，改动需重启生效
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config.Replace(cfg)
	logger.Log.Info("configuration reloaded")
}

func (a *App) Run() {
	port := a.Config.Current().Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", port)
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
