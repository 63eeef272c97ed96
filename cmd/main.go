package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pcmarket_dev_v1_202608/internal/controller"
	"pcmarket_dev_v1_202608/internal/model"
	"pcmarket_dev_v1_202608/internal/repository"
	"pcmarket_dev_v1_202608/internal/router"
	"pcmarket_dev_v1_202608/internal/service"
	"pcmarket_dev_v1_202608/internal/task"
	"pcmarket_dev_v1_202608/pkg/database"
)

// @title PC 硬件集市 API
// @version 1.0
// @description 二手 PC 硬件交易平台：发现页 + 挂牌生命周期管理
// @BasePath /
func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	tasks := initTasks(deps)
	defer tasks.stop()

	// 4. 初始化路由
	r := gin.Default()
	router.InitRoutes(r, deps.Controllers.Auth, deps.Controllers.Discovery, deps.Controllers.Listing, deps.Controllers.Analytics)

	// 5. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
}

// Repositories 仓库集合
type Repositories struct {
	User      repository.UserRepository
	Product   repository.ProductRepository
	Analytics repository.AnalyticsRepository
}

// Services 服务集合
type Services struct {
	Auth      *service.AuthService
	Discovery *service.DiscoveryService
	Listing   *service.ListingService
	Analytics *service.AnalyticsService
	Storage   *service.StorageService
	AI        *service.AIService
	Pricing   *service.PricingService
}

// Controllers 控制器集合
type Controllers struct {
	Auth      *controller.AuthController
	Discovery *controller.DiscoveryController
	Listing   *controller.ListingController
	Analytics *controller.AnalyticsController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=postgres password=postgres dbname=pcmarket port=5432 sslmode=disable")

	return database.InitDB(dsn,
		&model.SysUser{},
		&model.Product{},
		&model.AnalyticsEvent{},
		&model.ProductDailyStat{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		User:      repository.NewUserRepository(db),
		Product:   repository.NewProductRepository(db),
		Analytics: repository.NewAnalyticsRepository(db),
	}

	// -------- 存储 & 外部服务 --------
	storageSvc := initStorageService()

	pricingSvc := service.NewPricingService(&service.PricingConfig{
		BaseURL: getEnv("PRICING_API_URL", ""),
		APIKey:  getEnv("PRICING_API_KEY", ""),
	})

	aiSvc := service.NewAIService(&service.AIConfig{
		ApiKey: getEnv("GEMINI_API_KEY", ""),
	}, pricingSvc)

	// -------- 业务服务 --------
	services := &Services{
		Storage: storageSvc,
		AI:      aiSvc,
		Pricing: pricingSvc,
	}
	services.Auth = service.NewAuthService(repos.User)
	services.Discovery = service.NewDiscoveryService(repos.Product)
	services.Listing = service.NewListingService(repos.Product, repos.Analytics, storageSvc, aiSvc)
	services.Analytics = service.NewAnalyticsService(repos.Analytics, repos.Product)

	// -------- Controller 层 --------
	controllers := &Controllers{
		Auth:      controller.NewAuthController(services.Auth),
		Discovery: controller.NewDiscoveryController(services.Discovery, services.Listing),
		Listing:   controller.NewListingController(services.Listing),
		Analytics: controller.NewAnalyticsController(services.Analytics),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// initStorageService 初始化存储服务
func initStorageService() *service.StorageService {
	storageSvc, err := service.NewStorageService(&service.StorageConfig{
		Provider:  getEnv("STORAGE_PROVIDER", "s3"),
		Bucket:    getEnv("AWS_BUCKET", ""),
		Region:    getEnv("AWS_REGION", ""),
		AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		CDNDomain: getEnv("AWS_CDN_DOMAIN", ""),
		BasePath:  getEnv("STORAGE_BASE_PATH", "pc-market"),
	})
	if err != nil {
		log.Fatalf("存储服务初始化失败: %v", err)
	}
	return storageSvc
}

// ==================== 定时任务 ====================

type runningTasks struct {
	cleanup *task.DraftCleanupTask
	rollup  *task.AnalyticsRollupTask
}

func (t *runningTasks) stop() {
	if t.cleanup != nil {
		t.cleanup.Stop()
	}
	if t.rollup != nil {
		t.rollup.Stop()
	}
}

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) *runningTasks {
	tasks := &runningTasks{
		cleanup: task.NewDraftCleanupTask(deps.Repos.Product, deps.Services.Storage),
		rollup:  task.NewAnalyticsRollupTask(deps.Repos.Analytics),
	}
	tasks.cleanup.Start()
	tasks.rollup.Start()

	log.Println("定时任务已启动")
	return tasks
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
