package main

import (
	"fmt"
	"log"

	"github.com/qs3c/vidsum_go_server/config"
	"github.com/qs3c/vidsum_go_server/internal/api"
	"github.com/qs3c/vidsum_go_server/internal/api/handler"
	"github.com/qs3c/vidsum_go_server/internal/database"
	"github.com/qs3c/vidsum_go_server/internal/pkg/billing"
	"github.com/qs3c/vidsum_go_server/internal/pkg/cron"
	"github.com/qs3c/vidsum_go_server/internal/pkg/generation"
	"github.com/qs3c/vidsum_go_server/internal/pkg/oauth"
	"github.com/qs3c/vidsum_go_server/internal/repository"
	"github.com/qs3c/vidsum_go_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化外部客户端
	billingClient := billing.NewStripeClient(cfg.Stripe.SecretKey)
	generator := generation.NewOpenAIClient(&cfg.OpenAI)

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewProcessedEventRepository(db)

	// 初始化 Service
	resolver := service.NewEntitlementResolver(cfg)
	ledger := service.NewIdempotencyLedger(eventRepo, rdb)
	authService := service.NewAuthService(userRepo, cfg)
	quotaService := service.NewQuotaService(userRepo, cfg)
	syncService := service.NewSubscriptionSync(userRepo, resolver, ledger, billingClient)
	checkoutService := service.NewCheckoutService(userRepo, billingClient, cfg)
	generateService := service.NewGenerateService(quotaService, generator)

	// 初始化 Handler
	stateStore := oauth.NewStateStore(rdb)
	authHandler := handler.NewAuthHandler(authService, stateStore)
	userHandler := handler.NewUserHandler(authService)
	usageHandler := handler.NewUsageHandler(quotaService)
	billingHandler := handler.NewBillingHandler(checkoutService, syncService, cfg)
	generateHandler := handler.NewGenerateHandler(generateService)

	// 启动定时任务（兜底清零 + 台账清理）
	cronService := cron.NewService(userRepo, ledger, cfg.Webhook.RetentionDays())
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		userHandler,
		usageHandler,
		billingHandler,
		generateHandler,
		quotaService,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
