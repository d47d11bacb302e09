package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/vidsum_go_server/config"
	"github.com/qs3c/vidsum_go_server/internal/api/handler"
	"github.com/qs3c/vidsum_go_server/internal/api/middleware"
	"github.com/qs3c/vidsum_go_server/internal/service"
)

type Router struct {
	authHandler     *handler.AuthHandler
	userHandler     *handler.UserHandler
	usageHandler    *handler.UsageHandler
	billingHandler  *handler.BillingHandler
	generateHandler *handler.GenerateHandler
	quotaService    *service.QuotaService
	cfg             *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	usageHandler *handler.UsageHandler,
	billingHandler *handler.BillingHandler,
	generateHandler *handler.GenerateHandler,
	quotaService *service.QuotaService,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:     authHandler,
		userHandler:     userHandler,
		usageHandler:    usageHandler,
		billingHandler:  billingHandler,
		generateHandler: generateHandler,
		quotaService:    quotaService,
		cfg:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	// 公开接口 - 认证
	auth := engine.Group("/auth")
	{
		auth.POST("/register", r.authHandler.Register)
		auth.POST("/login", r.authHandler.Login)
		auth.GET("/google", r.authHandler.GoogleAuth)
		auth.GET("/google/callback", r.authHandler.GoogleCallback)
	}

	// Stripe webhook（签名校验在 handler 内完成，不走认证）
	engine.POST("/webhooks/stripe", r.billingHandler.Webhook)

	// 结账（可选认证：游客也能发起）
	checkout := engine.Group("/checkout")
	checkout.Use(middleware.OptionalAuth(r.cfg.JWT.Secret))
	{
		checkout.POST("/create-session", r.billingHandler.CreateSession)
		checkout.GET("/session-status", r.billingHandler.GetSessionStatus)
	}

	// 需要认证的接口
	authenticated := engine.Group("")
	authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
	{
		user := authenticated.Group("/user")
		{
			user.GET("/profile", r.userHandler.GetProfile)
			user.GET("/usage", r.usageHandler.GetUsage)
			user.POST("/increment-usage", r.usageHandler.IncrementUsage)
		}

		// 生成接口：预检中间件挡明显超额请求，真正扣减在 service 内原子完成
		authenticated.POST("/generate", middleware.QuotaCheck(r.quotaService), r.generateHandler.Generate)
	}

	return engine
}
