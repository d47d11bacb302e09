package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/vidsum_go_server/config"
	"github.com/qs3c/vidsum_go_server/internal/api/middleware"
	"github.com/qs3c/vidsum_go_server/internal/model/dto"
	"github.com/qs3c/vidsum_go_server/internal/pkg/billing"
	"github.com/qs3c/vidsum_go_server/internal/service"
)

const maxWebhookBodyBytes = int64(65536)

type BillingHandler struct {
	checkoutService *service.CheckoutService
	syncService     *service.SubscriptionSync
	cfg             *config.Config
}

func NewBillingHandler(
	checkoutService *service.CheckoutService,
	syncService *service.SubscriptionSync,
	cfg *config.Config,
) *BillingHandler {
	return &BillingHandler{
		checkoutService: checkoutService,
		syncService:     syncService,
		cfg:             cfg,
	}
}

// CreateSession 创建结账会话（可选认证，游客也能发起）
// POST /checkout/create-session
func (h *BillingHandler) CreateSession(c *gin.Context) {
	var req dto.CreateSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
	}

	var userID *int64
	if id, ok := middleware.GetUserID(c); ok {
		userID = &id
	}

	info, err := h.checkoutService.CreateSession(c.Request.Context(), userID, req.Email)
	if err != nil {
		if errors.Is(err, service.ErrBillingNotConfigured) {
			log.Printf("Checkout not configured: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "billing not configured"})
			return
		}
		log.Printf("Failed to create checkout session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, info)
}

// GetSessionStatus 查询结账会话状态
// GET /checkout/session-status?session_id=
func (h *BillingHandler) GetSessionStatus(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing session_id"})
		return
	}

	info, err := h.checkoutService.GetSessionStatus(c.Request.Context(), sessionID)
	if err != nil {
		log.Printf("Failed to get session status: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get session status"})
		return
	}

	c.JSON(http.StatusOK, info)
}

// Webhook Stripe webhook 入口。签名通过后一律确认成功——内部处理失败
// 只记日志，避免提供方的重试风暴放大一次瞬时故障；
// 漏掉的状态会被同一客户的后续事件纠正。
// POST /webhooks/stripe
func (h *BillingHandler) Webhook(c *gin.Context) {
	secret := h.cfg.Stripe.WebhookSecret
	if secret == "" {
		log.Printf("Stripe webhook secret not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook not configured"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	event, err := billing.VerifyWebhook(body, c.GetHeader("Stripe-Signature"), secret)
	if err != nil {
		log.Printf("Stripe webhook signature verification failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature verification failed"})
		return
	}

	if err := h.syncService.HandleEvent(c.Request.Context(), &event); err != nil {
		log.Printf("Webhook event %s processing failed: %v", event.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
