package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/vidsum_go_server/internal/api/middleware"
	"github.com/qs3c/vidsum_go_server/internal/pkg/response"
	"github.com/qs3c/vidsum_go_server/internal/service"
)

// UsageHandler 配额相关接口。响应结构是扩展前端直接消费的裸 JSON，
// 不走统一 envelope。
type UsageHandler struct {
	quotaService *service.QuotaService
}

func NewUsageHandler(quotaService *service.QuotaService) *UsageHandler {
	return &UsageHandler{
		quotaService: quotaService,
	}
}

// GetUsage 获取当前用户配额
// GET /user/usage
func (h *UsageHandler) GetUsage(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	usage, err := h.quotaService.GetUsage(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	c.JSON(http.StatusOK, usage)
}

// IncrementUsage 消费一次配额（扩展内部调用，生成请求前置步骤）
// POST /user/increment-usage
func (h *UsageHandler) IncrementUsage(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	result, err := h.quotaService.IncrementIfAllowed(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	if !result.Allowed {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "今日生成配额已用完",
			"usage":   result.Usage,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"usage":   result.Usage,
	})
}
