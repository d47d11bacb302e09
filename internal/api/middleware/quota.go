package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/vidsum_go_server/internal/pkg/response"
	"github.com/qs3c/vidsum_go_server/internal/service"
)

// QuotaCheck 配额预检中间件。只做便宜的读检查提前拒掉明显超额的请求；
// 真正的消费是 service 层的原子自增，并发正确性不依赖这里。
func QuotaCheck(quotaService *service.QuotaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		usage, err := quotaService.GetUsage(userID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				response.NotFoundError(c, "")
			} else {
				response.ServerError(c, "配额检查失败")
			}
			c.Abort()
			return
		}

		if usage.Remaining <= 0 {
			response.QuotaError(c, "今日生成配额已用完")
			c.Abort()
			return
		}

		c.Next()
	}
}
