package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/vidsum_go_server/internal/pkg/jwt"
	"github.com/qs3c/vidsum_go_server/internal/pkg/response"
)

const (
	UserIDKey = "userID"
)

// Auth 强制 JWT 认证，校验失败直接 401 中断
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			response.AuthError(c, "缺少或错误的认证信息")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(tokenString, jwtSecret)
		if err != nil {
			response.AuthError(c, "令牌无效或已过期")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

// OptionalAuth 尽力解析令牌，解析不了就按匿名放行。
// 结账入口用它：游客也能发起，登录用户带上身份。
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			if claims, err := jwt.ParseToken(tokenString, jwtSecret); err == nil {
				c.Set(UserIDKey, claims.UserID)
			}
		}
		c.Next()
	}
}

// bearerToken 取出 Authorization 头里的 Bearer 令牌
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return "", false
	}
	return tokenString, true
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}
