package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/vidsum_go_server/internal/api/middleware"
	"github.com/qs3c/vidsum_go_server/internal/pkg/response"
	"github.com/qs3c/vidsum_go_server/internal/service"
)

type UserHandler struct {
	authService *service.AuthService
}

func NewUserHandler(authService *service.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
	}
}

// GetProfile 获取当前用户信息
// GET /user/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	profile, err := h.authService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFoundError(c, "")
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, profile)
}
