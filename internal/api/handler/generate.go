package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/vidsum_go_server/internal/api/middleware"
	"github.com/qs3c/vidsum_go_server/internal/model/dto"
	"github.com/qs3c/vidsum_go_server/internal/pkg/response"
	"github.com/qs3c/vidsum_go_server/internal/service"
)

type GenerateHandler struct {
	generateService *service.GenerateService
}

func NewGenerateHandler(generateService *service.GenerateService) *GenerateHandler {
	return &GenerateHandler{
		generateService: generateService,
	}
}

// Generate 为视频转录生成摘要
// POST /generate
func (h *GenerateHandler) Generate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.generateService.Generate(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuotaExceeded):
			response.QuotaError(c, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrUpstreamGeneration):
			response.UpstreamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}
