package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 错误码定义
const (
	CodeSuccess       = 0
	CodeParamError    = 1000
	CodeAuthFailed    = 1001
	CodeNotFound      = 1003
	CodeQuotaExceeded = 1004
	CodeUpstreamError = 1006
	CodeServerError   = 5000
)

// 错误码对应的默认消息
var codeMessages = map[int]string{
	CodeSuccess:       "success",
	CodeParamError:    "参数错误",
	CodeAuthFailed:    "认证失败",
	CodeNotFound:      "资源不存在",
	CodeQuotaExceeded: "配额不足",
	CodeUpstreamError: "上游服务错误",
	CodeServerError:   "服务器内部错误",
}

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带自定义消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应（携带真实 HTTP 状态码）
func Error(c *gin.Context, status, code int, message string) {
	if message == "" {
		message = codeMessages[code]
	}
	c.JSON(status, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// ParamError 参数错误
func ParamError(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, CodeParamError, message)
}

// AuthError 认证失败
func AuthError(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, CodeAuthFailed, message)
}

// NotFoundError 资源不存在
func NotFoundError(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, CodeNotFound, message)
}

// QuotaError 配额不足
func QuotaError(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, CodeQuotaExceeded, message)
}

// UpstreamError 上游服务错误
func UpstreamError(c *gin.Context, message string) {
	Error(c, http.StatusBadGateway, CodeUpstreamError, message)
}

// ServerError 服务器错误
func ServerError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, CodeServerError, message)
}
