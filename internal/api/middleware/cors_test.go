package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/qs3c/vidsum_go_server/config"
)

func corsRouter(cfg config.CORSConfig) *gin.Engine {
	router := gin.New()
	router.Use(CORS(cfg))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return router
}

func TestCORS_AllowedOrigin(t *testing.T) {
	router := corsRouter(config.CORSConfig{
		AllowedOrigins: []string{"chrome-extension://abcdef", "https://app.example.com"},
	})

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "chrome-extension://abcdef")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "chrome-extension://abcdef", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Stripe-Signature")
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	router := corsRouter(config.CORSConfig{
		AllowedOrigins: []string{"https://app.example.com"},
	})

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// 请求照常处理，但不下发 CORS 头
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_WildcardOrigin(t *testing.T) {
	router := corsRouter(config.CORSConfig{
		AllowedOrigins: []string{"*"},
	})

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "chrome-extension://anything")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "chrome-extension://anything", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightRequest(t *testing.T) {
	router := corsRouter(config.CORSConfig{
		AllowedOrigins: []string{"https://app.example.com"},
	})

	req := httptest.NewRequest("OPTIONS", "/ping", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
