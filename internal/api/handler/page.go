package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/qs3c/talk_comment_server/internal/web"
)

type PageHandler struct {
	domainName string
}

func NewPageHandler(domainName string) *PageHandler {
	return &PageHandler{domainName: domainName}
}

// Audience 观众页
// GET /
func (h *PageHandler) Audience(c *gin.Context) {
	c.HTML(http.StatusOK, web.AudiencePage, web.PageData{
		DomainName: h.domainName,
		ClientIP:   c.ClientIP(),
	})
}

// Presenter 讲者页
// GET /presenter_ui
func (h *PageHandler) Presenter(c *gin.Context) {
	c.HTML(http.StatusOK, web.PresenterPage, web.PageData{
		DomainName: h.domainName,
		ClientIP:   c.ClientIP(),
	})
}

// CommentCounter 健康检查读取评论总数，同时验证数据库可用
type CommentCounter interface {
	Count(ctx context.Context) (int64, error)
}

type HealthHandler struct {
	counter CommentCounter
	log     zerolog.Logger
}

func NewHealthHandler(counter CommentCounter, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{counter: counter, log: log}
}

// Health 健康检查
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	now := time.Now().UTC().Format(time.RFC3339)

	total, err := h.counter.Count(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"timestamp": now,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": now,
		"comments":  total,
	})
}
