package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/qs3c/talk_comment_server/config"
	"github.com/qs3c/talk_comment_server/internal/api/handler"
	"github.com/qs3c/talk_comment_server/internal/api/middleware"
	"github.com/qs3c/talk_comment_server/internal/web"
)

type Router struct {
	commentHandler   *handler.CommentHandler
	websocketHandler *handler.WebSocketHandler
	pageHandler      *handler.PageHandler
	healthHandler    *handler.HealthHandler
	cfg              *config.Config
	log              zerolog.Logger
}

func NewRouter(
	commentHandler *handler.CommentHandler,
	websocketHandler *handler.WebSocketHandler,
	pageHandler *handler.PageHandler,
	healthHandler *handler.HealthHandler,
	cfg *config.Config,
	log zerolog.Logger,
) *Router {
	return &Router{
		commentHandler:   commentHandler,
		websocketHandler: websocketHandler,
		pageHandler:      pageHandler,
		healthHandler:    healthHandler,
		cfg:              cfg,
		log:              log,
	}
}

func (r *Router) Setup() (*gin.Engine, error) {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	// RequestLogger 在外层，panic 恢复后的 500 也会记录
	engine.Use(middleware.RequestLogger(r.log))
	engine.Use(middleware.Recovery(r.log))
	engine.Use(middleware.CORS(r.cfg.CORS))

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	engine.SetHTMLTemplate(tmpl)
	engine.StaticFS("/static", web.Static())

	engine.GET("/health", r.healthHandler.Health)

	// 演讲现场页面与直播频道
	engine.GET("/", r.pageHandler.Audience)
	engine.GET("/presenter_ui", r.pageHandler.Presenter)
	engine.GET("/ws", r.websocketHandler.Handle)

	comments := engine.Group("/comments")
	{
		comments.POST("", r.commentHandler.Create)
		comments.POST("/", r.commentHandler.Create)
		comments.GET("/ip", r.commentHandler.ListByIP)
		comments.GET("/ip/:user_ip", r.commentHandler.ListByIP)
		comments.GET("/:id", r.commentHandler.Get)
		comments.PUT("/:id", r.commentHandler.Update)
		comments.DELETE("/:id", r.commentHandler.Delete)
	}

	return engine, nil
}
