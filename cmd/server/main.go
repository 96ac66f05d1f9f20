package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qs3c/talk_comment_server/config"
	"github.com/qs3c/talk_comment_server/internal/api"
	"github.com/qs3c/talk_comment_server/internal/api/handler"
	"github.com/qs3c/talk_comment_server/internal/database"
	"github.com/qs3c/talk_comment_server/internal/pkg/logger"
	"github.com/qs3c/talk_comment_server/internal/pkg/pubsub"
	"github.com/qs3c/talk_comment_server/internal/pkg/ws"
	"github.com/qs3c/talk_comment_server/internal/repository"
	"github.com/qs3c/talk_comment_server/internal/service"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)

	// 初始化数据库
	db, err := database.Open(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect database")
	}
	defer database.Close(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化直播频道
	hub := ws.NewHub(time.Duration(cfg.Live.WriteWaitSeconds)*time.Second, log)
	defer hub.Close()

	var (
		publisher   service.EventPublisher = hub
		broadcaster handler.Broadcaster    = hub
	)

	// 开启 Redis 时，消息先经 Redis 再由每个实例的订阅者写给本地连接
	if cfg.Redis.Enabled {
		rdb, err := database.NewRedis(&cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect redis")
		}
		defer rdb.Close()
		log.Info().Str("channel", cfg.Live.Channel).Msg("Redis connected")

		redisPublisher := pubsub.NewPublisher(rdb, cfg.Live.Channel)
		publisher = redisPublisher
		broadcaster = redisPublisher

		subscriber := pubsub.NewSubscriber(rdb, cfg.Live.Channel)
		go func() {
			err := subscriber.Subscribe(ctx, func(data []byte) {
				hub.Broadcast(data)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("Live subscriber stopped")
			}
		}()
	}

	// 初始化 Repository / Service / Handler
	commentRepo := repository.NewCommentRepository(db)
	commentService := service.NewCommentService(commentRepo, publisher, log)

	commentHandler := handler.NewCommentHandler(commentService, log)
	websocketHandler := handler.NewWebSocketHandler(hub, broadcaster, cfg.Live, log)
	pageHandler := handler.NewPageHandler(cfg.DomainName)
	healthHandler := handler.NewHealthHandler(commentService, log)

	// 初始化 Router
	router := api.NewRouter(commentHandler, websocketHandler, pageHandler, healthHandler, cfg, log)
	engine, err := router.Setup()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up router")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	// 启动服务器
	go func() {
		log.Info().Str("addr", addr).Str("domain", cfg.DomainName).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server")

	timeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}
