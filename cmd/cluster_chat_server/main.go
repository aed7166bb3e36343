package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cluster_chat_server/internal/config"
	dao "cluster_chat_server/internal/dao/mysql"
	"cluster_chat_server/internal/handler"
	"cluster_chat_server/internal/https_server"
	"cluster_chat_server/internal/infrastructure/logger"
	"cluster_chat_server/internal/infrastructure/validator"
	"cluster_chat_server/internal/service/chat"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")
	if conf.MainConfig.Mode != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 3. 初始化参数校验翻译器
	if err := validator.InitTrans("zh"); err != nil {
		zap.L().Fatal("init validator trans failed", zap.Error(err))
	}

	// 4. 初始化数据库
	repos, err := dao.Init(&conf.MysqlConfig)
	if err != nil {
		zap.L().Fatal("数据库初始化失败", zap.Error(err))
	}
	zap.L().Info("数据库初始化成功")

	// 5. 初始化 ChatServer
	instanceID := conf.ServerConfig.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}
	cs, err := chat.NewChatServer(chat.ChatServerConfig{
		Mode:           conf.RelayConfig.Mode,
		InstanceID:     instanceID,
		Repos:          repos,
		Redis:          conf.RedisConfig,
		Kafka:          conf.KafkaConfig,
		ChannelPrefix:  conf.RelayConfig.ChannelPrefix,
		SendBufferSize: conf.ServerConfig.SendBufferSize,
		ReadLimit:      conf.ServerConfig.ReadLimit,
	})
	if err != nil {
		zap.L().Fatal("ChatServer 创建失败", zap.Error(err))
	}
	if err := cs.Start(context.Background()); err != nil {
		zap.L().Fatal("ChatServer 启动失败", zap.Error(err))
	}
	zap.L().Info("ChatServer 初始化成功", zap.String("instance_id", instanceID), zap.String("relay_mode", conf.RelayConfig.Mode))

	// 6. 初始化 HTTP 服务器
	engine := https_server.Init(handler.NewHandlers(cs))
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: engine,
	}

	// 7. 启动服务
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 设置信号监听
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// 等待信号
	<-quit
	zap.L().Info("关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 先下线本实例用户并关闭 websocket，Shutdown 不等待被接管的连接
	if err := cs.Close(ctx); err != nil {
		zap.L().Error("close chat server failed", zap.Error(err))
	}
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("http server shutdown failed", zap.Error(err))
	}

	zap.L().Info("服务器已关闭")
	_ = zap.L().Sync()
}
