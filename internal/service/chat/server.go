// Package chat 实现了聊天系统的核心服务层
// server.go
// 核心职责：聊天服务器聚合结构和依赖注入
// 按配置选择 Relay 实现，统一管理 ChatService 和 Relay 的生命周期
package chat

import (
	"context"
	"fmt"

	"cluster_chat_server/internal/config"
	"cluster_chat_server/internal/dao/mysql/repository"
	myredis "cluster_chat_server/internal/dao/redis"
	"cluster_chat_server/internal/dto/respond"
	"cluster_chat_server/internal/infrastructure/mq"
	"cluster_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// 转发模式
const (
	RelayModeChannel = "channel"
	RelayModeRedis   = "redis"
	RelayModeKafka   = "kafka"
)

// ChatServerConfig 聊天服务器配置
type ChatServerConfig struct {
	Mode           string // "channel"、"redis" 或 "kafka"
	InstanceID     string
	Repos          *repository.Repositories
	Redis          config.RedisConfig
	Kafka          config.KafkaConfig
	ChannelPrefix  string
	SendBufferSize int
	ReadLimit      int64

	// Relay 不为 nil 时直接使用，忽略 Mode
	Relay Relay
}

// ChatServer 聊天服务器聚合结构
type ChatServer struct {
	Service *ChatService
	Relay   Relay

	instanceID     string
	mode           string
	sendBufferSize int
	readLimit      int64

	cancel context.CancelFunc
	done   chan struct{}
}

// NewChatServer 创建聊天服务器实例
// 根据配置选择 ChannelRelay、RedisRelay 或 KafkaRelay
func NewChatServer(cfg ChatServerConfig) (*ChatServer, error) {
	if cfg.Repos == nil {
		return nil, fmt.Errorf("chat server requires repositories")
	}
	relay := cfg.Relay
	mode := cfg.Mode
	if relay == nil {
		switch mode {
		case RelayModeRedis:
			relay = myredis.NewRedisRelay(myredis.NewClient(&cfg.Redis), cfg.ChannelPrefix)
		case RelayModeKafka:
			relay = mq.NewKafkaRelay(cfg.Kafka, cfg.InstanceID)
		case RelayModeChannel, "":
			mode = RelayModeChannel
			relay = NewChannelRelay(nil)
		default:
			return nil, errorx.Newf(errorx.CodeInvalidParam, "unknown relay mode %q", cfg.Mode)
		}
	}

	return &ChatServer{
		Service:        NewChatService(cfg.Repos, relay),
		Relay:          relay,
		instanceID:     cfg.InstanceID,
		mode:           mode,
		sendBufferSize: cfg.SendBufferSize,
		readLimit:      cfg.ReadLimit,
	}, nil
}

// Start 连接转发中间件并启动监听协程
func (cs *ChatServer) Start(ctx context.Context) error {
	if err := cs.Relay.Connect(ctx); err != nil {
		return err
	}
	ctx, cs.cancel = context.WithCancel(ctx)
	cs.done = make(chan struct{})
	go func() {
		defer close(cs.done)
		cs.Relay.Start(ctx)
	}()
	zap.L().Info("chat server started", zap.String("instance_id", cs.instanceID), zap.String("relay_mode", cs.mode))
	return nil
}

// Close 下线本实例全部用户，再停止监听并关闭转发
func (cs *ChatServer) Close(ctx context.Context) error {
	cs.Service.Shutdown(ctx)
	if cs.cancel != nil {
		cs.cancel()
	}
	err := cs.Relay.Close()
	if cs.done != nil {
		select {
		case <-cs.done:
		case <-ctx.Done():
			zap.L().Warn("relay listener did not stop in time")
		}
	}
	return err
}

// Status 实例状态
func (cs *ChatServer) Status() respond.StatusRespond {
	return respond.StatusRespond{
		InstanceID:  cs.instanceID,
		RelayMode:   cs.mode,
		OnlineUsers: cs.Service.OnlineCount(),
	}
}
