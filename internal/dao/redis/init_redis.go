// Package redis 提供基于 Redis 发布订阅的跨实例转发
// 本文件仅包含 Redis 连接初始化逻辑
// 使用 github.com/redis/go-redis/v9 作为底层客户端
package redis

import (
	"strconv"

	"cluster_chat_server/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewClient 按配置创建 Redis 客户端
// 发布走连接池，订阅由 PubSub 单独占用一条连接
func NewClient(conf *config.RedisConfig) *redis.Client {
	// 拼接地址：host:port
	addr := conf.Host + ":" + strconv.Itoa(conf.Port)

	poolSize := conf.PoolSize
	if poolSize <= 0 {
		poolSize = 50
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: conf.Password, // 无密码留空
		DB:       conf.Db,
		// 连接池配置
		PoolSize:     poolSize,
		MinIdleConns: poolSize / 4,
	})
}
