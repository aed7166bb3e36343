// Package chat 实现了聊天系统的核心服务层
// broker.go
// 核心职责：定义跨实例转发接口
// 用户在哪个实例登录，就在哪个实例订阅以用户 id 命名的通道；
// 其他实例找不到本地连接但存储显示用户在线时，向该通道发布原始报文
package chat

import "context"

//go:generate mockgen -source=broker.go -destination=mock/mock_relay.go -package=mock

// Relay 跨实例转发接口
// 实现：ChannelRelay（进程内）、redis.RedisRelay（发布订阅）、mq.KafkaRelay（单主题按 key 过滤）
type Relay interface {
	// Connect 建立到消息中间件的连接
	Connect(ctx context.Context) error
	// Start 运行监听循环，直到 ctx 取消或 Close 被调用
	Start(ctx context.Context)
	// Close 停止监听并释放连接
	Close() error
	// Subscribe 订阅用户通道，重复订阅无副作用
	Subscribe(ctx context.Context, userID int64) error
	// Unsubscribe 取消订阅，未订阅时无副作用
	Unsubscribe(ctx context.Context, userID int64) error
	// Publish 向用户通道发布报文，确认无人订阅时返回 errorx.ErrNoSubscriber
	Publish(ctx context.Context, userID int64, payload []byte) error
	// SetInboundHandler 设置收到转发报文时的回调，由监听循环调用
	SetInboundHandler(fn func(userID int64, payload []byte))
}
