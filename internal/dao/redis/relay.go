package redis

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"cluster_chat_server/pkg/errorx"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisRelay 基于 PUBLISH/SUBSCRIBE 的跨实例转发
// 每个在线用户对应一个通道，通道名为 prefix + 十进制用户 id
type RedisRelay struct {
	client *redis.Client
	prefix string

	mu      sync.RWMutex
	pubsub  *redis.PubSub
	handler func(userID int64, payload []byte)

	closeOnce sync.Once
}

func NewRedisRelay(client *redis.Client, prefix string) *RedisRelay {
	return &RedisRelay{client: client, prefix: prefix}
}

// Connect 检查连接并创建订阅连接
func (r *RedisRelay) Connect(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return errorx.Wrap(err, errorx.CodeRelayError, "redis ping")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pubsub == nil {
		r.pubsub = r.client.Subscribe(ctx)
	}
	return nil
}

// Start 监听订阅连接，收到的报文交给回调
func (r *RedisRelay) Start(ctx context.Context) {
	pubsub := r.getPubSub()
	if pubsub == nil {
		zap.L().Error("redis relay started before connect")
		return
	}
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			r.dispatch(msg)
		}
	}
}

func (r *RedisRelay) dispatch(msg *redis.Message) {
	userID, err := strconv.ParseInt(strings.TrimPrefix(msg.Channel, r.prefix), 10, 64)
	if err != nil {
		zap.L().Warn("redis relay got message on unexpected channel", zap.String("channel", msg.Channel))
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("redis relay handler panic", zap.Any("error", rec), zap.Int64("user_id", userID))
		}
	}()
	r.mu.RLock()
	handler := r.handler
	r.mu.RUnlock()
	if handler == nil {
		return
	}
	handler(userID, []byte(msg.Payload))
}

// Close 关闭订阅连接和客户端，Start 随之退出
func (r *RedisRelay) Close() error {
	var err error
	r.closeOnce.Do(func() {
		if pubsub := r.getPubSub(); pubsub != nil {
			if e := pubsub.Close(); e != nil {
				err = e
			}
		}
		if e := r.client.Close(); e != nil && err == nil {
			err = e
		}
	})
	return err
}

func (r *RedisRelay) Subscribe(ctx context.Context, userID int64) error {
	pubsub := r.getPubSub()
	if pubsub == nil {
		return errorx.ErrRelayClosed
	}
	if err := pubsub.Subscribe(ctx, r.channel(userID)); err != nil {
		return errorx.Wrapf(err, errorx.CodeRelayError, "redis subscribe %s", r.channel(userID))
	}
	return nil
}

func (r *RedisRelay) Unsubscribe(ctx context.Context, userID int64) error {
	pubsub := r.getPubSub()
	if pubsub == nil {
		return nil
	}
	if err := pubsub.Unsubscribe(ctx, r.channel(userID)); err != nil {
		return errorx.Wrapf(err, errorx.CodeRelayError, "redis unsubscribe %s", r.channel(userID))
	}
	return nil
}

// Publish 发布报文，PUBLISH 返回的接收者数为 0 时返回 ErrNoSubscriber
func (r *RedisRelay) Publish(ctx context.Context, userID int64, payload []byte) error {
	n, err := r.client.Publish(ctx, r.channel(userID), payload).Result()
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeRelayError, "redis publish %s", r.channel(userID))
	}
	if n == 0 {
		return errorx.ErrNoSubscriber
	}
	return nil
}

func (r *RedisRelay) SetInboundHandler(fn func(userID int64, payload []byte)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = fn
}

// NumSub 查询用户通道当前的订阅数
func (r *RedisRelay) NumSub(ctx context.Context, userID int64) (int64, error) {
	res, err := r.client.PubSubNumSub(ctx, r.channel(userID)).Result()
	if err != nil {
		return 0, errorx.Wrap(err, errorx.CodeRelayError, "redis pubsub numsub")
	}
	return res[r.channel(userID)], nil
}

func (r *RedisRelay) channel(userID int64) string {
	return r.prefix + strconv.FormatInt(userID, 10)
}

func (r *RedisRelay) getPubSub() *redis.PubSub {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pubsub
}
