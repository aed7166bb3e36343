// Package chat 实现了聊天系统的核心服务层
// channel_broker.go
// 核心职责：进程内转发实现
// 1. 单机部署时作为 Relay 使用，不依赖外部消息中间件
// 2. 多个 ChannelRelay 共享同一个 ChannelBus 即可在一个进程里模拟多个实例
package chat

import (
	"context"
	"fmt"
	"sync"

	"cluster_chat_server/pkg/constants"
	"cluster_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// ChannelBus 进程内总线，记录每个用户通道被哪些实例订阅
type ChannelBus struct {
	mu   sync.RWMutex
	subs map[int64]map[*ChannelRelay]struct{}
}

func NewChannelBus() *ChannelBus {
	return &ChannelBus{subs: make(map[int64]map[*ChannelRelay]struct{})}
}

func (b *ChannelBus) subscribe(userID int64, r *ChannelRelay) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.subs[userID]
	if !ok {
		set = make(map[*ChannelRelay]struct{})
		b.subs[userID] = set
	}
	set[r] = struct{}{}
}

func (b *ChannelBus) unsubscribe(userID int64, r *ChannelRelay) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if set, ok := b.subs[userID]; ok {
		delete(set, r)
		if len(set) == 0 {
			delete(b.subs, userID)
		}
	}
}

func (b *ChannelBus) removeAll(r *ChannelRelay) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for userID, set := range b.subs {
		delete(set, r)
		if len(set) == 0 {
			delete(b.subs, userID)
		}
	}
}

// publish 投递到每个订阅实例的缓冲通道，返回收到消息的实例数
func (b *ChannelBus) publish(userID int64, payload []byte) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	delivered, full := 0, 0
	for r := range b.subs[userID] {
		switch r.enqueue(relayMessage{userID: userID, payload: payload}) {
		case nil:
			delivered++
		case errorx.ErrSendBufferFull:
			full++
		}
	}
	if delivered == 0 && full > 0 {
		return 0, fmt.Errorf("relay channel for user %d: %w", userID, errorx.ErrSendBufferFull)
	}
	return delivered, nil
}

type relayMessage struct {
	userID  int64
	payload []byte
}

// ChannelRelay 基于 channel 的 Relay 实现
type ChannelRelay struct {
	bus      *ChannelBus
	Transmit chan relayMessage

	mu      sync.RWMutex
	handler func(userID int64, payload []byte)

	done      chan struct{}
	closeOnce sync.Once
}

// NewChannelRelay 创建进程内转发，bus 为 nil 时使用独立总线
func NewChannelRelay(bus *ChannelBus) *ChannelRelay {
	if bus == nil {
		bus = NewChannelBus()
	}
	return &ChannelRelay{
		bus:      bus,
		Transmit: make(chan relayMessage, constants.CHANNEL_SIZE),
		done:     make(chan struct{}),
	}
}

func (r *ChannelRelay) Connect(ctx context.Context) error {
	if r.closed() {
		return errorx.ErrRelayClosed
	}
	return nil
}

// Start 消费 Transmit 通道，直到 ctx 取消或 Close
func (r *ChannelRelay) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		case msg := <-r.Transmit:
			r.dispatch(msg)
		}
	}
}

func (r *ChannelRelay) dispatch(msg relayMessage) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("channel relay handler panic", zap.Any("error", rec), zap.Int64("user_id", msg.userID))
		}
	}()
	r.mu.RLock()
	handler := r.handler
	r.mu.RUnlock()
	if handler == nil {
		zap.L().Warn("channel relay has no inbound handler", zap.Int64("user_id", msg.userID))
		return
	}
	handler(msg.userID, msg.payload)
}

func (r *ChannelRelay) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
		r.bus.removeAll(r)
	})
	return nil
}

func (r *ChannelRelay) Subscribe(ctx context.Context, userID int64) error {
	if r.closed() {
		return errorx.ErrRelayClosed
	}
	r.bus.subscribe(userID, r)
	return nil
}

func (r *ChannelRelay) Unsubscribe(ctx context.Context, userID int64) error {
	r.bus.unsubscribe(userID, r)
	return nil
}

// Publish 非阻塞发布，没有任何实例订阅时返回 ErrNoSubscriber
func (r *ChannelRelay) Publish(ctx context.Context, userID int64, payload []byte) error {
	if r.closed() {
		return errorx.ErrRelayClosed
	}
	data := make([]byte, len(payload))
	copy(data, payload)
	n, err := r.bus.publish(userID, data)
	if err != nil {
		return err
	}
	if n == 0 {
		return errorx.ErrNoSubscriber
	}
	return nil
}

func (r *ChannelRelay) SetInboundHandler(fn func(userID int64, payload []byte)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = fn
}

func (r *ChannelRelay) enqueue(msg relayMessage) error {
	if r.closed() {
		return errorx.ErrRelayClosed
	}
	select {
	case r.Transmit <- msg:
		return nil
	default:
		return errorx.ErrSendBufferFull
	}
}

func (r *ChannelRelay) closed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}
