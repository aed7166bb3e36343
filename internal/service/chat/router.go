// Package chat 实现了聊天系统的核心服务层
// router.go
// 核心职责：消息投递路由
// 优先级固定：本地连接 > 跨实例转发 > 离线存储
package chat

import (
	"context"

	"cluster_chat_server/internal/dao/mysql/repository"
	"cluster_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// Route 一条消息最终的投递方式
type Route int

const (
	RouteFailed  Route = iota // 未投递（离线存储失败）
	RouteLocal                // 本实例连接
	RouteRelay                // 发布到跨实例通道
	RouteOffline              // 写入离线消息
)

func (r Route) String() string {
	switch r {
	case RouteLocal:
		return "local"
	case RouteRelay:
		return "relay"
	case RouteOffline:
		return "offline"
	default:
		return "failed"
	}
}

// MessageRouter 负责把报文投递给目标用户
type MessageRouter struct {
	registry *ConnRegistry
	users    repository.UserRepository
	offline  repository.OfflineMessageRepository
	relay    Relay
}

func NewMessageRouter(registry *ConnRegistry, users repository.UserRepository,
	offline repository.OfflineMessageRepository, relay Relay) *MessageRouter {
	return &MessageRouter{
		registry: registry,
		users:    users,
		offline:  offline,
		relay:    relay,
	}
}

// Deliver 单聊投递，只在查找本地连接时持锁
func (m *MessageRouter) Deliver(ctx context.Context, target int64, payload []byte) Route {
	conn, ok := m.registry.Lookup(target)
	return m.route(ctx, target, conn, ok, payload)
}

// DeliverGroup 群聊扇出，整个成员循环在一次加锁内完成
// 每个成员恰好走一条路径，返回各成员的投递方式
func (m *MessageRouter) DeliverGroup(ctx context.Context, memberIDs []int64, payload []byte) map[int64]Route {
	routes := make(map[int64]Route, len(memberIDs))
	m.registry.LookupEach(memberIDs, func(userID int64, conn Conn, ok bool) {
		if _, done := routes[userID]; done {
			return
		}
		routes[userID] = m.route(ctx, userID, conn, ok, payload)
	})
	return routes
}

// DeliverInbound 处理其他实例转发来的报文
// 只尝试本地连接，失败则写入离线存储，绝不再次发布
func (m *MessageRouter) DeliverInbound(target int64, payload []byte) Route {
	route := RouteFailed
	m.registry.LookupEach([]int64{target}, func(userID int64, conn Conn, ok bool) {
		if ok && m.sendLocal(userID, conn, payload) {
			route = RouteLocal
			return
		}
		zap.L().Warn("relay message arrived for user not connected here", zap.Int64("user_id", userID))
		route = m.storeOffline(userID, payload)
	})
	return route
}

func (m *MessageRouter) route(ctx context.Context, target int64, conn Conn, found bool, payload []byte) Route {
	if found {
		if m.sendLocal(target, conn, payload) {
			return RouteLocal
		}
		return m.storeOffline(target, payload)
	}

	user, err := m.users.FindByID(target)
	switch {
	case errorx.IsNotFound(err):
		zap.L().Warn("message to unknown user, store offline", zap.Int64("user_id", target))
	case err != nil:
		// 查不到状态时不冒险发布，直接落离线
		zap.L().Error("load target state failed", zap.Int64("user_id", target), zap.Error(err))
	case user.IsOnline() && m.relay != nil:
		err := m.relay.Publish(ctx, target, payload)
		if err == nil {
			return RouteRelay
		}
		zap.L().Warn("relay publish failed, fallback to offline store", zap.Int64("user_id", target), zap.Error(err))
	}
	return m.storeOffline(target, payload)
}

func (m *MessageRouter) sendLocal(target int64, conn Conn, payload []byte) bool {
	if err := conn.Send(payload); err != nil {
		zap.L().Warn("local send failed", zap.Int64("user_id", target), zap.Error(err))
		return false
	}
	return true
}

func (m *MessageRouter) storeOffline(target int64, payload []byte) Route {
	if err := m.offline.Append(target, string(payload)); err != nil {
		zap.L().Error("store offline message failed", zap.Int64("user_id", target), zap.Error(err))
		return RouteFailed
	}
	return RouteOffline
}
