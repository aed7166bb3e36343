// Package chat 实现了聊天系统的核心服务层
// service.go
// 核心职责：聊天业务入口
// 1. 解析报文公共头，按 msgid 分发到处理函数
// 2. 处理连接异常断开和跨实例转发回调
// 3. 进程退出时把本实例在线用户全部下线
package chat

import (
	"context"
	"encoding/json"
	"io"
	"runtime/debug"
	"time"

	"cluster_chat_server/internal/dao/mysql/repository"
	"cluster_chat_server/internal/dto/request"
	"cluster_chat_server/internal/infrastructure/validator"
	"cluster_chat_server/pkg/enum/message_type_enum"
	"cluster_chat_server/pkg/enum/user_state_enum"
	"cluster_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// ChatService 聊天服务，持有连接表、路由、分发表和转发通道
// 每个进程由 main 构造一个实例，测试中可以并存多个
type ChatService struct {
	repos      *repository.Repositories
	relay      Relay
	registry   *ConnRegistry
	router     *MessageRouter
	dispatcher *Dispatcher
}

// NewChatService 创建聊天服务并注册全部处理函数
// relay 为 nil 时只做本地投递和离线存储
func NewChatService(repos *repository.Repositories, relay Relay) *ChatService {
	s := &ChatService{
		repos:      repos,
		relay:      relay,
		registry:   NewConnRegistry(),
		dispatcher: NewDispatcher(),
	}
	s.router = NewMessageRouter(s.registry, repos.User, repos.OfflineMessage, relay)

	s.dispatcher.Register(message_type_enum.LoginMsg, s.login)
	s.dispatcher.Register(message_type_enum.LogoutMsg, s.logout)
	s.dispatcher.Register(message_type_enum.RegMsg, s.register)
	s.dispatcher.Register(message_type_enum.OneChatMsg, s.oneChat)
	s.dispatcher.Register(message_type_enum.AddFriendMsg, s.addFriend)
	s.dispatcher.Register(message_type_enum.CreateGroupMsg, s.createGroup)
	s.dispatcher.Register(message_type_enum.AddGroupMsg, s.addGroup)
	s.dispatcher.Register(message_type_enum.GroupChatMsg, s.groupChat)
	if err := s.dispatcher.Validate(message_type_enum.Inbound()); err != nil {
		panic(err)
	}

	if relay != nil {
		relay.SetInboundHandler(s.HandleRelayMessage)
	}
	return s
}

// HandleMessage 处理一条客户端报文，由连接读协程调用
// 报文无法解析时记日志后丢弃，连接保持
func (s *ChatService) HandleMessage(ctx context.Context, conn Conn, data []byte, ts time.Time) {
	var env request.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		zap.L().Error("bad message", zap.ByteString("data", data), zap.Error(err))
		return
	}
	env.Raw = data

	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("[Recovery from panic]",
				zap.Any("error", rec),
				zap.Stringer("msgid", env.MsgID),
				zap.String("stack", string(debug.Stack())),
			)
		}
	}()
	s.dispatcher.Resolve(env.MsgID)(ctx, conn, &env, ts)
}

// ClientCloseException 连接异常断开，按连接反查用户并下线
func (s *ChatService) ClientCloseException(conn Conn) {
	for {
		userID, ok := s.registry.UnregisterByConn(conn)
		if !ok {
			return
		}
		s.offline(context.Background(), userID)
	}
}

// HandleRelayMessage 跨实例转发回调，由 Relay 监听协程调用
func (s *ChatService) HandleRelayMessage(userID int64, payload []byte) {
	route := s.router.DeliverInbound(userID, payload)
	zap.L().Debug("relay message delivered", zap.Int64("user_id", userID), zap.Stringer("route", route))
}

// Shutdown 把本实例全部在线用户下线并关闭其连接
// 先关闭连接表，之后到达的登录请求回复服务繁忙
func (s *ChatService) Shutdown(ctx context.Context) {
	s.registry.Close()
	for _, userID := range s.registry.IDs() {
		conn, ok := s.registry.UnregisterByID(userID)
		if !ok {
			continue
		}
		s.offline(ctx, userID)
		if closer, ok := conn.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				zap.L().Warn("close connection failed", zap.Int64("user_id", userID), zap.Error(err))
			}
		}
	}
}

// OnlineCount 本实例在线用户数
func (s *ChatService) OnlineCount() int {
	return s.registry.Len()
}

// offline 取消订阅并把存储状态置为离线，调用前连接表中的记录已被移除
func (s *ChatService) offline(ctx context.Context, userID int64) {
	if s.relay != nil {
		if err := s.relay.Unsubscribe(ctx, userID); err != nil {
			zap.L().Warn("relay unsubscribe failed", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
	if err := s.repos.User.UpdateState(userID, user_state_enum.Offline); err != nil {
		zap.L().Error("update user state failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

// bindRequest 解析并校验报文字段
func bindRequest(env *request.Envelope, obj any) error {
	if err := json.Unmarshal(env.Raw, obj); err != nil {
		return errorx.Wrap(err, errorx.CodeInvalidParam, "bad json")
	}
	if err := validator.ValidateStruct(obj); err != nil {
		return errorx.Wrap(err, errorx.CodeInvalidParam, validator.Translate(err))
	}
	return nil
}

// reply 序列化应答并发回给请求方
func reply(conn Conn, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		zap.L().Error("marshal respond failed", zap.Error(err))
		return
	}
	if err := conn.Send(data); err != nil {
		zap.L().Warn("send respond failed", zap.Error(err))
	}
}
