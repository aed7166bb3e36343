// Package chat 实现了聊天系统的核心服务层
// message_handler.go
// 核心职责：单聊和群聊，报文原样转发给接收方
package chat

import (
	"context"
	"time"

	"cluster_chat_server/internal/dto/request"
	"cluster_chat_server/internal/dto/respond"
	"cluster_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// oneChat 处理 ONE_CHAT_MSG
func (s *ChatService) oneChat(ctx context.Context, conn Conn, env *request.Envelope, ts time.Time) {
	var req request.OneChatRequest
	if err := bindRequest(env, &req); err != nil {
		replyInvalid(conn, env, err)
		return
	}
	route := s.router.Deliver(ctx, req.ToID, env.Raw)
	zap.L().Debug("one chat",
		zap.Int64("user_id", req.ID),
		zap.Int64("to_id", req.ToID),
		zap.Stringer("route", route),
	)
}

// groupChat 处理 GROUP_CHAT_MSG，发送者本人也会收到
func (s *ChatService) groupChat(ctx context.Context, conn Conn, env *request.Envelope, ts time.Time) {
	var req request.GroupChatRequest
	if err := bindRequest(env, &req); err != nil {
		replyInvalid(conn, env, err)
		return
	}
	memberIDs, err := s.repos.GroupMember.FindMemberIDs(req.GroupID)
	if err != nil {
		zap.L().Error("load group members failed", zap.Int64("group_id", req.GroupID), zap.Error(err))
		return
	}
	routes := s.router.DeliverGroup(ctx, memberIDs, env.Raw)
	zap.L().Debug("group chat",
		zap.Int64("user_id", req.ID),
		zap.Int64("group_id", req.GroupID),
		zap.Int("members", len(routes)),
	)
}

// replyInvalid 报文字段不合法，用请求自身的 msgid 回复
func replyInvalid(conn Conn, env *request.Envelope, err error) {
	reply(conn, respond.AckRespond{
		MsgID:  env.MsgID,
		Errno:  errorx.CodeInvalidParam,
		ErrMsg: errorx.GetMsg(err),
	})
}
