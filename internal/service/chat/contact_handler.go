// Package chat 实现了聊天系统的核心服务层
// contact_handler.go
// 核心职责：好友和群组关系
package chat

import (
	"context"
	"time"

	"cluster_chat_server/internal/dao/mysql/repository"
	"cluster_chat_server/internal/dto/request"
	"cluster_chat_server/internal/dto/respond"
	"cluster_chat_server/internal/model"
	"cluster_chat_server/pkg/enum/group_role_enum"
	"cluster_chat_server/pkg/enum/message_type_enum"
	"cluster_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// addFriend 处理 ADD_FRIEND_MSG，不做去重，重复关系由存储拒绝
func (s *ChatService) addFriend(ctx context.Context, conn Conn, env *request.Envelope, ts time.Time) {
	var req request.AddFriendRequest
	if err := bindRequest(env, &req); err != nil {
		replyAck(conn, message_type_enum.AddFriendMsgAck, err)
		return
	}
	err := s.repos.Friend.Create(req.ID, req.FriendID)
	if err != nil {
		zap.L().Warn("add friend failed", zap.Int64("user_id", req.ID), zap.Int64("friend_id", req.FriendID), zap.Error(err))
	}
	replyAck(conn, message_type_enum.AddFriendMsgAck, err)
}

// createGroup 处理 CREATE_GROUP_MSG，群组和群主成员关系在同一事务中创建
func (s *ChatService) createGroup(ctx context.Context, conn Conn, env *request.Envelope, ts time.Time) {
	var req request.CreateGroupRequest
	if err := bindRequest(env, &req); err != nil {
		reply(conn, respond.CreateGroupRespond{
			MsgID:  message_type_enum.CreateGroupMsgAck,
			Errno:  errorx.GetCode(err),
			ErrMsg: errorx.GetMsg(err),
		})
		return
	}

	group := &model.GroupInfo{Name: req.GroupName, Desc: req.GroupDesc}
	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Group.Create(group); err != nil {
			return err
		}
		return tx.GroupMember.Create(group.ID, req.ID, group_role_enum.Creator)
	})
	if err != nil {
		zap.L().Error("create group failed", zap.Int64("user_id", req.ID), zap.String("name", req.GroupName), zap.Error(err))
		reply(conn, respond.CreateGroupRespond{
			MsgID:  message_type_enum.CreateGroupMsgAck,
			Errno:  errorx.GetCode(err),
			ErrMsg: errorx.GetMsg(err),
		})
		return
	}
	reply(conn, respond.CreateGroupRespond{
		MsgID:   message_type_enum.CreateGroupMsgAck,
		Errno:   errorx.CodeSuccess,
		GroupID: group.ID,
	})
}

// addGroup 处理 ADD_GROUP_MSG，以普通成员身份加入
func (s *ChatService) addGroup(ctx context.Context, conn Conn, env *request.Envelope, ts time.Time) {
	var req request.AddGroupRequest
	if err := bindRequest(env, &req); err != nil {
		replyAck(conn, message_type_enum.AddGroupMsgAck, err)
		return
	}
	if _, err := s.repos.Group.FindByID(req.GroupID); err != nil {
		replyAck(conn, message_type_enum.AddGroupMsgAck, err)
		return
	}
	err := s.repos.GroupMember.Create(req.GroupID, req.ID, group_role_enum.Normal)
	if err != nil {
		zap.L().Warn("add group failed", zap.Int64("user_id", req.ID), zap.Int64("group_id", req.GroupID), zap.Error(err))
	}
	replyAck(conn, message_type_enum.AddGroupMsgAck, err)
}

func replyAck(conn Conn, msgID message_type_enum.MsgType, err error) {
	reply(conn, respond.AckRespond{
		MsgID:  msgID,
		Errno:  errorx.GetCode(err),
		ErrMsg: errorx.GetMsg(err),
	})
}
