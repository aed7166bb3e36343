// Package chat 实现了聊天系统的核心服务层
// auth_handler.go
// 核心职责：登录、注销、注册
package chat

import (
	"context"
	"time"

	"cluster_chat_server/internal/dao/mysql/repository"
	"cluster_chat_server/internal/dto/request"
	"cluster_chat_server/internal/dto/respond"
	"cluster_chat_server/internal/model"
	"cluster_chat_server/pkg/enum/message_type_enum"
	"cluster_chat_server/pkg/enum/user_state_enum"
	"cluster_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// login 处理 LOGIN_MSG
// 顺序：校验账号 -> 本地注册 -> 订阅 -> 存储置为在线 -> 取离线消息、好友和群组
func (s *ChatService) login(ctx context.Context, conn Conn, env *request.Envelope, ts time.Time) {
	var req request.LoginRequest
	if err := bindRequest(env, &req); err != nil {
		replyLoginError(conn, err)
		return
	}

	user, err := s.repos.User.FindByID(req.ID)
	if err != nil && !errorx.IsNotFound(err) {
		zap.L().Error("login load user failed", zap.Int64("user_id", req.ID), zap.Error(err))
		replyLoginError(conn, errorx.ErrServerBusy)
		return
	}
	if err != nil || !user.CheckPassword(req.Password) {
		replyLoginError(conn, errorx.ErrInvalidAccount)
		return
	}
	if user.IsOnline() {
		replyLoginError(conn, errorx.ErrDuplicateLogin)
		return
	}
	if !s.registry.RegisterIfAbsent(user.ID, conn) {
		if s.registry.Closed() {
			replyLoginError(conn, errorx.ErrServerBusy)
			return
		}
		replyLoginError(conn, errorx.ErrDuplicateLogin)
		return
	}

	if s.relay != nil {
		if err := s.relay.Subscribe(ctx, user.ID); err != nil {
			zap.L().Warn("relay subscribe failed", zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}

	ok, err := s.repos.User.CompareAndSetState(user.ID, user_state_enum.Offline, user_state_enum.Online)
	if err != nil {
		zap.L().Error("login update state failed", zap.Int64("user_id", user.ID), zap.Error(err))
	} else if !ok {
		// 其他实例抢先登录了同一账号，撤销本地注册和订阅
		s.registry.UnregisterIfCurrent(user.ID, conn)
		if s.relay != nil {
			if err := s.relay.Unsubscribe(ctx, user.ID); err != nil {
				zap.L().Warn("relay unsubscribe failed", zap.Int64("user_id", user.ID), zap.Error(err))
			}
		}
		replyLoginError(conn, errorx.ErrDuplicateLogin)
		return
	}
	// 置为在线期间本实例开始关闭，记录已被 Shutdown 移除，撤销在线状态
	if !s.registry.IsCurrent(user.ID, conn) {
		zap.L().Warn("login aborted by shutdown", zap.Int64("user_id", user.ID))
		s.offline(ctx, user.ID)
		replyLoginError(conn, errorx.ErrServerBusy)
		return
	}

	rsp := respond.LoginRespond{
		MsgID: message_type_enum.LoginMsgAck,
		Errno: errorx.CodeSuccess,
		ID:    user.ID,
		Name:  user.Name,
	}
	if rsp.OfflineMsg, err = s.repos.OfflineMessage.Drain(user.ID); err != nil {
		zap.L().Error("drain offline message failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	if friends, err := s.repos.Friend.FindFriends(user.ID); err != nil {
		zap.L().Error("load friends failed", zap.Int64("user_id", user.ID), zap.Error(err))
	} else {
		rsp.Friends = toFriendResponds(friends)
	}
	if groups, err := s.repos.Group.FindGroupsByUser(user.ID); err != nil {
		zap.L().Error("load groups failed", zap.Int64("user_id", user.ID), zap.Error(err))
	} else {
		rsp.Groups = toGroupResponds(groups)
	}

	zap.L().Info("user login", zap.Int64("user_id", user.ID), zap.Int("offline_msgs", len(rsp.OfflineMsg)))
	reply(conn, rsp)
}

func replyLoginError(conn Conn, err error) {
	reply(conn, respond.LoginRespond{
		MsgID:  message_type_enum.LoginMsgAck,
		Errno:  errorx.GetCode(err),
		ErrMsg: errorx.GetMsg(err),
	})
}

func toFriendResponds(friends []model.User) []respond.FriendRespond {
	res := make([]respond.FriendRespond, 0, len(friends))
	for _, f := range friends {
		res = append(res, respond.FriendRespond{ID: f.ID, Name: f.Name, State: f.State})
	}
	return res
}

func toGroupResponds(groups []repository.GroupWithMembers) []respond.GroupRespond {
	res := make([]respond.GroupRespond, 0, len(groups))
	for _, g := range groups {
		users := make([]respond.GroupMemberRespond, 0, len(g.Members))
		for _, m := range g.Members {
			users = append(users, respond.GroupMemberRespond{ID: m.ID, Name: m.Name, State: m.State, Role: m.Role})
		}
		res = append(res, respond.GroupRespond{ID: g.ID, GroupName: g.Name, GroupDesc: g.Desc, Users: users})
	}
	return res
}

// logout 处理 LOGINOUT_MSG，只注销当前连接自己登录的账号
func (s *ChatService) logout(ctx context.Context, conn Conn, env *request.Envelope, ts time.Time) {
	var req request.LogoutRequest
	if err := bindRequest(env, &req); err != nil {
		zap.L().Warn("bad logout request", zap.Error(err))
		return
	}
	if !s.registry.UnregisterIfCurrent(req.ID, conn) {
		zap.L().Warn("logout ignored, user not logged in on this connection", zap.Int64("user_id", req.ID))
		return
	}
	s.offline(ctx, req.ID)
	zap.L().Info("user logout", zap.Int64("user_id", req.ID))
}

// register 处理 REG_MSG，新用户默认离线，用户名唯一性由存储保证
func (s *ChatService) register(ctx context.Context, conn Conn, env *request.Envelope, ts time.Time) {
	var req request.RegisterRequest
	if err := bindRequest(env, &req); err != nil {
		reply(conn, respond.RegisterRespond{
			MsgID:  message_type_enum.RegMsgAck,
			Errno:  errorx.GetCode(err),
			ErrMsg: errorx.GetMsg(err),
		})
		return
	}

	user := &model.User{Name: req.Name, RawPassword: req.Password, State: user_state_enum.Offline}
	if err := s.repos.User.Create(user); err != nil {
		zap.L().Warn("register failed", zap.String("name", req.Name), zap.Error(err))
		reply(conn, respond.RegisterRespond{
			MsgID:  message_type_enum.RegMsgAck,
			Errno:  errorx.ErrRegisterFailure.Code,
			ErrMsg: errorx.ErrRegisterFailure.Msg,
		})
		return
	}
	reply(conn, respond.RegisterRespond{
		MsgID: message_type_enum.RegMsgAck,
		Errno: errorx.CodeSuccess,
		ID:    user.ID,
	})
}
