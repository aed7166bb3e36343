package respond

import "cluster_chat_server/pkg/enum/message_type_enum"

// AckRespond 通用应答，添加好友、加入群组等只需返回结果码的请求使用
type AckRespond struct {
	MsgID  message_type_enum.MsgType `json:"msgid"`
	Errno  int                       `json:"errno"`
	ErrMsg string                    `json:"errmsg,omitempty"`
}

// CreateGroupRespond 创建群组应答 (CREATE_GROUP_MSG_ACK)
type CreateGroupRespond struct {
	MsgID   message_type_enum.MsgType `json:"msgid"`
	Errno   int                       `json:"errno"`
	ErrMsg  string                    `json:"errmsg,omitempty"`
	GroupID int64                     `json:"groupid,omitempty"`
}

// StatusRespond 实例状态 (GET /status)
type StatusRespond struct {
	InstanceID  string `json:"instance_id"`
	RelayMode   string `json:"relay_mode"`
	OnlineUsers int    `json:"online_users"`
}
