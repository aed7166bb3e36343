package respond

import "cluster_chat_server/pkg/enum/message_type_enum"

// LoginRespond 登录应答 (LOGIN_MSG_ACK)
// 失败时只有 msgid/errno/errmsg
type LoginRespond struct {
	MsgID      message_type_enum.MsgType `json:"msgid"`
	Errno      int                       `json:"errno"`
	ErrMsg     string                    `json:"errmsg,omitempty"`
	ID         int64                     `json:"id,omitempty"`
	Name       string                    `json:"name,omitempty"`
	OfflineMsg []string                  `json:"offlinemsg,omitempty"`
	Friends    []FriendRespond           `json:"friends,omitempty"`
	Groups     []GroupRespond            `json:"groups,omitempty"`
}

// FriendRespond 好友信息
type FriendRespond struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// GroupRespond 群组信息
type GroupRespond struct {
	ID        int64                `json:"id"`
	GroupName string               `json:"groupname"`
	GroupDesc string               `json:"groupdesc"`
	Users     []GroupMemberRespond `json:"users"`
}

// GroupMemberRespond 群成员信息
type GroupMemberRespond struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
	Role  string `json:"role"`
}
