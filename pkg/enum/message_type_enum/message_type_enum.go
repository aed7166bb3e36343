// Package message_type_enum 定义客户端与服务端之间的消息类型（报文中的 msgid 字段）
package message_type_enum

// MsgType 消息类型
type MsgType int

const (
	LoginMsg          MsgType = iota + 1 // 登录
	LoginMsgAck                          // 登录应答
	LogoutMsg                            // 注销
	RegMsg                               // 注册
	RegMsgAck                            // 注册应答
	OneChatMsg                           // 单聊
	AddFriendMsg                         // 添加好友
	CreateGroupMsg                       // 创建群组
	AddGroupMsg                          // 加入群组
	GroupChatMsg                         // 群聊
	AddFriendMsgAck                      // 添加好友应答
	CreateGroupMsgAck                    // 创建群组应答
	AddGroupMsgAck                       // 加入群组应答
)

var names = map[MsgType]string{
	LoginMsg:          "LOGIN_MSG",
	LoginMsgAck:       "LOGIN_MSG_ACK",
	LogoutMsg:         "LOGINOUT_MSG",
	RegMsg:            "REG_MSG",
	RegMsgAck:         "REG_MSG_ACK",
	OneChatMsg:        "ONE_CHAT_MSG",
	AddFriendMsg:      "ADD_FRIEND_MSG",
	CreateGroupMsg:    "CREATE_GROUP_MSG",
	AddGroupMsg:       "ADD_GROUP_MSG",
	GroupChatMsg:      "GROUP_CHAT_MSG",
	AddFriendMsgAck:   "ADD_FRIEND_MSG_ACK",
	CreateGroupMsgAck: "CREATE_GROUP_MSG_ACK",
	AddGroupMsgAck:    "ADD_GROUP_MSG_ACK",
}

func (t MsgType) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return "UNKNOWN_MSG"
}

// Inbound 客户端可以发起的消息类型，启动时校验每一种都注册了处理函数
func Inbound() []MsgType {
	return []MsgType{
		LoginMsg,
		LogoutMsg,
		RegMsg,
		OneChatMsg,
		AddFriendMsg,
		CreateGroupMsg,
		AddGroupMsg,
		GroupChatMsg,
	}
}
