package request

import "cluster_chat_server/pkg/enum/message_type_enum"

// Envelope websocket 报文公共头，按 msgid 分发到对应处理函数
// Raw 保留原始报文，单聊和群聊按原样转发给接收方
type Envelope struct {
	MsgID message_type_enum.MsgType `json:"msgid"`
	Raw   []byte                    `json:"-"`
}

// OneChatRequest 单聊消息 (ONE_CHAT_MSG)
// 除下列字段外客户端可携带任意字段，转发时不做改写
type OneChatRequest struct {
	ID   int64  `json:"id" binding:"required,gt=0"`
	Name string `json:"name"`
	ToID int64  `json:"toid" binding:"required,gt=0"`
	Msg  string `json:"msg"`
}

// GroupChatRequest 群聊消息 (GROUP_CHAT_MSG)
type GroupChatRequest struct {
	ID      int64  `json:"id" binding:"required,gt=0"`
	Name    string `json:"name"`
	GroupID int64  `json:"groupid" binding:"required,gt=0"`
	Msg     string `json:"msg"`
}
