package respond

import "cluster_chat_server/pkg/enum/message_type_enum"

// RegisterRespond 注册应答 (REG_MSG_ACK)
type RegisterRespond struct {
	MsgID  message_type_enum.MsgType `json:"msgid"`
	Errno  int                       `json:"errno"`
	ErrMsg string                    `json:"errmsg,omitempty"`
	ID     int64                     `json:"id,omitempty"`
}
