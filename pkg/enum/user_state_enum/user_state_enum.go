package user_state_enum

// 用户在线状态，存储在 user.state 字段
const (
	Online  = "online"
	Offline = "offline"
)
