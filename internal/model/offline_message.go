package model

// OfflineMessage 离线消息
// ID 自增，按 ID 升序即为到达顺序；用户下次登录时整体取出并删除
type OfflineMessage struct {
	ID      int64  `gorm:"column:id;primaryKey;autoIncrement"`
	UserID  int64  `gorm:"column:user_id;index;not null;comment:接收者id"`
	Message string `gorm:"column:message;type:text;not null;comment:原始报文"`
}

func (OfflineMessage) TableName() string {
	return "offline_message"
}
