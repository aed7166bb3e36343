package model

// Friend 好友关系，一条记录表示双方互为好友
type Friend struct {
	UserID   int64 `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	FriendID int64 `gorm:"column:friend_id;primaryKey;autoIncrement:false;index"`
}

func (Friend) TableName() string {
	return "friend"
}
