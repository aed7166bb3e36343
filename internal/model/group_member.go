package model

// GroupMember 群成员关联表
type GroupMember struct {
	GroupID int64  `gorm:"column:group_id;primaryKey;autoIncrement:false"`
	UserID  int64  `gorm:"column:user_id;primaryKey;autoIncrement:false;index"`
	Role    string `gorm:"column:role;type:varchar(10);not null;default:normal;comment:creator 群主 normal 普通成员"`
}

func (GroupMember) TableName() string {
	return "group_member"
}
