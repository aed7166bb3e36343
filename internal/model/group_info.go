package model

type GroupInfo struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;type:varchar(50);uniqueIndex;not null;comment:群名称"`
	Desc string `gorm:"column:description;type:varchar(200);comment:群描述"`
}

func (GroupInfo) TableName() string {
	return "group_info"
}
