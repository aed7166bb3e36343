// Package model 定义数据库实体模型
// 本文件定义用户模型，包含账号、密码哈希和在线状态
package model

import (
	"cluster_chat_server/pkg/enum/user_state_enum"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User 用户模型，对应数据库 user 表
type User struct {
	// ID 由数据库自增分配，同时作为跨实例转发的通道名
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`

	Name string `gorm:"column:name;type:varchar(50);uniqueIndex;not null;comment:用户名"`

	// Password bcrypt 哈希后的密码
	Password string `gorm:"column:password;type:varchar(100);not null;comment:密码"`

	// State 在线状态，online / offline，新建用户默认 offline
	State string `gorm:"column:state;type:varchar(10);not null;default:offline;comment:在线状态"`

	// RawPassword 明文密码（不存入数据库），在 BeforeSave 中加密
	RawPassword string `gorm:"-" json:"-"`
}

func (User) TableName() string {
	return "user"
}

// BeforeCreate 新用户默认离线
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.State == "" {
		u.State = user_state_enum.Offline
	}
	return nil
}

// BeforeSave 将 RawPassword 加密后存入 Password 字段
func (u *User) BeforeSave(tx *gorm.DB) (err error) {
	if u.RawPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.RawPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.Password = string(hash)
		u.RawPassword = ""
	}
	return nil
}

// CheckPassword 校验明文密码是否与哈希匹配
func (u *User) CheckPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plaintext)) == nil
}

// IsOnline 存储中的状态是否为在线
func (u *User) IsOnline() bool {
	return u.State == user_state_enum.Online
}
