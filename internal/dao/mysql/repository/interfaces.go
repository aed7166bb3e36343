// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"cluster_chat_server/internal/model"

	"gorm.io/gorm"
)

// ==================== Repository 接口定义 ====================

// UserRepository 用户数据访问接口
type UserRepository interface {
	// FindByID 根据 id 查找用户，不存在时返回 CodeNotFound 错误
	FindByID(id int64) (*model.User, error)
	// Create 创建新用户，成功后 user.ID 为数据库分配的 id
	Create(user *model.User) error
	// UpdateState 更新在线状态
	UpdateState(id int64, state string) error
	// CompareAndSetState 仅当当前状态为 from 时更新为 to，返回是否更新成功
	CompareAndSetState(id int64, from, to string) (bool, error)
}

// FriendRepository 好友关系数据访问接口
type FriendRepository interface {
	// Create 创建好友关系
	Create(userID, friendID int64) error
	// FindFriends 查找用户的全部好友（双向），附带好友当前在线状态
	FindFriends(userID int64) ([]model.User, error)
}

// GroupRepository 群组数据访问接口
type GroupRepository interface {
	// Create 创建群组，成功后 group.ID 为数据库分配的 id
	Create(group *model.GroupInfo) error
	// FindByID 根据 id 查找群组
	FindByID(id int64) (*model.GroupInfo, error)
	// FindGroupsByUser 查找用户加入的全部群组及其成员
	FindGroupsByUser(userID int64) ([]GroupWithMembers, error)
}

// GroupMemberRepository 群成员数据访问接口
type GroupMemberRepository interface {
	// Create 添加群成员
	Create(groupID, userID int64, role string) error
	// FindMemberIDs 查找群组全部成员 id（包含发送者本人）
	FindMemberIDs(groupID int64) ([]int64, error)
}

// OfflineMessageRepository 离线消息数据访问接口
type OfflineMessageRepository interface {
	// Append 追加一条离线消息
	Append(userID int64, message string) error
	// Drain 按到达顺序取出用户全部离线消息并删除，读取与删除在同一事务内完成
	Drain(userID int64) ([]string, error)
}

// ==================== 复合结构 ====================

// GroupMemberWithUserInfo 群成员详细信息（含用户资料）
type GroupMemberWithUserInfo struct {
	GroupID int64  `json:"-"`
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	State   string `json:"state"`
	Role    string `json:"role"`
}

// GroupWithMembers 群组及其成员列表
type GroupWithMembers struct {
	model.GroupInfo
	Members []GroupMemberWithUserInfo
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db             *gorm.DB
	User           UserRepository
	Friend         FriendRepository
	Group          GroupRepository
	GroupMember    GroupMemberRepository
	OfflineMessage OfflineMessageRepository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:             db,
		User:           NewUserRepository(db),
		Friend:         NewFriendRepository(db),
		Group:          NewGroupRepository(db),
		GroupMember:    NewGroupMemberRepository(db),
		OfflineMessage: NewOfflineMessageRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
