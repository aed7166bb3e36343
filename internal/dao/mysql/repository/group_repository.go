// Package repository 提供数据访问层的具体实现
// 本文件实现 GroupRepository 接口，处理群组相关的数据库操作
package repository

import (
	"cluster_chat_server/internal/model"

	"gorm.io/gorm"
)

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository 创建群组 Repository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

// Create 创建群组，群主成员关系由调用方在同一事务中写入
func (r *groupRepository) Create(group *model.GroupInfo) error {
	if err := r.db.Create(group).Error; err != nil {
		return wrapDBErrorf(err, "创建群组 name=%s", group.Name)
	}
	return nil
}

// FindByID 按 id 查找群组
func (r *groupRepository) FindByID(id int64) (*model.GroupInfo, error) {
	var group model.GroupInfo
	if err := r.db.First(&group, "id = ?", id).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群组 id=%d", id)
	}
	return &group, nil
}

// FindGroupsByUser 查找用户加入的群组，并一次性查出这些群组的全部成员
func (r *groupRepository) FindGroupsByUser(userID int64) ([]GroupWithMembers, error) {
	var groups []model.GroupInfo
	err := r.db.Model(&model.GroupInfo{}).
		Select("group_info.*").
		Joins("JOIN group_member ON group_member.group_id = group_info.id").
		Where("group_member.user_id = ?", userID).
		Order("group_info.id").
		Find(&groups).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询用户所在群 user_id=%d", userID)
	}
	if len(groups) == 0 {
		return []GroupWithMembers{}, nil
	}

	groupIDs := make([]int64, 0, len(groups))
	for _, g := range groups {
		groupIDs = append(groupIDs, g.ID)
	}
	var members []GroupMemberWithUserInfo
	err = r.db.Table("group_member AS gm").
		Select("gm.group_id, u.id, u.name, u.state, gm.role").
		Joins("JOIN `user` AS u ON u.id = gm.user_id").
		Where("gm.group_id IN ?", groupIDs).
		Order("gm.group_id, u.id").
		Scan(&members).Error
	if err != nil {
		return nil, wrapDBError(err, "批量查询群成员")
	}

	byGroup := make(map[int64][]GroupMemberWithUserInfo, len(groups))
	for _, m := range members {
		byGroup[m.GroupID] = append(byGroup[m.GroupID], m)
	}
	result := make([]GroupWithMembers, 0, len(groups))
	for _, g := range groups {
		result = append(result, GroupWithMembers{GroupInfo: g, Members: byGroup[g.ID]})
	}
	return result, nil
}
