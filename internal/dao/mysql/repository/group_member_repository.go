package repository

import (
	"cluster_chat_server/internal/model"

	"gorm.io/gorm"
)

type groupMemberRepository struct {
	db *gorm.DB
}

// NewGroupMemberRepository 创建群成员 Repository
func NewGroupMemberRepository(db *gorm.DB) GroupMemberRepository {
	return &groupMemberRepository{db: db}
}

// Create 添加群成员
func (r *groupMemberRepository) Create(groupID, userID int64, role string) error {
	member := &model.GroupMember{GroupID: groupID, UserID: userID, Role: role}
	if err := r.db.Create(member).Error; err != nil {
		return wrapDBErrorf(err, "添加群成员 group_id=%d user_id=%d", groupID, userID)
	}
	return nil
}

// FindMemberIDs 查找群成员 id 列表
func (r *groupMemberRepository) FindMemberIDs(groupID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.GroupMember{}).
		Where("group_id = ?", groupID).
		Order("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询群成员 group_id=%d", groupID)
	}
	return ids, nil
}
