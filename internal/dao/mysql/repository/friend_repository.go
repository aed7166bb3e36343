package repository

import (
	"cluster_chat_server/internal/model"

	"gorm.io/gorm"
)

type friendRepository struct {
	db *gorm.DB
}

// NewFriendRepository 创建好友关系 Repository
func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

// Create 创建好友关系，重复添加由主键约束拒绝
func (r *friendRepository) Create(userID, friendID int64) error {
	if err := r.db.Create(&model.Friend{UserID: userID, FriendID: friendID}).Error; err != nil {
		return wrapDBErrorf(err, "添加好友 user_id=%d friend_id=%d", userID, friendID)
	}
	return nil
}

// FindFriends 查找好友列表
// 关系是无向的，A 添加 B 之后 B 的好友列表里也有 A
func (r *friendRepository) FindFriends(userID int64) ([]model.User, error) {
	var forward, backward []int64
	if err := r.db.Model(&model.Friend{}).Where("user_id = ?", userID).Pluck("friend_id", &forward).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询好友 user_id=%d", userID)
	}
	if err := r.db.Model(&model.Friend{}).Where("friend_id = ?", userID).Pluck("user_id", &backward).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询好友 friend_id=%d", userID)
	}

	ids := append(forward, backward...)
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	var users []model.User
	if err := r.db.Where("id IN ?", ids).Order("id").Find(&users).Error; err != nil {
		return nil, wrapDBError(err, "批量查询好友信息")
	}
	return users, nil
}
