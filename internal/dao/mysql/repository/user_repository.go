package repository

import (
	"cluster_chat_server/internal/model"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户 Repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByID 按 id 查找用户
func (r *userRepository) FindByID(id int64) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 id=%d", id)
	}
	return &user, nil
}

// Create 创建用户
func (r *userRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return wrapDBErrorf(err, "创建用户 name=%s", user.Name)
	}
	return nil
}

// UpdateState 更新用户在线状态
func (r *userRepository) UpdateState(id int64, state string) error {
	if err := r.db.Model(&model.User{}).Where("id = ?", id).Update("state", state).Error; err != nil {
		return wrapDBErrorf(err, "更新用户状态 id=%d state=%s", id, state)
	}
	return nil
}

// CompareAndSetState 条件更新，多个实例并发登录同一账号时只有一个能成功
func (r *userRepository) CompareAndSetState(id int64, from, to string) (bool, error) {
	res := r.db.Model(&model.User{}).Where("id = ? AND state = ?", id, from).Update("state", to)
	if res.Error != nil {
		return false, wrapDBErrorf(res.Error, "更新用户状态 id=%d %s->%s", id, from, to)
	}
	return res.RowsAffected == 1, nil
}
