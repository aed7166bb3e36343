package repository

import (
	"cluster_chat_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type offlineMessageRepository struct {
	db *gorm.DB
}

// NewOfflineMessageRepository 创建离线消息 Repository
func NewOfflineMessageRepository(db *gorm.DB) OfflineMessageRepository {
	return &offlineMessageRepository{db: db}
}

// Append 追加离线消息
func (r *offlineMessageRepository) Append(userID int64, message string) error {
	if err := r.db.Create(&model.OfflineMessage{UserID: userID, Message: message}).Error; err != nil {
		return wrapDBErrorf(err, "保存离线消息 user_id=%d", userID)
	}
	return nil
}

// Drain 取出并删除离线消息
// 只删除本次读到的记录，读取之后新到达的消息留给下一次登录
func (r *offlineMessageRepository) Drain(userID int64) ([]string, error) {
	var rows []model.OfflineMessage
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			Order("id").
			Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		ids := make([]int64, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
		}
		return tx.Where("id IN ?", ids).Delete(&model.OfflineMessage{}).Error
	})
	if err != nil {
		return nil, wrapDBErrorf(err, "读取离线消息 user_id=%d", userID)
	}

	messages := make([]string, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, row.Message)
	}
	return messages, nil
}
