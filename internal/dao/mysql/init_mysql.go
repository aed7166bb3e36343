// Package mysql 提供数据访问层的初始化
// 负责建立 MySQL 连接、自动迁移表结构、初始化 Repository 层
package mysql

import (
	"fmt"
	"time"

	"cluster_chat_server/internal/config"
	"cluster_chat_server/internal/dao/mysql/repository"
	"cluster_chat_server/internal/model"

	"go.uber.org/zap"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init 初始化数据库连接并返回 Repository 层实例
//  1. 构建 DSN 并建立连接
//  2. AutoMigrate 自动迁移表结构
//  3. 创建 Repository 实例
func Init(conf *config.MysqlConfig) (*repository.Repositories, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		conf.User,
		conf.Password,
		conf.Host,
		conf.Port,
		conf.DatabaseName,
	)

	db, err := Open(mysqldriver.Open(dsn))
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	zap.L().Info("mysql connected", zap.String("host", conf.Host), zap.String("database", conf.DatabaseName))
	return repository.NewRepositories(db), nil
}

// Open 使用给定驱动打开数据库并迁移表结构
// 生产环境传入 MySQL 驱动，测试传入 SQLite 驱动
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate 创建或更新表结构，不会删除已有字段或数据
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Friend{},
		&model.GroupInfo{},
		&model.GroupMember{},
		&model.OfflineMessage{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
