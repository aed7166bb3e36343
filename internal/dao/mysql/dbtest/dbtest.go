// Package dbtest 为测试提供基于内存 SQLite 的数据库
package dbtest

import (
	"testing"

	"cluster_chat_server/internal/dao/mysql"
	"cluster_chat_server/internal/dao/mysql/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB 打开一个测试独占的内存数据库
// 内存库随连接存在，连接数固定为 1，迁移和后续读写都落在同一个库上
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := mysql.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// NewRepositories 返回绑定到测试数据库的 Repository 聚合
func NewRepositories(t testing.TB) *repository.Repositories {
	t.Helper()
	return repository.NewRepositories(NewDB(t))
}
