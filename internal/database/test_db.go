package database

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// InitTestDB 打开独立的内存数据库。限制为单连接,
// 避免 sqlite 在并发测试下报 busy。
func InitTestDB() *Database {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		panic("failed to connect test database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic("failed to get sql db")
	}
	sqlDB.SetMaxOpenConns(1)

	d := &Database{db: db}
	if err := d.migrate(); err != nil {
		panic("failed to migrate test database")
	}
	return d
}

func (d *Database) CleanTestDB() {
	sqlDB, err := d.db.DB()
	if err != nil {
		return
	}
	sqlDB.Close()
}
