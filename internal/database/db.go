package database

import (
	"os"
	"path/filepath"

	"license-activation-server/internal/model"
	"license-activation-server/internal/store"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// Database 是 store.Store 的 gorm/sqlite 生产适配器
type Database struct {
	db *gorm.DB
}

var _ store.Store = (*Database)(nil)

func InitDB(dbPath string) (*Database, error) {
	// 创建数据目录
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	d := &Database{db: db}
	if err := d.migrate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Database) migrate() error {
	// 自动迁移模型
	err := d.db.AutoMigrate(
		&model.License{},
		&model.Machine{},
		&model.LicenseUsage{},
		&model.Settings{},
	)
	if err != nil {
		return err
	}

	// 默认设置不存在时写入一条
	var count int64
	if err := d.db.Model(&model.Settings{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if err := d.db.Create(&model.Settings{TrialDuration: 30, MaxMachines: 1}).Error; err != nil {
			return err
		}
	}
	return nil
}
