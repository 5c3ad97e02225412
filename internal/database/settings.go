package database

import (
	"errors"
	"time"

	"license-activation-server/internal/model"

	"gorm.io/gorm"
)

func (d *Database) GetSettings() (*model.Settings, error) {
	var settings model.Settings
	err := d.db.Order("id desc").First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 不存在时写入默认设置
		settings = model.Settings{TrialDuration: 30, MaxMachines: 1}
		if err := d.db.Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (d *Database) UpdateSettings(trialDuration, maxMachines int) (*model.Settings, error) {
	settings, err := d.GetSettings()
	if err != nil {
		return nil, err
	}

	settings.TrialDuration = trialDuration
	settings.MaxMachines = maxMachines
	settings.UpdatedAt = time.Now()
	if err := d.db.Save(settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}
