package database

import (
	"errors"
	"time"

	"license-activation-server/internal/model"
	"license-activation-server/internal/store"

	"gorm.io/gorm"
)

func (d *Database) GetAllLicenses() ([]model.License, error) {
	var licenses []model.License
	err := d.db.Order("created_at desc").Find(&licenses).Error
	return licenses, err
}

func (d *Database) GetLicenseByID(id string) (*model.License, error) {
	var license model.License
	err := d.db.Where("id = ?", id).First(&license).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &license, nil
}

func (d *Database) GetLicenseByKey(key string) (*model.License, error) {
	var license model.License
	err := d.db.Where("key = ?", key).First(&license).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &license, nil
}

func (d *Database) CreateLicense(license *model.License) error {
	return d.db.Create(license).Error
}

func (d *Database) DeleteLicense(id string) error {
	return d.db.Where("id = ?", id).Delete(&model.License{}).Error
}

// BindMachineIfUnset 条件绑定:只有 machine_id 仍为空的那一次更新会生效,
// 并发的首次验证由此收敛到唯一赢家。
func (d *Database) BindMachineIfUnset(licenseID, machineID string) (bool, error) {
	result := d.db.Model(&model.License{}).
		Where("id = ? AND machine_id IS NULL", licenseID).
		Updates(map[string]interface{}{
			"machine_id": machineID,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (d *Database) IncrementUsage(licenseID string) error {
	now := time.Now()
	return d.db.Model(&model.License{}).
		Where("id = ?", licenseID).
		Updates(map[string]interface{}{
			"usage_count": gorm.Expr("usage_count + 1"),
			"last_used":   now,
			"updated_at":  now,
		}).Error
}

// InsertUsageOnce 依赖 (license_id, machine_id) 唯一索引,
// 重复插入翻译为 store.ErrAlreadyUsed 而不是基础设施错误。
func (d *Database) InsertUsageOnce(licenseID, machineID string) error {
	usage := &model.LicenseUsage{
		LicenseID: licenseID,
		MachineID: machineID,
		UsedAt:    time.Now(),
	}
	err := d.db.Create(usage).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return store.ErrAlreadyUsed
	}
	return err
}

func (d *Database) HasUsage(licenseID, machineID string) (bool, error) {
	var count int64
	err := d.db.Model(&model.LicenseUsage{}).
		Where("license_id = ? AND machine_id = ?", licenseID, machineID).
		Count(&count).Error
	return count > 0, err
}

func (d *Database) GetUsageByLicense(licenseID string) ([]model.LicenseUsage, error) {
	var usages []model.LicenseUsage
	err := d.db.Where("license_id = ?", licenseID).Order("used_at desc").Find(&usages).Error
	return usages, err
}
