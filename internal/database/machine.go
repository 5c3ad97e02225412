package database

import (
	"errors"
	"time"

	"license-activation-server/internal/model"
	"license-activation-server/internal/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (d *Database) GetAllMachines() ([]model.Machine, error) {
	var machines []model.Machine
	err := d.db.Order("last_seen desc").Find(&machines).Error
	return machines, err
}

func (d *Database) GetMachineByID(machineID string) (*model.Machine, error) {
	var machine model.Machine
	err := d.db.Where("machine_id = ?", machineID).First(&machine).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &machine, nil
}

func (d *Database) SaveMachine(machine *model.Machine) error {
	machine.UpdatedAt = time.Now()
	return d.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(machine).Error
}

func (d *Database) TouchMachineLastSeen(machineID string) error {
	now := time.Now()
	return d.db.Model(&model.Machine{}).
		Where("machine_id = ?", machineID).
		Updates(map[string]interface{}{
			"last_seen":  now,
			"updated_at": now,
		}).Error
}

// ResetTrial 在一个事务里完成重置的全部效果:停用绑定到该机器的许可证,
// 把当前密钥记入 blocked_license_key,清空绑定并标记 needs_trial_reset。
// SET 子句右侧引用的是更新前的行值,所以封锁的总是重置那一刻的密钥;
// 重复调用保持幂等。
func (d *Database) ResetTrial(machineID string) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.License{}).
			Where("machine_id = ?", machineID).
			Updates(map[string]interface{}{
				"is_active":  false,
				"updated_at": time.Now(),
			}).Error
		if err != nil {
			return err
		}

		return tx.Model(&model.Machine{}).
			Where("machine_id = ?", machineID).
			Updates(map[string]interface{}{
				"blocked_license_key": gorm.Expr("license_key"),
				"license_key":         nil,
				"needs_trial_reset":   true,
				"updated_at":          time.Now(),
			}).Error
	})
}
