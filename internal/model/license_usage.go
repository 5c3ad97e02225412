package model

import "time"

// LicenseUsage 是一次性使用账本:每个 (license_id, machine_id)
// 组合最多存在一条记录,由唯一索引保证。
type LicenseUsage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	LicenseID string    `json:"license_id" gorm:"size:36;not null;uniqueIndex:idx_license_machine"`
	MachineID string    `json:"machine_id" gorm:"size:255;not null;uniqueIndex:idx_license_machine"`
	UsedAt    time.Time `json:"used_at"`
}
