package store

import (
	"errors"

	"license-activation-server/internal/model"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrAlreadyUsed 该许可证在该机器上已经使用过
	ErrAlreadyUsed = errors.New("许可证在该机器上已使用过")
)

// Store 是持久层端口。除常规 CRUD 外只要求两个并发原语:
// BindMachineIfUnset(条件绑定)和 InsertUsageOnce(唯一插入),
// 协议的竞争正确性完全建立在这两个保证之上。
type Store interface {
	// 许可证
	GetAllLicenses() ([]model.License, error)
	GetLicenseByID(id string) (*model.License, error)
	GetLicenseByKey(key string) (*model.License, error)
	CreateLicense(license *model.License) error
	DeleteLicense(id string) error
	// BindMachineIfUnset 仅当 machine_id 仍为空时绑定,返回是否绑定成功
	BindMachineIfUnset(licenseID, machineID string) (bool, error)
	IncrementUsage(licenseID string) error

	// 机器
	GetAllMachines() ([]model.Machine, error)
	GetMachineByID(machineID string) (*model.Machine, error)
	SaveMachine(machine *model.Machine) error
	TouchMachineLastSeen(machineID string) error
	// ResetTrial 作为一个事务执行:停用绑定到该机器的所有许可证,
	// 封锁当前密钥并标记 needs_trial_reset
	ResetTrial(machineID string) error

	// 使用记录
	// InsertUsageOnce 违反唯一约束时返回 ErrAlreadyUsed
	InsertUsageOnce(licenseID, machineID string) error
	HasUsage(licenseID, machineID string) (bool, error)
	GetUsageByLicense(licenseID string) ([]model.LicenseUsage, error)

	// 设置
	GetSettings() (*model.Settings, error)
	UpdateSettings(trialDuration, maxMachines int) (*model.Settings, error)
}
