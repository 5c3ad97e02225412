package service

import (
	"errors"
	"time"

	"license-activation-server/internal/model"
	"license-activation-server/internal/store"
)

// MachineService 负责机器的注册/心跳和试用期重置。
// 每台机器只有两个逻辑状态:正常 和 待重置(needs_trial_reset)。
type MachineService struct {
	store store.Store
}

func NewMachineService(s store.Store) *MachineService {
	return &MachineService{store: s}
}

type RegisterInput struct {
	MachineID  string
	Hostname   string
	Platform   string
	Version    string
	LicenseKey model.OptionalString
}

// RegisterOrHeartbeat 创建或更新机器记录。元数据和 last_seen 总是更新,
// 不带密钥的心跳永远不会被重置状态阻塞。
//
// licenseKey 的三种形态:缺失 = 不动现有绑定;显式 null = 清除绑定
// (待重置状态下绑定本就为空);字符串 = 绑定,但待重置状态下重放
// 被封锁的旧密钥会被静默丢弃——换一个真正不同的密钥才会解除重置。
func (s *MachineService) RegisterOrHeartbeat(in RegisterInput) (*model.Machine, error) {
	now := time.Now()

	machine, err := s.store.GetMachineByID(in.MachineID)
	if errors.Is(err, store.ErrNotFound) {
		machine = &model.Machine{
			MachineID: in.MachineID,
			CreatedAt: now,
		}
	} else if err != nil {
		return nil, err
	}

	machine.Hostname = in.Hostname
	machine.Platform = in.Platform
	machine.Version = in.Version
	machine.LastSeen = now

	if in.LicenseKey.Set {
		switch {
		case !in.LicenseKey.Valid:
			if !machine.NeedsTrialReset {
				machine.LicenseKey = nil
			}
		case machine.NeedsTrialReset && machine.BlockedLicenseKey != nil &&
			in.LicenseKey.Value == *machine.BlockedLicenseKey:
			// 重放攻击:客户端重置后重发缓存的旧密钥。
			// 静默剥离,不返回任何可供脚本化的诊断信息。
		case machine.NeedsTrialReset:
			key := in.LicenseKey.Value
			machine.LicenseKey = &key
			machine.BlockedLicenseKey = nil
			machine.NeedsTrialReset = false
		default:
			key := in.LicenseKey.Value
			machine.LicenseKey = &key
		}
	}

	if err := s.store.SaveMachine(machine); err != nil {
		return nil, err
	}
	return machine, nil
}

// ResetTrial 管理员触发的撤销:停用该机器绑定的所有许可证,
// 封锁当前密钥并进入待重置状态。幂等。
func (s *MachineService) ResetTrial(machineID string) error {
	return s.store.ResetTrial(machineID)
}

func (s *MachineService) List() ([]model.Machine, error) {
	return s.store.GetAllMachines()
}
