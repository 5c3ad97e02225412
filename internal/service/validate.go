package service

import (
	"errors"
	"time"

	"license-activation-server/internal/model"
	"license-activation-server/internal/store"
)

// 验证失败的业务原因码,客户端按字符串精确匹配
const (
	ReasonKeyNotFound         = "key_not_found"
	ReasonExpired             = "expired"
	ReasonLicenseRevoked      = "license_revoked"
	ReasonUnauthorizedMachine = "unauthorized_machine"
	ReasonAlreadyUsed         = "already_used"
	ReasonResetTrial          = "reset_trial"
)

// TrialResetSentinel 是保留的密钥值。客户端在不知道任何真实密钥的
// 情况下用它轮询"我的试用期被重置了吗",走独立的探测路径,不查许可证。
const TrialResetSentinel = "check_trial_reset"

type ValidationResult struct {
	Valid   bool
	Reason  string
	License *model.License
}

func invalid(reason string) *ValidationResult {
	return &ValidationResult{Valid: false, Reason: reason}
}

// ValidationService 编排密钥校验协议。无内部状态,
// 竞争正确性完全依赖存储端口的两个原语。
type ValidationService struct {
	store store.Store
}

func NewValidationService(s store.Store) *ValidationService {
	return &ValidationService{store: s}
}

// Validate 按固定顺序校验,任一步失败立即短路。
// 业务性失败返回 Valid=false 加原因码,存储故障才返回 error。
func (s *ValidationService) Validate(licenseKey, machineID string) (*ValidationResult, error) {
	if licenseKey == TrialResetSentinel {
		return s.checkTrialReset(machineID)
	}

	license, err := s.store.GetLicenseByKey(licenseKey)
	if errors.Is(err, store.ErrNotFound) {
		return invalid(ReasonKeyNotFound), nil
	}
	if err != nil {
		return nil, err
	}

	if !time.Now().Before(license.ExpirationDate) {
		return invalid(ReasonExpired), nil
	}

	if !license.IsActive {
		return invalid(ReasonLicenseRevoked), nil
	}

	if license.MachineID != nil && *license.MachineID != machineID {
		return invalid(ReasonUnauthorizedMachine), nil
	}

	// 一次性使用:即使是已绑定的那台机器,同一许可证也只能成功验证一次
	used, err := s.store.HasUsage(license.ID, machineID)
	if err != nil {
		return nil, err
	}
	if used {
		return invalid(ReasonAlreadyUsed), nil
	}

	if license.MachineID == nil {
		bound, err := s.store.BindMachineIfUnset(license.ID, machineID)
		if err != nil {
			return nil, err
		}
		if !bound {
			// 条件绑定输给了并发的赢家,按现在的绑定重新判定,
			// 不做静默重试
			current, err := s.store.GetLicenseByKey(licenseKey)
			if errors.Is(err, store.ErrNotFound) {
				return invalid(ReasonKeyNotFound), nil
			}
			if err != nil {
				return nil, err
			}
			if current.MachineID == nil || *current.MachineID != machineID {
				return invalid(ReasonUnauthorizedMachine), nil
			}
		}
		license.MachineID = &machineID
	}

	// 唯一约束是并发下一次性使用的最终防线,
	// 重复插入折算成 already_used 而不是上抛存储错误
	if err := s.store.InsertUsageOnce(license.ID, machineID); err != nil {
		if errors.Is(err, store.ErrAlreadyUsed) {
			return invalid(ReasonAlreadyUsed), nil
		}
		return nil, err
	}

	if err := s.store.IncrementUsage(license.ID); err != nil {
		return nil, err
	}
	license.UsageCount++
	now := time.Now()
	license.LastUsed = &now

	// 机器记录存在才更新 last_seen,这条路径不创建机器
	if err := s.store.TouchMachineLastSeen(machineID); err != nil {
		return nil, err
	}

	return &ValidationResult{Valid: true, License: license}, nil
}

func (s *ValidationService) checkTrialReset(machineID string) (*ValidationResult, error) {
	machine, err := s.store.GetMachineByID(machineID)
	if errors.Is(err, store.ErrNotFound) {
		return invalid(ReasonKeyNotFound), nil
	}
	if err != nil {
		return nil, err
	}

	if machine.NeedsTrialReset {
		if err := s.store.TouchMachineLastSeen(machineID); err != nil {
			return nil, err
		}
		return invalid(ReasonResetTrial), nil
	}
	return invalid(ReasonKeyNotFound), nil
}
