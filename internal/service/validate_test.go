package service

import (
	"sync"
	"testing"
	"time"

	"license-activation-server/internal/database"
	"license-activation-server/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func seedLicense(t *testing.T, d *database.Database, id, key string, machineID *string, mutate func(*model.License)) *model.License {
	t.Helper()
	license := &model.License{
		ID:             id,
		Key:            key,
		ExpirationDate: time.Now().AddDate(0, 0, 30),
		MachineID:      machineID,
		IsActive:       true,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if mutate != nil {
		mutate(license)
	}
	require.NoError(t, d.CreateLicense(license))
	return license
}

func seedMachine(t *testing.T, d *database.Database, machineID string, mutate func(*model.Machine)) *model.Machine {
	t.Helper()
	machine := &model.Machine{
		MachineID: machineID,
		Hostname:  "host-" + machineID,
		Platform:  "linux",
		Version:   "1.0.0",
		LastSeen:  time.Now(),
		CreatedAt: time.Now(),
	}
	if mutate != nil {
		mutate(machine)
	}
	require.NoError(t, d.SaveMachine(machine))
	return machine
}

// 场景:通用许可证首次验证绑定,同机二次验证被一次性规则拒绝,
// 其他机器永远被拒
func TestValidateUniversalLicenseLifecycle(t *testing.T) {
	d := database.InitTestDB()
	defer d.CleanTestDB()
	svc := NewValidationService(d)

	seedLicense(t, d, "lic-1", "key-1", nil, nil)

	result, err := svc.Validate("key-1", "m1")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	require.NotNil(t, result.License)
	require.NotNil(t, result.License.MachineID)
	assert.Equal(t, "m1", *result.License.MachineID)
	assert.Equal(t, 1, result.License.UsageCount)
	assert.NotNil(t, result.License.LastUsed)

	// 绑定已持久化
	stored, err := d.GetLicenseByKey("key-1")
	require.NoError(t, err)
	require.NotNil(t, stored.MachineID)
	assert.Equal(t, "m1", *stored.MachineID)
	assert.Equal(t, 1, stored.UsageCount)

	// 同一台机器整个生命周期只能成功验证一次
	result, err = svc.Validate("key-1", "m1")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, ReasonAlreadyUsed, result.Reason)

	// 绑定是永久的,其他机器一律拒绝
	result, err = svc.Validate("key-1", "m2")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, ReasonUnauthorizedMachine, result.Reason)
}

// 场景:创建时预绑定的许可证,第一次就拒绝陌生机器
func TestValidatePreBoundLicense(t *testing.T) {
	d := database.InitTestDB()
	defer d.CleanTestDB()
	svc := NewValidationService(d)

	seedLicense(t, d, "lic-1", "key-1", strPtr("m1"), nil)

	result, err := svc.Validate("key-1", "m2")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, ReasonUnauthorizedMachine, result.Reason)

	result, err = svc.Validate("key-1", "m1")
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidateRejections(t *testing.T) {
	d := database.InitTestDB()
	defer d.CleanTestDB()
	svc := NewValidationService(d)

	seedLicense(t, d, "lic-expired", "key-expired", nil, func(l *model.License) {
		l.ExpirationDate = time.Now().Add(-time.Hour)
	})
	seedLicense(t, d, "lic-revoked", "key-revoked", nil, func(l *model.License) {
		l.IsActive = false
	})

	tests := []struct {
		name       string
		licenseKey string
		machineID  string
		wantReason string
	}{
		{"unknown_key", "no-such-key", "m1", ReasonKeyNotFound},
		{"expired", "key-expired", "m1", ReasonExpired},
		{"revoked", "key-revoked", "m1", ReasonLicenseRevoked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Validate(tt.licenseKey, tt.machineID)
			require.NoError(t, err)
			assert.False(t, result.Valid)
			assert.Equal(t, tt.wantReason, result.Reason)
		})
	}
}

// 被撤销的许可证即使从未用过的机器也无法再绑定
func TestValidateRevokedNeverBinds(t *testing.T) {
	d := database.InitTestDB()
	defer d.CleanTestDB()
	svc := NewValidationService(d)

	seedLicense(t, d, "lic-1", "key-1", strPtr("m1"), nil)
	seedMachine(t, d, "m1", func(m *model.Machine) {
		m.LicenseKey = strPtr("key-1")
	})
	require.NoError(t, d.ResetTrial("m1"))

	result, err := svc.Validate("key-1", "m2")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, ReasonLicenseRevoked, result.Reason)
}

func TestValidateTrialResetProbe(t *testing.T) {
	d := database.InitTestDB()
	defer d.CleanTestDB()
	svc := NewValidationService(d)

	seedMachine(t, d, "m-normal", nil)
	seedMachine(t, d, "m-reset", func(m *model.Machine) {
		m.NeedsTrialReset = true
	})

	// 待重置的机器收到 reset_trial 信号
	result, err := svc.Validate(TrialResetSentinel, "m-reset")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, ReasonResetTrial, result.Reason)

	// 正常机器和未知机器只得到一般性失败,不泄露状态
	result, err = svc.Validate(TrialResetSentinel, "m-normal")
	require.NoError(t, err)
	assert.Equal(t, ReasonKeyNotFound, result.Reason)

	result, err = svc.Validate(TrialResetSentinel, "m-unknown")
	require.NoError(t, err)
	assert.Equal(t, ReasonKeyNotFound, result.Reason)
}

// 哨兵路径不查许可证:即使存在同名机器的有效许可证也不会返回 valid
func TestValidateSentinelSkipsKeyLookup(t *testing.T) {
	d := database.InitTestDB()
	defer d.CleanTestDB()
	svc := NewValidationService(d)

	seedLicense(t, d, "lic-1", TrialResetSentinel, nil, nil)

	result, err := svc.Validate(TrialResetSentinel, "m1")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, ReasonKeyNotFound, result.Reason)
}

func TestValidateTouchesExistingMachine(t *testing.T) {
	d := database.InitTestDB()
	defer d.CleanTestDB()
	svc := NewValidationService(d)

	seedLicense(t, d, "lic-1", "key-1", nil, nil)
	before := time.Now().Add(-time.Hour)
	seedMachine(t, d, "m1", func(m *model.Machine) {
		m.LastSeen = before
	})

	result, err := svc.Validate("key-1", "m1")
	require.NoError(t, err)
	require.True(t, result.Valid)

	machine, err := d.GetMachineByID("m1")
	require.NoError(t, err)
	assert.True(t, machine.LastSeen.After(before))
}

// N 台机器并发抢同一张未绑定许可证,条件绑定保证恰好一个赢家
func TestValidateConcurrentFirstUse(t *testing.T) {
	d := database.InitTestDB()
	defer d.CleanTestDB()
	svc := NewValidationService(d)

	seedLicense(t, d, "lic-1", "key-1", nil, nil)

	const n = 8
	results := make([]*ValidationResult, n)
	errs := make([]error, n)
	machineIDs := make([]string, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		machineIDs[i] = "machine-" + string(rune('a'+i))
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Validate("key-1", machineIDs[i])
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
	}

	var winner string
	valid := 0
	for i, result := range results {
		if result.Valid {
			valid++
			winner = machineIDs[i]
		} else {
			assert.Equal(t, ReasonUnauthorizedMachine, result.Reason)
		}
	}
	assert.Equal(t, 1, valid, "应当恰好一个赢家")

	stored, err := d.GetLicenseByKey("key-1")
	require.NoError(t, err)
	require.NotNil(t, stored.MachineID)
	assert.Equal(t, winner, *stored.MachineID)
	assert.Equal(t, 1, stored.UsageCount)
}

// 同一台机器并发验证,唯一约束把重复收敛为 already_used
func TestValidateConcurrentSameMachine(t *testing.T) {
	d := database.InitTestDB()
	defer d.CleanTestDB()
	svc := NewValidationService(d)

	seedLicense(t, d, "lic-1", "key-1", nil, nil)

	const n = 8
	results := make([]*ValidationResult, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Validate("key-1", "m1")
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
	}

	valid := 0
	for _, result := range results {
		if result.Valid {
			valid++
		} else {
			assert.Equal(t, ReasonAlreadyUsed, result.Reason)
		}
	}
	assert.Equal(t, 1, valid)

	usages, err := d.GetUsageByLicense("lic-1")
	require.NoError(t, err)
	assert.Len(t, usages, 1)
}
