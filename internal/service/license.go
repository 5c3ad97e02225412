package service

import (
	"log"
	"time"

	"license-activation-server/internal/keygen"
	"license-activation-server/internal/model"
	"license-activation-server/internal/store"

	"github.com/google/uuid"
)

type LicenseService struct {
	store     store.Store
	generator *keygen.Generator
	sheetSync *SheetSyncService
}

func NewLicenseService(s store.Store, g *keygen.Generator, sync *SheetSyncService) *LicenseService {
	return &LicenseService{store: s, generator: g, sheetSync: sync}
}

// Create 签发许可证。machineID 为空时是未绑定的"通用"许可证,
// 首次成功验证时才永久绑定;非空则创建即绑定。
func (s *LicenseService) Create(expirationDate time.Time, machineID *string) (*model.License, error) {
	key, err := s.generator.Generate()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	license := &model.License{
		ID:             uuid.NewString(),
		Key:            key,
		ExpirationDate: expirationDate,
		MachineID:      machineID,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.CreateLicense(license); err != nil {
		return nil, err
	}

	if s.sheetSync != nil {
		go func() {
			if err := s.sheetSync.SyncLicense(license); err != nil {
				log.Printf("同步许可证到 Google Sheet 失败: %v", err)
			}
		}()
	}

	return license, nil
}

func (s *LicenseService) List() ([]model.License, error) {
	return s.store.GetAllLicenses()
}

// Delete 显式删除是移除绑定的唯一途径
func (s *LicenseService) Delete(id string) error {
	return s.store.DeleteLicense(id)
}

// Usage 返回许可证的一次性使用账本
func (s *LicenseService) Usage(licenseID string) ([]model.LicenseUsage, error) {
	if _, err := s.store.GetLicenseByID(licenseID); err != nil {
		return nil, err
	}
	return s.store.GetUsageByLicense(licenseID)
}
