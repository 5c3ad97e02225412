package model

import "time"

type Machine struct {
	MachineID         string    `json:"machine_id" gorm:"primaryKey;size:255"`
	Hostname          string    `json:"hostname" gorm:"not null"`
	Platform          string    `json:"platform" gorm:"not null"`
	Version           string    `json:"version" gorm:"not null"`
	LicenseKey        *string   `json:"license_key"`
	NeedsTrialReset   bool      `json:"needs_trial_reset" gorm:"default:false"`
	BlockedLicenseKey *string   `json:"blocked_license_key"`
	LastSeen          time.Time `json:"last_seen"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
