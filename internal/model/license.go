package model

import "time"

type License struct {
	ID             string     `json:"id" gorm:"primaryKey;size:36"`
	Key            string     `json:"key" gorm:"uniqueIndex;not null"`
	ExpirationDate time.Time  `json:"expiration_date" gorm:"not null"`
	MachineID      *string    `json:"machine_id" gorm:"size:255"`
	IsActive       bool       `json:"is_active"`
	UsageCount     int        `json:"usage_count" gorm:"default:0"`
	LastUsed       *time.Time `json:"last_used"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
