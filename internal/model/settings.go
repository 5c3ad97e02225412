package model

import "time"

type Settings struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	TrialDuration int       `json:"trial_duration" gorm:"default:30"`
	MaxMachines   int       `json:"max_machines" gorm:"default:1"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Settings) TableName() string {
	return "settings"
}
