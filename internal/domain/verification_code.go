package domain

import "time"

type VerificationCode struct {
	ID        int64      `gorm:"primaryKey"`
	Email     string     `gorm:"size:255;not null;index"`
	CodeHash  string     `gorm:"size:64;not null"`
	ExpiresAt time.Time  `gorm:"not null"`
	Attempts  int        `gorm:"not null;default:0"`
	UsedAt    *time.Time
	CreatedAt time.Time
}
