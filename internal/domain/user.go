package domain

import "time"

type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
	RoleTeacher UserRole = "TEACHER"
	RoleAdmin   UserRole = "ADMIN"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Email        string     `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string     `json:"-" gorm:"not null"`
	Name         string     `json:"name" gorm:"size:255"`
	Role         UserRole   `json:"role" gorm:"size:16;not null;index"`
	DisplayID    string     `json:"display_id" gorm:"size:32;not null;uniqueIndex"`
	AvatarURL    string     `json:"avatar_url,omitempty"`
	IsBanned     bool       `json:"is_banned" gorm:"not null;default:false"`
	BannedAt     *time.Time `json:"banned_at,omitempty"`
	BanReason    string     `json:"ban_reason,omitempty" gorm:"type:text"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
