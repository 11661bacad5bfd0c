package domain

import "time"

type Upload struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	UserID       int64     `json:"user_id" gorm:"not null;index"`
	OriginalName string    `json:"original_name"`
	FilePath     string    `json:"-"`
	FileURL      string    `json:"file_url"`
	MimeType     string    `json:"mime_type" gorm:"size:128"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
}
