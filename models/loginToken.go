package models

import "time"

// 每位使用者同時只會有一個有效Token，重複登入沿用現有Token
type LoginToken struct {
	ID             uint   `gorm:"primaryKey"`
	Token          string `gorm:"size:512;uniqueIndex;not null"`
	ExpirationTime time.Time
	UserID         uint `gorm:"uniqueIndex;not null"`
	CreatedAt      time.Time
}
