package models

import "time"

// UserModel represents the database persistence model for users
type UserModel struct {
	ID                          uint   `gorm:"primarykey"`
	SID                         string `gorm:"uniqueIndex;not null;size:50;column:sid"`
	Name                        string `gorm:"size:100;not null"`
	Email                       string `gorm:"uniqueIndex;size:255"`
	EmailVerifiedAt             *time.Time
	LastVerificationEmailSentAt *time.Time
	Role                        string `gorm:"size:20;not null;default:user"`
	CreatedAt                   time.Time
	UpdatedAt                   time.Time
}

// TableName specifies the table name for GORM
func (UserModel) TableName() string {
	return "users"
}
