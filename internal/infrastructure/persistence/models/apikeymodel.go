package models

import "time"

// APIKeyModel represents the database persistence model for API keys.
// Value holds the raw secret for user keys and a SHA-256 digest for
// server keys; the unique index spans (type, value) because lookups
// always filter by type.
type APIKeyModel struct {
	ID        uint      `gorm:"primarykey"`
	SID       string    `gorm:"uniqueIndex;not null;size:50;column:sid"`
	Name      string    `gorm:"size:100;not null"`
	Value     string    `gorm:"size:128;not null;uniqueIndex:idx_api_keys_type_value"`
	Type      string    `gorm:"size:20;not null;uniqueIndex:idx_api_keys_type_value,priority:1;index"`
	CreatedBy uint      `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (APIKeyModel) TableName() string {
	return "api_keys"
}
