package models

import "time"

// ServerEntryModel represents the database persistence model for MCP directory entries
type ServerEntryModel struct {
	ID              uint      `gorm:"primarykey"`
	SID             string    `gorm:"uniqueIndex;not null;size:50;column:sid"`
	Name            string    `gorm:"size:200;not null"`
	EndpointURL     string    `gorm:"size:500;not null"`
	Description     string    `gorm:"type:text"`
	DescriptionHTML string    `gorm:"type:text"`
	CreatedBy       uint      `gorm:"not null;index"`
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time
}

// TableName specifies the table name for GORM
func (ServerEntryModel) TableName() string {
	return "server_entries"
}
