package model

import "time"

// StorageEntry is one persisted local storage value of a visitor namespace.
type StorageEntry struct {
	Namespace string    `gorm:"primaryKey;size:128" json:"namespace"`
	Key       string    `gorm:"primaryKey;column:storage_key;size:128" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StorageEntry) TableName() string {
	return "local_storage_entries"
}
