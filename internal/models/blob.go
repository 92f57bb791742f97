package models

import "time"

// Blob is one named JSON document of the key-value store.
type Blob struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Blob) TableName() string {
	return "kv_blobs"
}
