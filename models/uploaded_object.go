package models

import "time"

// UploadedObject records every object pushed to the media store so the
// sweeper can reclaim uploads that never got attached to content
// (e.g. the partial-failure path of the multi-file VIP create).
type UploadedObject struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"size:1024;not null" json:"key"`
	URL       string    `gorm:"size:1024;not null" json:"url"`
	Attached  bool      `gorm:"index;not null;default:false" json:"attached"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
