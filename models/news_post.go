package models

import (
	"time"

	"gorm.io/gorm"
)

// NewsPost is a public feed entry. Content holds the serialized
// rich-text document produced by the editor; the server never parses it.
type NewsPost struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Link       string    `gorm:"size:1024" json:"link"`
	ImageURL   string    `gorm:"size:1024" json:"imageUrl"`
	UploadDate time.Time `gorm:"index;not null" json:"uploadDate"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

// BeforeCreate defaults UploadDate to creation time when unset.
func (p *NewsPost) BeforeCreate(tx *gorm.DB) error {
	if p.UploadDate.IsZero() {
		p.UploadDate = time.Now()
	}
	return nil
}
