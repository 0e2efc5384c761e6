package models

import (
	"time"

	"gorm.io/gorm"
)

// SpotifyEmbed stores a raw embeddable player URL for the releases column.
type SpotifyEmbed struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EmbedURL   string    `gorm:"size:1024;not null" json:"embedUrl"`
	UploadDate time.Time `gorm:"index;not null" json:"uploadDate"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

func (e *SpotifyEmbed) BeforeCreate(tx *gorm.DB) error {
	if e.UploadDate.IsZero() {
		e.UploadDate = time.Now()
	}
	return nil
}
