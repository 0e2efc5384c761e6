package models

import (
	"time"

	"gorm.io/gorm"
)

// Media type values. MediaTypeMixed is used for everything created via
// the multi-file route, regardless of how many files were supplied.
const (
	MediaTypeImage = "image"
	MediaTypeAudio = "audio"
	MediaTypeVideo = "video"
	MediaTypeMixed = "mixed"
)

// MediaURL groups the optional media locations of a VIP post. Absent
// media stays null in JSON so the client can render conditionally.
type MediaURL struct {
	ImageURL *string `gorm:"size:1024" json:"imageUrl"`
	VideoURL *string `gorm:"size:1024" json:"videoUrl"`
	AudioURL *string `gorm:"size:1024" json:"audioUrl"`
}

// VipContent is a members-area post with mixed media.
type VipContent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	MediaURL    MediaURL  `gorm:"embedded;embeddedPrefix:media_" json:"mediaUrl"`
	MediaType   string    `gorm:"size:16;not null" json:"mediaType"`
	UploadDate  time.Time `gorm:"index;not null" json:"uploadDate"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

func (v *VipContent) BeforeCreate(tx *gorm.DB) error {
	if v.UploadDate.IsZero() {
		v.UploadDate = time.Now()
	}
	return nil
}
