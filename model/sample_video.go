package model

import "time"

// SampleVideo is a curated demonstration entry shown to users before
// they upload anything of their own. Managed by admins, read-only
// through the API
type SampleVideo struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	Title       string `gorm:"size:500;not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Caption     string `gorm:"type:text;not null" json:"caption"`

	VideoURL     string `gorm:"size:500;not null" json:"video_url"`
	ThumbnailURL string `gorm:"size:500" json:"thumbnail_url,omitempty"`
	Duration     string `gorm:"size:20" json:"duration,omitempty"`

	DisplayOrder int  `gorm:"index;default:0" json:"display_order"`
	Active       bool `gorm:"default:true" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
