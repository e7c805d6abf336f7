package model

import "time"

type Video struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"index;not null" json:"-"`

	Title string `gorm:"size:500;not null" json:"title"`
	// AI generated description of the video contents. Never empty
	// once the row exists
	Caption string `gorm:"type:text;not null" json:"caption"`

	// Original file name before turning it into a uuid storage key.
	// Uploads are never stored under user supplied names
	OriginalName string `gorm:"size:255;not null" json:"original_filename"`
	// Server side path the bytes live under
	FilePath string `gorm:"size:500;not null" json:"-"`
	// Public URL the frontend plays the video from
	VideoURL     string `gorm:"size:500" json:"video_url"`
	ThumbnailURL string `gorm:"size:500" json:"thumbnail_url,omitempty"`

	// Formatted as M:SS, "0:00" when probing failed
	Duration string `gorm:"size:20" json:"duration,omitempty"`
	Size     int64  `json:"fileSize"`
	Format   string `gorm:"size:20" json:"format"`

	CreatedAt time.Time `gorm:"index" json:"timestamp"`
	UpdatedAt time.Time `json:"-"`
}
