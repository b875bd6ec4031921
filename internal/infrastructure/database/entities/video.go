package entities

import "time"

// Video represents the persisted video metadata. The storage key is the
// only handle to the stored bytes; the row never owns them.
type Video struct {
	ID          string    `gorm:"type:varchar(40);primaryKey"`
	Title       string    `gorm:"type:varchar(255);not null;index"`
	Description string    `gorm:"type:text"`
	Genre       string    `gorm:"type:varchar(64);index"`
	DurationSec int64
	Status      string    `gorm:"type:varchar(16);not null;index"`
	StorageKey  string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	ContentType string    `gorm:"type:varchar(64);not null"`
	Bytes       int64     `gorm:"not null"`
	UploaderID  string    `gorm:"type:varchar(64);index"`
	ViewCount   int64     `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Video) TableName() string {
	return "videos"
}
