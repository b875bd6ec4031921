package entities

import "time"

// WatchHistory records the latest playback position per user and video.
type WatchHistory struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	UserID      string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_history_user_video"`
	VideoID     string    `gorm:"type:varchar(40);not null;uniqueIndex:idx_history_user_video"`
	PositionSec int64     `gorm:"not null;default:0"`
	WatchedAt   time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (WatchHistory) TableName() string {
	return "watch_history"
}
