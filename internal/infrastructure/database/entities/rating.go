package entities

import "time"

// Rating holds one star rating per user and video.
type Rating struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	VideoID   string    `gorm:"type:varchar(40);not null;uniqueIndex:idx_rating_video_user"`
	UserID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_rating_video_user"`
	Stars     int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Rating) TableName() string {
	return "ratings"
}
