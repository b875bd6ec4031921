package entities

// Tag labels videos for discovery. Names are stored lowercase.
type Tag struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"type:varchar(64);not null;uniqueIndex"`
}

func (Tag) TableName() string {
	return "tags"
}

// VideoTag joins videos to their tags.
type VideoTag struct {
	VideoID string `gorm:"type:varchar(40);primaryKey"`
	TagID   uint   `gorm:"primaryKey"`
}

func (VideoTag) TableName() string {
	return "video_tags"
}
