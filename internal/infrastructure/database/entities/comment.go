package entities

import "time"

// Comment is a threaded comment; ParentID is empty for top-level comments.
type Comment struct {
	ID        string    `gorm:"type:varchar(40);primaryKey"`
	VideoID   string    `gorm:"type:varchar(40);not null;index"`
	ParentID  string    `gorm:"type:varchar(40);index"`
	AuthorID  string    `gorm:"type:varchar(64);not null"`
	Body      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Comment) TableName() string {
	return "comments"
}
