package models

import "time"

type Review struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	RoomID    uint      `gorm:"column:room_id;not null;index" json:"room_id"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	Star      int       `gorm:"column:star;not null" json:"star"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	User   *User         `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE;" json:"user,omitempty"`
	Images []ReviewImage `gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE;" json:"review_image"`
}

func (Review) TableName() string {
	return "reviews"
}

type ReviewImage struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ReviewID  uint      `gorm:"column:review_id;not null;index" json:"review_id"`
	ImageURL  string    `gorm:"column:image_url;type:text;not null" json:"image_url"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ReviewImage) TableName() string {
	return "review_images"
}
