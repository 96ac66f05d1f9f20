package model

import (
	"time"
)

// UserIPMaxLength IPv6 文本形式的最大长度
const UserIPMaxLength = 45

type Comment struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	UserIP      string    `gorm:"size:45;not null;index" json:"user_ip"`
	CommentText string    `gorm:"type:text;not null" json:"comment_text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Comment) TableName() string {
	return "comments"
}
