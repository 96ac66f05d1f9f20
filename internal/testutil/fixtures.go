package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/talk_comment_server/internal/model"
)

// TestComment 创建测试评论
func TestComment(t *testing.T, db *gorm.DB, opts ...func(*model.Comment)) *model.Comment {
	t.Helper()

	comment := &model.Comment{
		UserIP:      "127.0.0.1",
		CommentText: fmt.Sprintf("Test comment %d", time.Now().UnixNano()%10000),
	}

	for _, opt := range opts {
		opt(comment)
	}

	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}

	return comment
}

// WithUserIP 设置评论者 IP
func WithUserIP(ip string) func(*model.Comment) {
	return func(c *model.Comment) {
		c.UserIP = ip
	}
}

// WithText 设置评论内容
func WithText(text string) func(*model.Comment) {
	return func(c *model.Comment) {
		c.CommentText = text
	}
}
