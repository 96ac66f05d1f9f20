package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs3c/talk_comment_server/internal/model"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create 创建评论，ID 与时间戳由数据库层回填
func (r *CommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetByID 根据 ID 获取评论
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByUserIP 获取某个 IP 发表的全部评论
func (r *CommentRepository) ListByUserIP(ctx context.Context, userIP string) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.WithContext(ctx).
		Where("user_ip = ?", userIP).
		Order("id ASC").
		Find(&comments).Error
	return comments, err
}

// UpdateText 只更新评论内容，updated_at 由 gorm 自动刷新并回写到 comment
func (r *CommentRepository) UpdateText(ctx context.Context, comment *model.Comment, text string) error {
	return r.db.WithContext(ctx).Model(comment).Update("comment_text", text).Error
}

// Delete 删除评论，返回实际删除的行数
func (r *CommentRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&model.Comment{}, id)
	return result.RowsAffected, result.Error
}

// Count 评论总数
func (r *CommentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).Count(&count).Error
	return count, err
}
