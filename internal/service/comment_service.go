package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/qs3c/talk_comment_server/internal/model"
	"github.com/qs3c/talk_comment_server/internal/model/dto"
	"github.com/qs3c/talk_comment_server/internal/repository"
)

var (
	ErrCommentNotFound = errors.New("评论不存在")
)

// 直播频道事件类型
const (
	EventCommentCreated = "comment_created"
	EventCommentUpdated = "comment_updated"
	EventCommentDeleted = "comment_deleted"
)

// EventPublisher 评论变更的推送出口
type EventPublisher interface {
	Publish(ctx context.Context, event *dto.LiveEvent) error
}

type CommentService struct {
	commentRepo *repository.CommentRepository
	publisher   EventPublisher
	log         zerolog.Logger
}

// NewCommentService publisher 可以为 nil，此时不推送事件
func NewCommentService(commentRepo *repository.CommentRepository, publisher EventPublisher, log zerolog.Logger) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		publisher:   publisher,
		log:         log.With().Str("component", "comment_service").Logger(),
	}
}

// Create 创建评论
func (s *CommentService) Create(ctx context.Context, req *dto.CreateCommentRequest) (*dto.CommentItem, error) {
	comment := &model.Comment{
		UserIP:      req.UserIP,
		CommentText: req.CommentText,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	item := buildCommentItem(comment)
	s.publish(ctx, &dto.LiveEvent{Type: EventCommentCreated, Comment: item, ID: comment.ID})

	return item, nil
}

// GetByID 获取单条评论
func (s *CommentService) GetByID(ctx context.Context, id int64) (*dto.CommentItem, error) {
	comment, err := s.getComment(ctx, id)
	if err != nil {
		return nil, err
	}
	return buildCommentItem(comment), nil
}

// ListByIP 获取某个 IP 的全部评论，没有时返回空列表
func (s *CommentService) ListByIP(ctx context.Context, userIP string) ([]*dto.CommentItem, error) {
	comments, err := s.commentRepo.ListByUserIP(ctx, userIP)
	if err != nil {
		return nil, fmt.Errorf("list comments by ip: %w", err)
	}

	items := make([]*dto.CommentItem, len(comments))
	for i, c := range comments {
		items[i] = buildCommentItem(c)
	}
	return items, nil
}

// Update 修改评论内容
func (s *CommentService) Update(ctx context.Context, id int64, req *dto.UpdateCommentRequest) (*dto.CommentItem, error) {
	comment, err := s.getComment(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.commentRepo.UpdateText(ctx, comment, req.CommentText); err != nil {
		return nil, fmt.Errorf("update comment %d: %w", id, err)
	}

	item := buildCommentItem(comment)
	s.publish(ctx, &dto.LiveEvent{Type: EventCommentUpdated, Comment: item, ID: comment.ID})

	return item, nil
}

// Delete 删除评论
func (s *CommentService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.commentRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete comment %d: %w", id, err)
	}
	if deleted == 0 {
		return ErrCommentNotFound
	}

	s.publish(ctx, &dto.LiveEvent{Type: EventCommentDeleted, ID: id})
	return nil
}

// Count 评论总数，用于健康检查
func (s *CommentService) Count(ctx context.Context) (int64, error) {
	total, err := s.commentRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return total, nil
}

func (s *CommentService) getComment(ctx context.Context, id int64) (*model.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("get comment %d: %w", id, err)
	}
	return comment, nil
}

// publish 推送失败只记录日志，不影响评论操作本身
func (s *CommentService) publish(ctx context.Context, event *dto.LiveEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("event", event.Type).Int64("comment_id", event.ID).Msg("Failed to publish live event")
	}
}

func buildCommentItem(c *model.Comment) *dto.CommentItem {
	return &dto.CommentItem{
		ID:          c.ID,
		UserIP:      c.UserIP,
		CommentText: c.CommentText,
		CreatedAt:   c.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   c.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
