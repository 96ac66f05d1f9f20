package dto

// CreateCommentRequest 创建评论请求
type CreateCommentRequest struct {
	UserIP      string `json:"user_ip" binding:"required,max=45"`
	CommentText string `json:"comment_text" binding:"required"`
}

// UpdateCommentRequest 更新评论请求，只允许修改内容
type UpdateCommentRequest struct {
	CommentText string `json:"comment_text" binding:"required"`
}

// CommentItem 评论项
type CommentItem struct {
	ID          int64  `json:"id"`
	UserIP      string `json:"user_ip"`
	CommentText string `json:"comment_text"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// LiveEvent 推送到直播频道的评论事件
type LiveEvent struct {
	Type    string       `json:"type"`
	Comment *CommentItem `json:"comment,omitempty"`
	ID      int64        `json:"id,omitempty"`
}
