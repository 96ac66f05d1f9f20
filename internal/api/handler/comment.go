package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/qs3c/talk_comment_server/internal/model/dto"
	"github.com/qs3c/talk_comment_server/internal/pkg/response"
	"github.com/qs3c/talk_comment_server/internal/service"
)

type CommentHandler struct {
	commentService *service.CommentService
	log            zerolog.Logger
}

func NewCommentHandler(commentService *service.CommentService, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		log:            log.With().Str("component", "comment_handler").Logger(),
	}
}

// Create 发表评论
// POST /comments/
func (h *CommentHandler) Create(c *gin.Context) {
	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, bindingErrorDetails(err))
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), &req)
	if err != nil {
		h.serverError(c, err)
		return
	}

	response.Created(c, comment)
}

// Get 获取单条评论
// GET /comments/:id
func (h *CommentHandler) Get(c *gin.Context) {
	id, ok := parseCommentID(c)
	if !ok {
		return
	}

	comment, err := h.commentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, comment)
}

// ListByIP 获取某个 IP 的评论
// GET /comments/ip/:user_ip
func (h *CommentHandler) ListByIP(c *gin.Context) {
	userIP := c.Param("user_ip")
	if userIP == "" {
		response.ParamError(c, "缺少用户IP")
		return
	}

	items, err := h.commentService.ListByIP(c.Request.Context(), userIP)
	if err != nil {
		h.serverError(c, err)
		return
	}

	response.Success(c, items)
}

// Update 修改评论
// PUT /comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	id, ok := parseCommentID(c)
	if !ok {
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, bindingErrorDetails(err))
		return
	}

	comment, err := h.commentService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, comment)
}

// Delete 删除评论
// DELETE /comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := parseCommentID(c)
	if !ok {
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "评论已删除", nil)
}

func (h *CommentHandler) handleError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrCommentNotFound) {
		response.NotFoundError(c, err.Error())
		return
	}
	h.serverError(c, err)
}

func (h *CommentHandler) serverError(c *gin.Context, err error) {
	h.log.Error().Err(err).Str("path", c.FullPath()).Msg("Comment request failed")
	response.ServerError(c, "")
}

func parseCommentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.ParamError(c, "无效的评论ID")
		return 0, false
	}
	return id, true
}
