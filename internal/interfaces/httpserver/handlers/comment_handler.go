package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	domain "cloudflix/services/streaming-api/internal/domain/comment"
	"cloudflix/services/streaming-api/internal/infrastructure/auth"
	"cloudflix/services/streaming-api/internal/interfaces/httpserver/responses"
	"cloudflix/services/streaming-api/internal/utils/platformerrors"
)

// CommentService is the slice of the comment domain service the handler uses.
type CommentService interface {
	Add(ctx context.Context, videoID, authorID string, req domain.CreateRequest) (*domain.Comment, error)
	Thread(ctx context.Context, videoID string) ([]domain.Comment, error)
	Delete(ctx context.Context, id, requesterID string, isAdmin bool) error
}

// CommentHandler exposes threaded comments on videos.
type CommentHandler struct {
	service CommentService
	log     zerolog.Logger
}

func NewCommentHandler(service CommentService, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		service: service,
		log:     log.With().Str("component", "comment-handler").Logger(),
	}
}

// Add posts a comment or reply on a video.
func (h *CommentHandler) Add(c *gin.Context) {
	var req domain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			err.Error(), "4e6f8a0b-2c4d-4e6f-8a8b-0c2d4e6f8a0b")
		return
	}

	comment, err := h.service.Add(c.Request.Context(), c.Param("id"), auth.UserID(c), req)
	if err != nil {
		responses.HandleError(c, err, "failed to add comment")
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Thread returns the video's comment tree.
func (h *CommentHandler) Thread(c *gin.Context) {
	thread, err := h.service.Thread(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to load comments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": thread})
}

// Delete removes a comment (author or admin).
func (h *CommentHandler) Delete(c *gin.Context) {
	err := h.service.Delete(c.Request.Context(), c.Param("commentId"), auth.UserID(c), auth.IsAdmin(c))
	if err != nil {
		responses.HandleError(c, err, "failed to delete comment")
		return
	}
	c.Status(http.StatusNoContent)
}
