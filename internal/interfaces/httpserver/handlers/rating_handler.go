package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	domain "cloudflix/services/streaming-api/internal/domain/rating"
	"cloudflix/services/streaming-api/internal/infrastructure/auth"
	"cloudflix/services/streaming-api/internal/interfaces/httpserver/responses"
	"cloudflix/services/streaming-api/internal/utils/platformerrors"
)

// RatingService is the slice of the rating domain service the handler uses.
type RatingService interface {
	Rate(ctx context.Context, videoID, userID string, stars int) error
	Summarize(ctx context.Context, videoID string) (*domain.Summary, error)
	UserRating(ctx context.Context, videoID, userID string) (int, error)
}

// RatingHandler exposes star ratings on videos.
type RatingHandler struct {
	service RatingService
	log     zerolog.Logger
}

func NewRatingHandler(service RatingService, log zerolog.Logger) *RatingHandler {
	return &RatingHandler{
		service: service,
		log:     log.With().Str("component", "rating-handler").Logger(),
	}
}

type rateRequest struct {
	Stars int `json:"stars" binding:"required"`
}

// Rate records the caller's star rating, replacing any previous one.
func (h *RatingHandler) Rate(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			err.Error(), "6a8b0c2d-4e6f-4a8b-8c0d-2e4f6a8b0c2d")
		return
	}

	if err := h.service.Rate(c.Request.Context(), c.Param("id"), auth.UserID(c), req.Stars); err != nil {
		responses.HandleError(c, err, "failed to rate video")
		return
	}
	c.Status(http.StatusNoContent)
}

// Summary returns the video's average rating, count, and the caller's own
// rating when present.
func (h *RatingHandler) Summary(c *gin.Context) {
	videoID := c.Param("id")

	summary, err := h.service.Summarize(c.Request.Context(), videoID)
	if err != nil {
		responses.HandleError(c, err, "failed to summarize ratings")
		return
	}

	own, err := h.service.UserRating(c.Request.Context(), videoID, auth.UserID(c))
	if err != nil {
		responses.HandleError(c, err, "failed to get user rating")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"video_id": summary.VideoID,
		"average":  summary.Average,
		"count":    summary.Count,
		"own":      own,
	})
}
