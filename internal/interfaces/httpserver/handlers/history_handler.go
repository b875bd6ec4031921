package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	domain "cloudflix/services/streaming-api/internal/domain/history"
	"cloudflix/services/streaming-api/internal/infrastructure/auth"
	"cloudflix/services/streaming-api/internal/interfaces/httpserver/responses"
	"cloudflix/services/streaming-api/internal/utils/platformerrors"
)

// HistoryService is the slice of the history domain service the handler uses.
type HistoryService interface {
	Record(ctx context.Context, userID, videoID string, positionSec int64) error
	List(ctx context.Context, userID string, limit int) ([]domain.Entry, error)
}

// HistoryHandler exposes per-user watch history.
type HistoryHandler struct {
	service HistoryService
	log     zerolog.Logger
}

func NewHistoryHandler(service HistoryService, log zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{
		service: service,
		log:     log.With().Str("component", "history-handler").Logger(),
	}
}

type recordRequest struct {
	PositionSec int64 `json:"position_sec"`
}

// Record saves the caller's playback position for one video.
func (h *HistoryHandler) Record(c *gin.Context) {
	var req recordRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
				err.Error(), "8c0d2e4f-6a8b-4c0d-8e2f-4a6b8c0d2e4f")
			return
		}
	}

	if err := h.service.Record(c.Request.Context(), auth.UserID(c), c.Param("videoId"), req.PositionSec); err != nil {
		responses.HandleError(c, err, "failed to record watch history")
		return
	}
	c.Status(http.StatusNoContent)
}

// List returns the caller's watch history, most recent first.
func (h *HistoryHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	entries, err := h.service.List(c.Request.Context(), auth.UserID(c), limit)
	if err != nil {
		responses.HandleError(c, err, "failed to list watch history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}
