package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cloudflix/services/streaming-api/internal/config"
	domain "cloudflix/services/streaming-api/internal/domain/video"
	"cloudflix/services/streaming-api/internal/infrastructure/auth"
	"cloudflix/services/streaming-api/internal/infrastructure/metrics"
	"cloudflix/services/streaming-api/internal/interfaces/httpserver/responses"
	"cloudflix/services/streaming-api/internal/utils/platformerrors"
)

// VideoService is the slice of the video domain service the handler uses.
type VideoService interface {
	Upload(ctx context.Context, req domain.UploadRequest) (*domain.Video, error)
	StreamRange(ctx context.Context, id, rangeHeader string) (*domain.StreamRegion, error)
	StreamURL(ctx context.Context, id string) (*domain.PlayableURL, error)
	Get(ctx context.Context, id string) (*domain.Video, error)
	List(ctx context.Context, q domain.ListQuery) ([]domain.Video, error)
	Genres(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Video, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
	Delete(ctx context.Context, id string) error
}

// VideoHandler exposes video catalog and streaming endpoints.
type VideoHandler struct {
	cfg     *config.Config
	service VideoService
	log     zerolog.Logger
}

func NewVideoHandler(cfg *config.Config, service VideoService, log zerolog.Logger) *VideoHandler {
	return &VideoHandler{
		cfg:     cfg,
		service: service,
		log:     log.With().Str("component", "video-handler").Logger(),
	}
}

// Upload accepts a multipart upload and stores the video.
func (h *VideoHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"file is required", "8a0b2c4d-6e8f-4a0b-8c2d-4e6f8a0b2c4d")
		return
	}
	defer file.Close()

	title := c.Request.FormValue("title")
	durationSec, _ := strconv.ParseInt(c.Request.FormValue("duration_sec"), 10, 64)

	req := domain.UploadRequest{
		Title:            title,
		Description:      c.Request.FormValue("description"),
		Genre:            c.Request.FormValue("genre"),
		Tags:             splitTags(c.Request.FormValue("tags")),
		DurationSec:      durationSec,
		OriginalFilename: header.Filename,
		ContentType:      header.Header.Get("Content-Type"),
		Content:          file,
		Size:             header.Size,
		UploaderID:       auth.UserID(c),
	}

	v, err := h.service.Upload(c.Request.Context(), req)
	if err != nil {
		metrics.RecordUpload(req.ContentType, "error")
		responses.HandleError(c, err, "upload failed")
		return
	}

	metrics.RecordUpload(v.ContentType, "success")
	c.JSON(http.StatusCreated, responses.FromVideo(v))
}

// List returns catalog entries, filterable by genre and title.
func (h *VideoHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	videos, err := h.service.List(c.Request.Context(), domain.ListQuery{
		Genre:  c.Query("genre"),
		Title:  c.Query("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to list videos")
		return
	}
	c.JSON(http.StatusOK, responses.FromVideos(videos))
}

// Get returns one video's metadata.
func (h *VideoHandler) Get(c *gin.Context) {
	v, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "video not found")
		return
	}
	c.JSON(http.StatusOK, responses.FromVideo(v))
}

// Update applies partial metadata changes. Allowed for the uploader and
// for admins.
func (h *VideoHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req domain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			err.Error(), "0c2d4e6f-8a0b-4c2d-8e4f-6a8b0c2d4e6f")
		return
	}

	current, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		responses.HandleError(c, err, "video not found")
		return
	}
	if !auth.IsAdmin(c) && current.UploaderID != auth.UserID(c) {
		responses.HandleNewError(c, platformerrors.ErrorTypeForbidden,
			"only the uploader or an admin may edit this video", "4c6d8e0f-2a4b-4c6d-8e0f-2a4b6c8d0e2f")
		return
	}

	v, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		responses.HandleError(c, err, "update failed")
		return
	}
	c.JSON(http.StatusOK, responses.FromVideo(v))
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus moves the video through its lifecycle. Admin only.
func (h *VideoHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			err.Error(), "2e4f6a8b-0c2d-4e4f-8a6b-8c0d2e4f6a8b")
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), domain.Status(req.Status)); err != nil {
		responses.HandleError(c, err, "status update failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// ByTag lists available videos carrying the given tag.
func (h *VideoHandler) ByTag(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	videos, err := h.service.List(c.Request.Context(), domain.ListQuery{
		Tag:    c.Param("tagName"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to list videos by tag")
		return
	}
	c.JSON(http.StatusOK, responses.FromVideos(videos))
}

// Genres returns the distinct genres present in the catalog.
func (h *VideoHandler) Genres(c *gin.Context) {
	genres, err := h.service.Genres(c.Request.Context())
	if err != nil {
		responses.HandleError(c, err, "failed to list genres")
		return
	}
	c.JSON(http.StatusOK, gin.H{"genres": genres})
}

// Search looks up catalog entries by title substring.
func (h *VideoHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	videos, err := h.service.List(c.Request.Context(), domain.ListQuery{
		Title:  c.Query("title"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		responses.HandleError(c, err, "search failed")
		return
	}
	c.JSON(http.StatusOK, responses.FromVideos(videos))
}

// Delete removes the video and its stored bytes. Allowed for the uploader
// and for admins.
func (h *VideoHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	v, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		responses.HandleError(c, err, "video not found")
		return
	}
	if !auth.IsAdmin(c) && v.UploaderID != auth.UserID(c) {
		responses.HandleNewError(c, platformerrors.ErrorTypeForbidden,
			"only the uploader or an admin may delete this video", "6e8f0a2b-4c6d-4e8f-8a0b-2c4d6e8f0a2b")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		responses.HandleError(c, err, "delete failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// Stream serves one byte region of the video. Responses are always partial
// content: a request without a Range header gets the leading chunk, so
// players learn the total size from Content-Range and continue with ranges.
func (h *VideoHandler) Stream(c *gin.Context) {
	region, err := h.service.StreamRange(c.Request.Context(), c.Param("id"), c.GetHeader("Range"))
	if err != nil {
		metrics.RecordRangeRequest(string(platformerrors.TypeOf(err)))
		responses.HandleError(c, err, "stream failed")
		return
	}
	defer region.Reader.Close()
	metrics.RecordRangeRequest("ok")

	c.Header("Content-Type", region.ContentType)
	c.Header("Accept-Ranges", "bytes")
	c.Header("Content-Range", region.ContentRange())
	c.Header("Content-Length", strconv.FormatInt(region.Length(), 10))
	c.Status(http.StatusPartialContent)

	written, err := io.Copy(c.Writer, region.Reader)
	if err != nil {
		// Client went away or the read failed mid-stream; headers are out,
		// so only log it.
		h.log.Debug().Err(err).Int64("written", written).Msg("stream interrupted")
	}
	metrics.RecordStream(h.backendLabel(), written)
}

// StreamURL hands the client a URL to fetch the bytes from directly.
func (h *VideoHandler) StreamURL(c *gin.Context) {
	start := time.Now()
	playable, err := h.service.StreamURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to issue stream url")
		return
	}
	metrics.RecordSign(time.Since(start).Seconds())

	c.JSON(http.StatusOK, playable)
}

// splitTags parses the comma-separated multipart tags field.
func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func (h *VideoHandler) backendLabel() string {
	switch {
	case h.cfg.IsS3Storage():
		return "s3"
	case h.cfg.IsAzureStorage():
		return "azblob"
	default:
		return "local"
	}
}
