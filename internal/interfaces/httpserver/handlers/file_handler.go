package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cloudflix/services/streaming-api/internal/infrastructure/metrics"
	"cloudflix/services/streaming-api/internal/infrastructure/storage"
	"cloudflix/services/streaming-api/internal/interfaces/httpserver/responses"
	"cloudflix/services/streaming-api/internal/utils/httprange"
	"cloudflix/services/streaming-api/internal/utils/platformerrors"
)

// FileHandler serves stored objects by key. It backs the URLs the local
// storage backend hands out; cloud backends sign URLs that bypass the
// service entirely.
type FileHandler struct {
	backend storage.Backend
	log     zerolog.Logger
}

func NewFileHandler(backend storage.Backend, log zerolog.Logger) *FileHandler {
	return &FileHandler{
		backend: backend,
		log:     log.With().Str("component", "file-handler").Logger(),
	}
}

// Serve streams the object's bytes. Like the video stream endpoint it
// always answers with partial content; without a Range header the whole
// object is the region.
func (h *FileHandler) Serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")

	res, err := h.backend.Open(c.Request.Context(), key)
	if err != nil {
		h.handleStorageError(c, err)
		return
	}
	defer res.Close()

	length := res.Length()

	var start, end int64
	if header := c.GetHeader("Range"); header != "" {
		rng, err := httprange.Parse(header, length)
		if err != nil {
			h.handleRangeError(c, err, length)
			return
		}
		start, end = rng.Start, rng.End
	} else {
		if length == 0 {
			c.Header("Content-Range", "bytes */0")
			c.Status(http.StatusRequestedRangeNotSatisfiable)
			return
		}
		start, end = 0, length-1
	}

	reader, err := res.ReadRange(c.Request.Context(), start, end)
	if err != nil {
		h.handleStorageError(c, err)
		return
	}
	defer reader.Close()

	region := httprange.Range{Start: start, End: end}
	c.Header("Content-Type", storage.ContentTypeForKey(key))
	c.Header("Accept-Ranges", "bytes")
	c.Header("Content-Range", region.ContentRange(length))
	c.Header("Content-Length", strconv.FormatInt(region.Len(), 10))
	c.Status(http.StatusPartialContent)

	written, err := io.Copy(c.Writer, reader)
	if err != nil {
		h.log.Debug().Err(err).Int64("written", written).Msg("file stream interrupted")
	}
	metrics.RecordStream("local", written)
}

func (h *FileHandler) handleStorageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		responses.HandleNewError(c, platformerrors.ErrorTypeNotFound,
			"file not found", "4a6b8c0d-2e4f-4a6b-8c8d-0e2f4a6b8c0d")
	case errors.Is(err, storage.ErrPathEscape):
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"invalid file key", "6c8d0e2f-4a6b-4c8d-8e0f-2a4b6c8d0e2f")
	default:
		h.log.Error().Err(err).Msg("storage read failed")
		responses.HandleNewError(c, platformerrors.ErrorTypeStorageUnavailable,
			"storage unavailable", "8e0f2a4b-6c8d-4e0f-8a2b-4c6d8e0f2a4b")
	}
}

func (h *FileHandler) handleRangeError(c *gin.Context, err error, length int64) {
	if errors.Is(err, httprange.ErrUnsatisfiable) {
		c.Header("Content-Range", "bytes */"+strconv.FormatInt(length, 10))
		responses.HandleNewError(c, platformerrors.ErrorTypeRangeNotSatisfiable,
			"requested range not satisfiable", "0a2b4c6d-8e0f-4a2b-8c4d-6e8f0a2b4c6d")
		return
	}
	responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
		"malformed range header", "2c4d6e8f-0a2b-4c4d-8e6f-8a0b2c4d6e8f")
}
