package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"cloudflix/services/streaming-api/internal/config"
	"cloudflix/services/streaming-api/internal/infrastructure/storage"
	"cloudflix/services/streaming-api/internal/utils/httprange"
	"cloudflix/services/streaming-api/internal/utils/platformerrors"
	"cloudflix/services/streaming-api/internal/utils/videoid"
)

// chunkSize is the region served when the client sends no Range header.
const chunkSize = 2 << 20

// sniffLen is how many leading bytes are inspected for MIME detection.
const sniffLen = 3072

// Repository defines persistence operations needed by the service.
type Repository interface {
	Create(ctx context.Context, v *Video) error
	GetByID(ctx context.Context, id string) (*Video, error)
	List(ctx context.Context, q ListQuery) ([]Video, error)
	Update(ctx context.Context, v *Video) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	IncrementViews(ctx context.Context, id string) error
	Genres(ctx context.Context) ([]string, error)
}

// Service orchestrates video ingestion, streaming and catalog access.
type Service struct {
	cfg     *config.Config
	repo    Repository
	backend storage.Backend
	log     zerolog.Logger
}

func NewService(cfg *config.Config, repo Repository, backend storage.Backend, log zerolog.Logger) *Service {
	return &Service{
		cfg:     cfg,
		repo:    repo,
		backend: backend,
		log:     log.With().Str("component", "video-service").Logger(),
	}
}

// Upload stores the content stream and creates the metadata record.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*Video, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"title is required",
			nil,
			"c1f6f6a2-9e0d-4a41-b6a0-0e2f3a8d5c11",
		)
	}
	if req.Size <= 0 {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"file is empty",
			storage.ErrEmptyContent,
			"4d9b7c3e-1a2f-4e8b-9c0d-5f6a7b8c9d0e",
		)
	}
	if req.Size > s.cfg.MaxVideoBytes {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			fmt.Sprintf("file exceeds max size of %d bytes", s.cfg.MaxVideoBytes),
			nil,
			"8e1c5d7f-3b4a-4c6d-8e9f-0a1b2c3d4e5f",
		)
	}

	content := req.Content
	contentType := strings.TrimSpace(req.ContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		header := make([]byte, sniffLen)
		n, err := io.ReadFull(content, header)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerDomain,
				platformerrors.ErrorTypeInternal,
				"failed to read upload content",
				err,
				"2a3b4c5d-6e7f-4a8b-9c0d-1e2f3a4b5c6d",
			)
		}
		header = header[:n]
		contentType = mimetype.Detect(header).String()
		content = io.MultiReader(bytes.NewReader(header), content)
	}

	key, err := s.backend.Store(ctx, content, req.Size, req.Title, req.OriginalFilename, contentType)
	if err != nil {
		return nil, s.wrapStorageErr(ctx, err, "failed to store video content", "6f7a8b9c-0d1e-4f2a-8b3c-4d5e6f7a8b9c")
	}

	v := &Video{
		ID:          videoid.New(),
		Title:       req.Title,
		Description: req.Description,
		Genre:       req.Genre,
		Tags:        normalizeTags(req.Tags),
		DurationSec: req.DurationSec,
		Status:      StatusAvailable,
		StorageKey:  key,
		ContentType: contentType,
		Bytes:       req.Size,
		UploaderID:  req.UploaderID,
	}

	if err := s.repo.Create(ctx, v); err != nil {
		// Do not leave orphaned bytes behind a failed metadata write.
		if _, delErr := s.backend.Delete(ctx, key); delErr != nil {
			s.log.Warn().Err(delErr).Str("key", key).Msg("failed to remove orphaned content")
		}
		return nil, err
	}

	return v, nil
}

// StreamRange resolves rangeHeader against the stored object and returns
// a single contiguous region. An empty header yields the leading chunk of
// at most chunkSize bytes. The caller must close the region's Reader.
func (s *Service) StreamRange(ctx context.Context, id string, rangeHeader string) (*StreamRegion, error) {
	v, err := s.getPlayable(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := s.backend.Open(ctx, v.StorageKey)
	if err != nil {
		return nil, s.wrapStorageErr(ctx, err, "failed to open video content", "9c0d1e2f-3a4b-4c5d-8e6f-7a8b9c0d1e2f")
	}
	defer res.Close()

	length := res.Length()

	var start, end int64
	if strings.TrimSpace(rangeHeader) == "" {
		if length == 0 {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerDomain,
				platformerrors.ErrorTypeRangeNotSatisfiable,
				"object has no content",
				httprange.ErrUnsatisfiable,
				"1e2f3a4b-5c6d-4e7f-8a9b-0c1d2e3f4a5b",
			)
		}
		start, end = 0, min(chunkSize, length)-1
	} else {
		rng, err := httprange.Parse(rangeHeader, length)
		if err != nil {
			return nil, s.wrapRangeErr(ctx, err)
		}
		start, end = rng.Start, rng.End
	}

	reader, err := res.ReadRange(ctx, start, end)
	if err != nil {
		return nil, s.wrapStorageErr(ctx, err, "failed to read video region", "3a4b5c6d-7e8f-4a9b-8c0d-1e2f3a4b5c6d")
	}

	if start == 0 {
		if err := s.repo.IncrementViews(ctx, v.ID); err != nil {
			s.log.Warn().Err(err).Str("video_id", v.ID).Msg("failed to increment view count")
		}
	}

	contentType := v.ContentType
	if contentType == "" {
		contentType = storage.ContentTypeForKey(v.StorageKey)
	}

	return &StreamRegion{
		Reader:      reader,
		Start:       start,
		End:         end,
		Total:       length,
		ContentType: contentType,
	}, nil
}

// PlayableURL holds a direct playback URL and its validity window.
type PlayableURL struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in,omitempty"`
}

// StreamURL returns a URL the client can fetch the video from directly.
// Cloud backends sign it; the local backend returns a stable serving path.
func (s *Service) StreamURL(ctx context.Context, id string) (*PlayableURL, error) {
	v, err := s.getPlayable(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.backend.GetURL(ctx, v.StorageKey)
	if err != nil {
		return nil, s.wrapStorageErr(ctx, err, "failed to issue playback url", "5c6d7e8f-9a0b-4c1d-8e2f-3a4b5c6d7e8f")
	}

	out := &PlayableURL{URL: url}
	switch {
	case s.cfg.IsS3Storage():
		out.ExpiresIn = int(s.cfg.S3PresignTTL.Seconds())
	case s.cfg.IsAzureStorage():
		out.ExpiresIn = int(s.cfg.AzureSASTTL.Seconds())
	}
	return out, nil
}

// Get returns a single video's metadata.
func (s *Service) Get(ctx context.Context, id string) (*Video, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status == StatusDeleted {
		return nil, s.notFound(ctx, id)
	}
	return v, nil
}

// Exists reports whether the video is present and not deleted.
func (s *Service) Exists(ctx context.Context, id string) error {
	_, err := s.Get(ctx, id)
	return err
}

// List returns catalog entries matching the query, newest first.
func (s *Service) List(ctx context.Context, q ListQuery) ([]Video, error) {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	q.Tag = strings.ToLower(strings.TrimSpace(q.Tag))
	return s.repo.List(ctx, q)
}

// Genres returns the distinct genres present in the available catalog.
func (s *Service) Genres(ctx context.Context) ([]string, error) {
	return s.repo.Genres(ctx)
}

// Update applies partial metadata changes.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Video, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerDomain,
				platformerrors.ErrorTypeValidation,
				"title cannot be empty",
				nil,
				"7e8f9a0b-1c2d-4e3f-8a4b-5c6d7e8f9a0b",
			)
		}
		v.Title = *req.Title
	}
	if req.Description != nil {
		v.Description = *req.Description
	}
	if req.Genre != nil {
		v.Genre = *req.Genre
	}
	if req.DurationSec != nil {
		v.DurationSec = *req.DurationSec
	}
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// UpdateStatus moves a video to the given lifecycle state.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !ValidStatus(status) {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			fmt.Sprintf("unknown status %q", status),
			nil,
			"9a0b1c2d-3e4f-4a5b-8c6d-7e8f9a0b1c2d",
		)
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// Delete removes the stored bytes and marks the metadata row DELETED.
// Removing an already-missing object is not an error, so retrying a
// partially failed delete converges.
func (s *Service) Delete(ctx context.Context, id string) error {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	removed, err := s.backend.Delete(ctx, v.StorageKey)
	if err != nil {
		return s.wrapStorageErr(ctx, err, "failed to delete video content", "0b1c2d3e-4f5a-4b6c-8d7e-8f9a0b1c2d3e")
	}
	if !removed {
		s.log.Info().Str("video_id", id).Str("key", v.StorageKey).Msg("content already absent at delete")
	}

	return s.repo.UpdateStatus(ctx, id, StatusDeleted)
}

func (s *Service) getPlayable(ctx context.Context, id string) (*Video, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status != StatusAvailable {
		return nil, s.notFound(ctx, id)
	}
	return v, nil
}

func (s *Service) notFound(ctx context.Context, id string) error {
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerDomain,
		platformerrors.ErrorTypeNotFound,
		fmt.Sprintf("video %s not found", id),
		storage.ErrNotFound,
		"2d3e4f5a-6b7c-4d8e-8f9a-0b1c2d3e4f5a",
	)
}

func (s *Service) wrapStorageErr(ctx context.Context, err error, message, uuid string) error {
	errorType := platformerrors.ErrorTypeStorageUnavailable
	switch {
	case errors.Is(err, storage.ErrNotFound):
		errorType = platformerrors.ErrorTypeNotFound
	case errors.Is(err, storage.ErrEmptyContent):
		errorType = platformerrors.ErrorTypeValidation
	case errors.Is(err, storage.ErrSigning):
		errorType = platformerrors.ErrorTypeSigningFailed
	case errors.Is(err, storage.ErrPathEscape):
		errorType = platformerrors.ErrorTypeValidation
	}
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, errorType, message, err, uuid)
}

// normalizeTags lowercases, trims and dedupes tag names, preserving first
// occurrence order.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		name := strings.ToLower(strings.TrimSpace(tag))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (s *Service) wrapRangeErr(ctx context.Context, err error) error {
	if errors.Is(err, httprange.ErrUnsatisfiable) {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeRangeNotSatisfiable,
			"requested range not satisfiable",
			err,
			"4f5a6b7c-8d9e-4f0a-8b1c-2d3e4f5a6b7c",
		)
	}
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerDomain,
		platformerrors.ErrorTypeValidation,
		"malformed range header",
		err,
		"6b7c8d9e-0f1a-4b2c-8d3e-4f5a6b7c8d9e",
	)
}
