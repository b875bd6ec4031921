package handlers_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudflix/services/streaming-api/internal/config"
	domain "cloudflix/services/streaming-api/internal/domain/video"
	"cloudflix/services/streaming-api/internal/infrastructure/auth"
	"cloudflix/services/streaming-api/internal/infrastructure/storage"
	"cloudflix/services/streaming-api/internal/interfaces/httpserver/handlers"
	"cloudflix/services/streaming-api/internal/utils/platformerrors"
)

// MockVideoService is a mock implementation of the handler's VideoService.
type MockVideoService struct {
	UploadFunc       func(ctx context.Context, req domain.UploadRequest) (*domain.Video, error)
	StreamRangeFunc  func(ctx context.Context, id, rangeHeader string) (*domain.StreamRegion, error)
	StreamURLFunc    func(ctx context.Context, id string) (*domain.PlayableURL, error)
	GetFunc          func(ctx context.Context, id string) (*domain.Video, error)
	ListFunc         func(ctx context.Context, q domain.ListQuery) ([]domain.Video, error)
	GenresFunc       func(ctx context.Context) ([]string, error)
	UpdateFunc       func(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Video, error)
	UpdateStatusFunc func(ctx context.Context, id string, status domain.Status) error
	DeleteFunc       func(ctx context.Context, id string) error
}

func (m *MockVideoService) Upload(ctx context.Context, req domain.UploadRequest) (*domain.Video, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockVideoService) StreamRange(ctx context.Context, id, rangeHeader string) (*domain.StreamRegion, error) {
	if m.StreamRangeFunc != nil {
		return m.StreamRangeFunc(ctx, id, rangeHeader)
	}
	return nil, nil
}

func (m *MockVideoService) StreamURL(ctx context.Context, id string) (*domain.PlayableURL, error) {
	if m.StreamURLFunc != nil {
		return m.StreamURLFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockVideoService) Get(ctx context.Context, id string) (*domain.Video, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockVideoService) List(ctx context.Context, q domain.ListQuery) ([]domain.Video, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, q)
	}
	return nil, nil
}

func (m *MockVideoService) Genres(ctx context.Context) ([]string, error) {
	if m.GenresFunc != nil {
		return m.GenresFunc(ctx)
	}
	return nil, nil
}

func (m *MockVideoService) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Video, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, req)
	}
	return nil, nil
}

func (m *MockVideoService) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *MockVideoService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func setupVideoTestRouter(handler *handlers.VideoHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	videos := r.Group("/v1/videos")
	{
		videos.GET("", handler.List)
		videos.GET("/genres", handler.Genres)
		videos.GET("/tag/:tagName", handler.ByTag)
		videos.GET("/:id", handler.Get)
		videos.GET("/:id/stream", handler.Stream)
		videos.GET("/:id/stream-url", handler.StreamURL)
		videos.POST("", handler.Upload)
	}
	return r
}

// setupVideoTestRouterAs registers the routes that depend on the caller's
// identity, with the given subject and roles attached to every request.
func setupVideoTestRouterAs(handler *handlers.VideoHandler, userID string, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		auth.SetUser(c, userID, roles...)
		c.Next()
	})

	videos := r.Group("/v1/videos")
	{
		videos.PATCH("/:id", handler.Update)
		videos.DELETE("/:id", handler.Delete)
	}
	return r
}

func newVideoHandler(service handlers.VideoService) *handlers.VideoHandler {
	cfg := &config.Config{StorageBackend: "local"}
	return handlers.NewVideoHandler(cfg, service, zerolog.Nop())
}

func notFoundErr() error {
	return platformerrors.NewError(
		context.Background(),
		platformerrors.LayerDomain,
		platformerrors.ErrorTypeNotFound,
		"video not found",
		storage.ErrNotFound,
		"test",
	)
}

func TestStreamAlwaysPartialContent(t *testing.T) {
	payload := []byte("0123456789")
	mock := &MockVideoService{
		StreamRangeFunc: func(ctx context.Context, id, rangeHeader string) (*domain.StreamRegion, error) {
			assert.Equal(t, "vid_abc", id)
			assert.Empty(t, rangeHeader)
			return &domain.StreamRegion{
				Reader:      io.NopCloser(bytes.NewReader(payload)),
				Start:       0,
				End:         9,
				Total:       10,
				ContentType: "video/mp4",
			}, nil
		},
	}
	router := setupVideoTestRouter(newVideoHandler(mock))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/videos/vid_abc/stream", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPartialContent, w.Code)
	assert.Equal(t, "video/mp4", w.Header().Get("Content-Type"))
	assert.Equal(t, "bytes", w.Header().Get("Accept-Ranges"))
	assert.Equal(t, "bytes 0-9/10", w.Header().Get("Content-Range"))
	assert.Equal(t, "10", w.Header().Get("Content-Length"))
	assert.Equal(t, payload, w.Body.Bytes())
}

func TestStreamForwardsRangeHeader(t *testing.T) {
	mock := &MockVideoService{
		StreamRangeFunc: func(ctx context.Context, id, rangeHeader string) (*domain.StreamRegion, error) {
			assert.Equal(t, "bytes=5-", rangeHeader)
			return &domain.StreamRegion{
				Reader:      io.NopCloser(bytes.NewReader([]byte("56789"))),
				Start:       5,
				End:         9,
				Total:       10,
				ContentType: "video/mp4",
			}, nil
		},
	}
	router := setupVideoTestRouter(newVideoHandler(mock))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/videos/vid_abc/stream", nil)
	req.Header.Set("Range", "bytes=5-")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPartialContent, w.Code)
	assert.Equal(t, "bytes 5-9/10", w.Header().Get("Content-Range"))
	assert.Equal(t, "56789", w.Body.String())
}

func TestStreamErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		errType    platformerrors.ErrorType
		wantStatus int
	}{
		{"not found", platformerrors.ErrorTypeNotFound, http.StatusNotFound},
		{"unsatisfiable", platformerrors.ErrorTypeRangeNotSatisfiable, http.StatusRequestedRangeNotSatisfiable},
		{"malformed", platformerrors.ErrorTypeValidation, http.StatusBadRequest},
		{"storage down", platformerrors.ErrorTypeStorageUnavailable, http.StatusBadGateway},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mock := &MockVideoService{
				StreamRangeFunc: func(ctx context.Context, id, rangeHeader string) (*domain.StreamRegion, error) {
					return nil, platformerrors.NewError(
						ctx, platformerrors.LayerDomain, tc.errType, "boom", nil, "test",
					)
				},
			}
			router := setupVideoTestRouter(newVideoHandler(mock))

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/v1/videos/vid_abc/stream", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func TestStreamURLEndpoint(t *testing.T) {
	mock := &MockVideoService{
		StreamURLFunc: func(ctx context.Context, id string) (*domain.PlayableURL, error) {
			return &domain.PlayableURL{URL: "https://bucket.example.com/videos/key.mp4?sig=abc", ExpiresIn: 900}, nil
		},
	}
	router := setupVideoTestRouter(newVideoHandler(mock))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/videos/vid_abc/stream-url", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"url":"https://bucket.example.com/videos/key.mp4?sig=abc"`)
	assert.Contains(t, w.Body.String(), `"expires_in":900`)
}

func TestStreamURLDeletedObject(t *testing.T) {
	mock := &MockVideoService{
		StreamURLFunc: func(ctx context.Context, id string) (*domain.PlayableURL, error) {
			return nil, notFoundErr()
		},
	}
	router := setupVideoTestRouter(newVideoHandler(mock))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/videos/vid_gone/stream-url", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadMultipart(t *testing.T) {
	var captured domain.UploadRequest
	mock := &MockVideoService{
		UploadFunc: func(ctx context.Context, req domain.UploadRequest) (*domain.Video, error) {
			captured = req
			content, err := io.ReadAll(req.Content)
			require.NoError(t, err)
			assert.Equal(t, "fake video bytes", string(content))
			return &domain.Video{
				ID:          "vid_new",
				Title:       req.Title,
				Status:      domain.StatusAvailable,
				ContentType: "video/mp4",
				Bytes:       req.Size,
			}, nil
		},
	}
	router := setupVideoTestRouter(newVideoHandler(mock))

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("title", "My Cool Video"))
	require.NoError(t, writer.WriteField("genre", "action"))
	part, err := writer.CreateFormFile("file", "clip.mp4")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake video bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/videos", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "My Cool Video", captured.Title)
	assert.Equal(t, "action", captured.Genre)
	assert.Equal(t, "clip.mp4", captured.OriginalFilename)
	assert.Contains(t, w.Body.String(), `"id":"vid_new"`)
}

func TestUploadMissingFile(t *testing.T) {
	router := setupVideoTestRouter(newVideoHandler(&MockVideoService{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/videos", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetNotFound(t *testing.T) {
	mock := &MockVideoService{
		GetFunc: func(ctx context.Context, id string) (*domain.Video, error) {
			return nil, notFoundErr()
		},
	}
	router := setupVideoTestRouter(newVideoHandler(mock))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/videos/vid_missing", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateRejectsNonOwner(t *testing.T) {
	updateCalled := false
	mock := &MockVideoService{
		GetFunc: func(ctx context.Context, id string) (*domain.Video, error) {
			return &domain.Video{ID: id, UploaderID: "alice"}, nil
		},
		UpdateFunc: func(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Video, error) {
			updateCalled = true
			return &domain.Video{ID: id}, nil
		},
	}
	router := setupVideoTestRouterAs(newVideoHandler(mock), "bob", auth.RoleUploader)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/v1/videos/vid_abc", strings.NewReader(`{"title":"hijacked"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, updateCalled)
}

func TestUpdateAllowsOwnerAndAdmin(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		roles  []string
	}{
		{"owner", "alice", []string{auth.RoleUploader}},
		{"admin", "carol", []string{auth.RoleAdmin}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mock := &MockVideoService{
				GetFunc: func(ctx context.Context, id string) (*domain.Video, error) {
					return &domain.Video{ID: id, UploaderID: "alice"}, nil
				},
				UpdateFunc: func(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Video, error) {
					require.NotNil(t, req.Title)
					return &domain.Video{ID: id, Title: *req.Title}, nil
				},
			}
			router := setupVideoTestRouterAs(newVideoHandler(mock), tc.userID, tc.roles...)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPatch, "/v1/videos/vid_abc", strings.NewReader(`{"title":"renamed"}`))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), `"title":"renamed"`)
		})
	}
}

func TestDeleteRejectsNonOwner(t *testing.T) {
	deleteCalled := false
	mock := &MockVideoService{
		GetFunc: func(ctx context.Context, id string) (*domain.Video, error) {
			return &domain.Video{ID: id, UploaderID: "alice"}, nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			deleteCalled = true
			return nil
		},
	}
	router := setupVideoTestRouterAs(newVideoHandler(mock), "bob", auth.RoleUploader)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/v1/videos/vid_abc", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, deleteCalled)
}

func TestGenresEndpoint(t *testing.T) {
	mock := &MockVideoService{
		GenresFunc: func(ctx context.Context) ([]string, error) {
			return []string{"action", "drama"}, nil
		},
	}
	router := setupVideoTestRouter(newVideoHandler(mock))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/videos/genres", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"genres":["action","drama"]`)
}

func TestByTagEndpoint(t *testing.T) {
	mock := &MockVideoService{
		ListFunc: func(ctx context.Context, q domain.ListQuery) ([]domain.Video, error) {
			assert.Equal(t, "action", q.Tag)
			return []domain.Video{{ID: "vid_1", Title: "tagged", Tags: []string{"action"}}}, nil
		},
	}
	router := setupVideoTestRouter(newVideoHandler(mock))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/videos/tag/action", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
	assert.Contains(t, w.Body.String(), `"tags":["action"]`)
}

func TestListPassesQuery(t *testing.T) {
	mock := &MockVideoService{
		ListFunc: func(ctx context.Context, q domain.ListQuery) ([]domain.Video, error) {
			assert.Equal(t, "action", q.Genre)
			assert.Equal(t, "cool", q.Title)
			assert.Equal(t, 5, q.Limit)
			return []domain.Video{{ID: "vid_1", Title: "cool one"}}, nil
		},
	}
	router := setupVideoTestRouter(newVideoHandler(mock))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/videos?genre=action&q=cool&limit=5", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
}
