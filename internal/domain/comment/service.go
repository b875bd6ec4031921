package comment

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"cloudflix/services/streaming-api/internal/utils/platformerrors"
	"cloudflix/services/streaming-api/internal/utils/videoid"
)

const maxBodyLen = 4000

// Repository defines comment persistence.
type Repository interface {
	Create(ctx context.Context, c *Comment) error
	GetByID(ctx context.Context, id string) (*Comment, error)
	ListByVideo(ctx context.Context, videoID string) ([]Comment, error)
	Delete(ctx context.Context, id string) error
}

// VideoCatalog is the slice of the video service the comment service needs.
type VideoCatalog interface {
	Exists(ctx context.Context, videoID string) error
}

// Service manages threaded comments on videos.
type Service struct {
	repo   Repository
	videos VideoCatalog
	log    zerolog.Logger
}

func NewService(repo Repository, videos VideoCatalog, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		videos: videos,
		log:    log.With().Str("component", "comment-service").Logger(),
	}
}

// Add posts a comment, optionally as a reply to an existing comment on the
// same video.
func (s *Service) Add(ctx context.Context, videoID, authorID string, req CreateRequest) (*Comment, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"comment body is required",
			nil,
			"a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d",
		)
	}
	if len(body) > maxBodyLen {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"comment body too long",
			nil,
			"b2c3d4e5-f6a7-4b8c-9d0e-1f2a3b4c5d6e",
		)
	}

	if err := s.videos.Exists(ctx, videoID); err != nil {
		return nil, err
	}

	if req.ParentID != "" {
		parent, err := s.repo.GetByID(ctx, req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.VideoID != videoID {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerDomain,
				platformerrors.ErrorTypeValidation,
				"parent comment belongs to a different video",
				nil,
				"c3d4e5f6-a7b8-4c9d-8e0f-2a3b4c5d6e7f",
			)
		}
	}

	c := &Comment{
		ID:       videoid.NewComment(),
		VideoID:  videoID,
		ParentID: req.ParentID,
		AuthorID: authorID,
		Body:     body,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Thread returns the video's comments as a tree, oldest first at each
// level. Replies whose parent was removed surface as top level.
func (s *Service) Thread(ctx context.Context, videoID string) ([]Comment, error) {
	if err := s.videos.Exists(ctx, videoID); err != nil {
		return nil, err
	}

	flat, err := s.repo.ListByVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return assemble(flat), nil
}

// Delete removes a comment. Only the author or an admin may remove it;
// replies are kept and re-rooted at the top level.
func (s *Service) Delete(ctx context.Context, id, requesterID string, isAdmin bool) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !isAdmin && c.AuthorID != requesterID {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeForbidden,
			"only the author may delete this comment",
			nil,
			"d4e5f6a7-b8c9-4d0e-8f1a-3b4c5d6e7f8a",
		)
	}
	return s.repo.Delete(ctx, id)
}

func assemble(flat []Comment) []Comment {
	byID := make(map[string]*Comment, len(flat))
	for i := range flat {
		c := flat[i]
		c.Replies = nil
		byID[c.ID] = &c
	}

	children := make(map[string][]*Comment, len(byID))
	var roots []*Comment
	for _, c := range byID {
		if c.ParentID == "" {
			roots = append(roots, c)
			continue
		}
		if _, ok := byID[c.ParentID]; ok {
			children[c.ParentID] = append(children[c.ParentID], c)
		} else {
			roots = append(roots, c)
		}
	}

	var attach func(node *Comment) Comment
	attach = func(node *Comment) Comment {
		out := *node
		kids := children[node.ID]
		sortByCreation(kids)
		for _, kid := range kids {
			out.Replies = append(out.Replies, attach(kid))
		}
		return out
	}

	sortByCreation(roots)
	result := make([]Comment, 0, len(roots))
	for _, root := range roots {
		result = append(result, attach(root))
	}
	return result
}

func sortByCreation(items []*Comment) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
