package comment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudflix/services/streaming-api/internal/utils/platformerrors"
)

type memoryRepo struct {
	mu       sync.Mutex
	comments map[string]Comment
	clock    time.Time
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		comments: make(map[string]Comment),
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *memoryRepo) Create(ctx context.Context, c *Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock = r.clock.Add(time.Second)
	c.CreatedAt = r.clock
	r.comments[c.ID] = *c
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id string) (*Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, platformerrors.NewError(
			ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"comment not found", nil, "test",
		)
	}
	return &c, nil
}

func (r *memoryRepo) ListByVideo(ctx context.Context, videoID string) ([]Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Comment
	for _, c := range r.comments {
		if c.VideoID == videoID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.comments, id)
	return nil
}

type catalogStub struct{ known map[string]bool }

func (c catalogStub) Exists(ctx context.Context, videoID string) error {
	if c.known[videoID] {
		return nil
	}
	return platformerrors.NewError(
		ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
		"video not found", nil, "test",
	)
}

func newTestService() (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	catalog := catalogStub{known: map[string]bool{"vid_a": true}}
	return NewService(repo, catalog, zerolog.Nop()), repo
}

func TestAddAndThread(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	root1, err := svc.Add(ctx, "vid_a", "alice", CreateRequest{Body: "first"})
	require.NoError(t, err)
	root2, err := svc.Add(ctx, "vid_a", "bob", CreateRequest{Body: "second"})
	require.NoError(t, err)
	reply, err := svc.Add(ctx, "vid_a", "carol", CreateRequest{Body: "reply to first", ParentID: root1.ID})
	require.NoError(t, err)
	_, err = svc.Add(ctx, "vid_a", "dave", CreateRequest{Body: "nested", ParentID: reply.ID})
	require.NoError(t, err)

	thread, err := svc.Thread(ctx, "vid_a")
	require.NoError(t, err)
	require.Len(t, thread, 2)

	assert.Equal(t, root1.ID, thread[0].ID)
	assert.Equal(t, root2.ID, thread[1].ID)
	require.Len(t, thread[0].Replies, 1)
	assert.Equal(t, "reply to first", thread[0].Replies[0].Body)
	require.Len(t, thread[0].Replies[0].Replies, 1)
	assert.Equal(t, "nested", thread[0].Replies[0].Replies[0].Body)
	assert.Empty(t, thread[1].Replies)
}

func TestAddValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, "vid_a", "alice", CreateRequest{Body: "   "})
	require.Error(t, err)
	assert.Equal(t, platformerrors.ErrorTypeValidation, platformerrors.TypeOf(err))

	_, err = svc.Add(ctx, "vid_missing", "alice", CreateRequest{Body: "hello"})
	require.Error(t, err)
	assert.Equal(t, platformerrors.ErrorTypeNotFound, platformerrors.TypeOf(err))

	_, err = svc.Add(ctx, "vid_a", "alice", CreateRequest{Body: "hello", ParentID: "cmt_missing"})
	require.Error(t, err)
	assert.Equal(t, platformerrors.ErrorTypeNotFound, platformerrors.TypeOf(err))
}

func TestDeleteAuthorization(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	c, err := svc.Add(ctx, "vid_a", "alice", CreateRequest{Body: "mine"})
	require.NoError(t, err)

	err = svc.Delete(ctx, c.ID, "bob", false)
	require.Error(t, err)
	assert.Equal(t, platformerrors.ErrorTypeForbidden, platformerrors.TypeOf(err))

	require.NoError(t, svc.Delete(ctx, c.ID, "bob", true))
}

func TestThreadReRootsOrphans(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	root, err := svc.Add(ctx, "vid_a", "alice", CreateRequest{Body: "root"})
	require.NoError(t, err)

	child, err := svc.Add(ctx, "vid_a", "carol", CreateRequest{Body: "child", ParentID: root.ID})
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, root.ID))

	thread, err := svc.Thread(ctx, "vid_a")
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, c := range thread {
		ids[c.ID] = true
	}
	assert.True(t, ids[child.ID], "orphaned reply should surface at top level")
}
