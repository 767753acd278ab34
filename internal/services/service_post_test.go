package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"devconnector/dto"
	"devconnector/internal/cache"
	"devconnector/internal/events"
	"devconnector/internal/models"
	"devconnector/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingPublisher) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type mapCache struct {
	mu          sync.Mutex
	posts       map[string]*models.Post
	list        []models.Post
	gens        map[string]cache.Stamp
	listGen     cache.Stamp
	invalidated []string
}

func newMapCache() *mapCache {
	return &mapCache{posts: map[string]*models.Post{}, gens: map[string]cache.Stamp{}}
}

func (c *mapCache) GetPost(_ context.Context, id string) (*models.Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.posts[id]
	return p, ok
}

func (c *mapCache) PostStamp(_ context.Context, id string) (cache.Stamp, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[id], true
}

func (c *mapCache) SetPost(_ context.Context, p *models.Post, stamp cache.Stamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[p.ID.Hex()] == stamp {
		c.posts[p.ID.Hex()] = p
	}
}

func (c *mapCache) GetList(_ context.Context) ([]models.Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list, c.list != nil
}

func (c *mapCache) ListStamp(context.Context) (cache.Stamp, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listGen, true
}

func (c *mapCache) SetList(_ context.Context, posts []models.Post, stamp cache.Stamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listGen == stamp {
		c.list = posts
	}
}

func (c *mapCache) Invalidate(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[id]++
	c.listGen++
	delete(c.posts, id)
	c.list = nil
	c.invalidated = append(c.invalidated, id)
}

type failingStore struct {
	*repository.MemoryPostStore
}

func (failingStore) List(context.Context) ([]models.Post, error) {
	return nil, errors.New("connection reset")
}

type fixture struct {
	svc      *PostService
	store    *repository.MemoryPostStore
	profiles *repository.MemoryProfileStore
	pub      *recordingPublisher
	cache    *mapCache
	owner    Caller
	other    Caller
}

func newFixture(t *testing.T, opts PostOptions) *fixture {
	t.Helper()
	f := &fixture{
		store:    repository.NewMemoryPostStore(),
		profiles: repository.NewMemoryProfileStore(),
		pub:      &recordingPublisher{},
		cache:    newMapCache(),
		owner:    Caller{ID: bson.NewObjectID(), Name: "Owner", Avatar: "//owner"},
		other:    Caller{ID: bson.NewObjectID(), Name: "Other", Avatar: "//other"},
	}
	f.svc = NewPostService(f.store, f.profiles, f.cache, f.pub, opts)
	return f
}

func (f *fixture) createPost(t *testing.T) *models.Post {
	t.Helper()
	p, err := f.svc.Create(context.Background(), f.owner, dto.CreatePostReq{Text: "hello developers, first post"})
	require.NoError(t, err)
	return p
}

func TestCreate_RejectsEmptyText(t *testing.T) {
	f := newFixture(t, PostOptions{})

	_, err := f.svc.Create(context.Background(), f.owner, dto.CreatePostReq{Text: ""})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Text field is required", verr.Fields["text"])
	posts, _ := f.store.List(context.Background())
	assert.Empty(t, posts)
}

func TestCreate_PersistsAndDefaultsAuthor(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, PostOptions{Now: func() time.Time { return now }})

	p := f.createPost(t)

	got, err := f.svc.Get(context.Background(), p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "hello developers, first post", got.Text)
	assert.Equal(t, "Owner", got.Name)
	assert.Equal(t, "//owner", got.Avatar)
	assert.Equal(t, f.owner.ID, got.UserID)
	assert.Equal(t, now, got.Date)
	assert.Equal(t, []events.Type{events.PostCreated}, f.pub.types())
}

func TestGet_UnknownAndMalformedIDs(t *testing.T) {
	f := newFixture(t, PostOptions{})

	_, err := f.svc.Get(context.Background(), bson.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = f.svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestList_NewestFirstAndCached(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture(t, PostOptions{Now: func() time.Time { clock = clock.Add(time.Minute); return clock }})
	first := f.createPost(t)
	second := f.createPost(t)

	posts, err := f.svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)
	assert.NotNil(t, f.cache.list)
}

func TestList_StoreErrorIsWrapped(t *testing.T) {
	svc := NewPostService(failingStore{repository.NewMemoryPostStore()}, nil, nil, nil, PostOptions{})

	_, err := svc.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestLike_TwiceIsRejected(t *testing.T) {
	f := newFixture(t, PostOptions{})
	p := f.createPost(t)
	ctx := context.Background()

	liked, err := f.svc.Like(ctx, f.other, p.ID.Hex())
	require.NoError(t, err)
	require.Len(t, liked.Likes, 1)

	_, err = f.svc.Like(ctx, f.other, p.ID.Hex())
	assert.ErrorIs(t, err, ErrAlreadyLiked)

	got, err := f.svc.Get(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, got.Likes, 1)
}

func TestLike_PrependsNewest(t *testing.T) {
	f := newFixture(t, PostOptions{})
	p := f.createPost(t)
	ctx := context.Background()

	_, err := f.svc.Like(ctx, f.other, p.ID.Hex())
	require.NoError(t, err)
	got, err := f.svc.Like(ctx, f.owner, p.ID.Hex())
	require.NoError(t, err)

	require.Len(t, got.Likes, 2)
	assert.Equal(t, f.owner.ID, got.Likes[0].UserID)
	assert.Equal(t, f.other.ID, got.Likes[1].UserID)
}

func TestLike_MissingPost(t *testing.T) {
	f := newFixture(t, PostOptions{})

	_, err := f.svc.Like(context.Background(), f.other, bson.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestUnlike_NeverLiked(t *testing.T) {
	f := newFixture(t, PostOptions{})
	p := f.createPost(t)
	ctx := context.Background()
	_, err := f.svc.Like(ctx, f.owner, p.ID.Hex())
	require.NoError(t, err)

	_, err = f.svc.Unlike(ctx, f.other, p.ID.Hex())
	assert.ErrorIs(t, err, ErrNotLiked)

	got, err := f.store.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Likes, 1)
	assert.Equal(t, f.owner.ID, got.Likes[0].UserID)
}

func TestUnlike_RemovesCallersLike(t *testing.T) {
	f := newFixture(t, PostOptions{})
	p := f.createPost(t)
	ctx := context.Background()
	_, err := f.svc.Like(ctx, f.owner, p.ID.Hex())
	require.NoError(t, err)
	_, err = f.svc.Like(ctx, f.other, p.ID.Hex())
	require.NoError(t, err)

	got, err := f.svc.Unlike(ctx, f.other, p.ID.Hex())
	require.NoError(t, err)
	require.Len(t, got.Likes, 1)
	assert.Equal(t, f.owner.ID, got.Likes[0].UserID)
}

func TestDelete_NonOwnerRejected(t *testing.T) {
	f := newFixture(t, PostOptions{})
	p := f.createPost(t)
	ctx := context.Background()

	err := f.svc.Delete(ctx, f.other, p.ID.Hex())
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = f.store.FindByID(ctx, p.ID)
	assert.NoError(t, err)
}

func TestDelete_Owner(t *testing.T) {
	f := newFixture(t, PostOptions{})
	p := f.createPost(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Delete(ctx, f.owner, p.ID.Hex()))

	_, err := f.svc.Get(ctx, p.ID.Hex())
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.Contains(t, f.cache.invalidated, p.ID.Hex())
	assert.Equal(t, []events.Type{events.PostCreated, events.PostDeleted}, f.pub.types())
}

func TestDelete_MissingPost(t *testing.T) {
	f := newFixture(t, PostOptions{})
	assert.ErrorIs(t, f.svc.Delete(context.Background(), f.owner, bson.NewObjectID().Hex()), ErrPostNotFound)
}

func TestComment_RoundTrip(t *testing.T) {
	f := newFixture(t, PostOptions{})
	p := f.createPost(t)
	ctx := context.Background()
	_, err := f.svc.AddComment(ctx, f.owner, p.ID.Hex(), dto.CreateCommentReq{Text: "an earlier comment"})
	require.NoError(t, err)
	before, err := f.store.FindByID(ctx, p.ID)
	require.NoError(t, err)

	withComment, err := f.svc.AddComment(ctx, f.other, p.ID.Hex(), dto.CreateCommentReq{Text: "nice post, thanks!"})
	require.NoError(t, err)
	require.Len(t, withComment.Comments, 2)
	added := withComment.Comments[0]
	assert.Equal(t, "nice post, thanks!", added.Text)
	assert.Equal(t, "Other", added.Name)

	after, err := f.svc.RemoveComment(ctx, f.other, p.ID.Hex(), added.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, before.Comments, after.Comments)
}

func TestAddComment_ValidationAndMissingPost(t *testing.T) {
	f := newFixture(t, PostOptions{})
	ctx := context.Background()

	_, err := f.svc.AddComment(ctx, f.other, bson.NewObjectID().Hex(), dto.CreateCommentReq{Text: "short"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "text")

	_, err = f.svc.AddComment(ctx, f.other, bson.NewObjectID().Hex(), dto.CreateCommentReq{Text: "long enough comment"})
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestRemoveComment_Authorization(t *testing.T) {
	f := newFixture(t, PostOptions{})
	p := f.createPost(t)
	ctx := context.Background()
	stranger := Caller{ID: bson.NewObjectID()}

	got, err := f.svc.AddComment(ctx, f.other, p.ID.Hex(), dto.CreateCommentReq{Text: "comment by other"})
	require.NoError(t, err)
	cid := got.Comments[0].ID.Hex()

	_, err = f.svc.RemoveComment(ctx, stranger, p.ID.Hex(), cid)
	assert.ErrorIs(t, err, ErrNotOwner)

	// the post owner may moderate comments on their post
	got, err = f.svc.RemoveComment(ctx, f.owner, p.ID.Hex(), cid)
	require.NoError(t, err)
	assert.Empty(t, got.Comments)

	_, err = f.svc.RemoveComment(ctx, f.owner, p.ID.Hex(), cid)
	assert.ErrorIs(t, err, ErrCommentNotFound)

	_, err = f.svc.RemoveComment(ctx, f.owner, bson.NewObjectID().Hex(), cid)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestRequireProfile(t *testing.T) {
	f := newFixture(t, PostOptions{RequireProfile: true})
	p := f.createPost(t)
	ctx := context.Background()

	_, err := f.svc.Like(ctx, f.other, p.ID.Hex())
	assert.ErrorIs(t, err, ErrNoProfile)

	f.profiles.Add(f.other.ID)
	_, err = f.svc.Like(ctx, f.other, p.ID.Hex())
	assert.NoError(t, err)
}

func TestGet_ServedFromCache(t *testing.T) {
	f := newFixture(t, PostOptions{})
	cached := &models.Post{ID: bson.NewObjectID(), Text: "from cache only"}
	f.cache.SetPost(context.Background(), cached, 0)

	got, err := f.svc.Get(context.Background(), cached.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "from cache only", got.Text)
}

// racingStore reports a guard miss on every push, as if another request won the race.
type racingStore struct {
	*repository.MemoryPostStore
}

func (racingStore) PushLike(context.Context, bson.ObjectID, models.Like) (*models.Post, error) {
	return nil, repository.ErrNotFound
}

func TestLike_GuardMissBecomesConflict(t *testing.T) {
	mem := repository.NewMemoryPostStore()
	svc := NewPostService(racingStore{mem}, nil, nil, nil, PostOptions{})
	owner := Caller{ID: bson.NewObjectID()}
	p, err := svc.Create(context.Background(), owner, dto.CreatePostReq{Text: "race condition post"})
	require.NoError(t, err)

	_, err = svc.Like(context.Background(), owner, p.ID.Hex())
	assert.ErrorIs(t, err, ErrAlreadyLiked)
}

// writeDuringRead runs write once, after the first FindByID or List has read the store
// and before the caller gets the result back. write may re-enter the store.
type writeDuringRead struct {
	*repository.MemoryPostStore
	fired bool
	write func()
}

func (w *writeDuringRead) fire() {
	if w.fired || w.write == nil {
		return
	}
	w.fired = true
	w.write()
}

func (w *writeDuringRead) FindByID(ctx context.Context, id bson.ObjectID) (*models.Post, error) {
	p, err := w.MemoryPostStore.FindByID(ctx, id)
	w.fire()
	return p, err
}

func (w *writeDuringRead) List(ctx context.Context) ([]models.Post, error) {
	posts, err := w.MemoryPostStore.List(ctx)
	w.fire()
	return posts, err
}

func TestGet_WriteDuringReadIsNotCached(t *testing.T) {
	ctx := context.Background()
	mem := repository.NewMemoryPostStore()
	mc := newMapCache()
	owner, liker := Caller{ID: bson.NewObjectID(), Name: "Owner"}, Caller{ID: bson.NewObjectID(), Name: "Liker"}

	store := &writeDuringRead{MemoryPostStore: mem}
	svc := NewPostService(store, nil, mc, nil, PostOptions{})
	p, err := NewPostService(mem, nil, nil, nil, PostOptions{}).Create(ctx, owner, dto.CreatePostReq{Text: "a post about caching"})
	require.NoError(t, err)

	store.write = func() {
		_, err := svc.Like(ctx, liker, p.ID.Hex())
		require.NoError(t, err)
	}

	first, err := svc.Get(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, first.Likes)

	_, cached := mc.GetPost(ctx, p.ID.Hex())
	assert.False(t, cached)

	second, err := svc.Get(ctx, p.ID.Hex())
	require.NoError(t, err)
	stored, err := mem.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, second.Likes, 1)
	assert.Equal(t, stored.Likes, second.Likes)
}

func TestList_WriteDuringReadIsNotCached(t *testing.T) {
	ctx := context.Background()
	mem := repository.NewMemoryPostStore()
	mc := newMapCache()
	owner := Caller{ID: bson.NewObjectID(), Name: "Owner"}

	store := &writeDuringRead{MemoryPostStore: mem}
	svc := NewPostService(store, nil, mc, nil, PostOptions{})
	store.write = func() {
		_, err := svc.Create(ctx, owner, dto.CreatePostReq{Text: "created while listing"})
		require.NoError(t, err)
	}

	first, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, first)
	_, cached := mc.GetList(ctx)
	assert.False(t, cached)

	second, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, second, 1)
}
