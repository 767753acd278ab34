package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"devconnector/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemoryPostStore mirrors PostRepository in process memory. It backs tests and the
// server's --memory mode. Returned posts are copies.
type MemoryPostStore struct {
	mu    sync.Mutex
	posts map[bson.ObjectID]*models.Post
}

func NewMemoryPostStore() *MemoryPostStore {
	return &MemoryPostStore{posts: map[bson.ObjectID]*models.Post{}}
}

func (m *MemoryPostStore) List(_ context.Context) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		out = append(out, *clonePost(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (m *MemoryPostStore) FindByID(_ context.Context, id bson.ObjectID) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePost(p), nil
}

func (m *MemoryPostStore) Insert(_ context.Context, p *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	p.Normalize()
	m.posts[p.ID] = clonePost(p)
	return nil
}

func (m *MemoryPostStore) DeleteOwned(_ context.Context, id, owner bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok || p.UserID != owner {
		return ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *MemoryPostStore) PushLike(_ context.Context, postID bson.ObjectID, like models.Like) (*models.Post, error) {
	return m.update(postID, func(p *models.Post) bool {
		if p.HasLiked(like.UserID.Hex()) {
			return false
		}
		p.Likes = append([]models.Like{like}, p.Likes...)
		return true
	})
}

func (m *MemoryPostStore) PullLike(_ context.Context, postID, userID bson.ObjectID) (*models.Post, error) {
	return m.update(postID, func(p *models.Post) bool {
		i := p.LikeIndex(userID.Hex())
		if i < 0 {
			return false
		}
		p.Likes = append(p.Likes[:i:i], p.Likes[i+1:]...)
		return true
	})
}

func (m *MemoryPostStore) PushComment(_ context.Context, postID bson.ObjectID, c models.Comment) (*models.Post, error) {
	return m.update(postID, func(p *models.Post) bool {
		p.Comments = append([]models.Comment{c}, p.Comments...)
		return true
	})
}

func (m *MemoryPostStore) PullComment(_ context.Context, postID, commentID bson.ObjectID) (*models.Post, error) {
	return m.update(postID, func(p *models.Post) bool {
		i := p.CommentIndex(commentID.Hex())
		if i < 0 {
			return false
		}
		p.Comments = append(p.Comments[:i:i], p.Comments[i+1:]...)
		return true
	})
}

// update applies fn under the lock; fn returning false means the guard did not hold.
func (m *MemoryPostStore) update(postID bson.ObjectID, fn func(p *models.Post) bool) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[postID]
	if !ok {
		return nil, ErrNotFound
	}
	next := clonePost(p)
	if !fn(next) {
		return nil, ErrNotFound
	}
	m.posts[postID] = next
	return clonePost(next), nil
}

func clonePost(p *models.Post) *models.Post {
	cp := *p
	cp.Likes = append([]models.Like{}, p.Likes...)
	cp.Comments = append([]models.Comment{}, p.Comments...)
	return &cp
}

type MemoryUserStore struct {
	mu    sync.Mutex
	users map[bson.ObjectID]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: map[bson.ObjectID]models.User{}}
}

func (m *MemoryUserStore) FindByID(_ context.Context, id bson.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryUserStore) Insert(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	m.users[u.ID] = *u
	return nil
}

type MemoryProfileStore struct {
	mu    sync.Mutex
	users map[bson.ObjectID]bool
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{users: map[bson.ObjectID]bool{}}
}

// Add records that userID has a profile.
func (m *MemoryProfileStore) Add(userID bson.ObjectID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID] = true
}

func (m *MemoryProfileStore) ExistsForUser(_ context.Context, userID bson.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[userID], nil
}
