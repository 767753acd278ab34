package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"devconnector/dto"
	"devconnector/internal/cache"
	"devconnector/internal/events"
	"devconnector/internal/models"
	"devconnector/internal/repository"
	"devconnector/internal/validation"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type PostOptions struct {
	// RequireProfile makes like, unlike and delete fail with ErrNoProfile for callers
	// that have not created a profile yet.
	RequireProfile bool
	Now            func() time.Time
	Logger         *slog.Logger
}

type PostService struct {
	store     PostStore
	profiles  ProfileChecker
	cache     PostCache
	publisher EventPublisher
	opts      PostOptions
}

// NewPostService wires the post operations. cache and publisher may be nil.
func NewPostService(store PostStore, profiles ProfileChecker, c PostCache, pub EventPublisher, opts PostOptions) *PostService {
	if c == nil {
		c = cache.Nop{}
	}
	if pub == nil {
		pub = events.Nop{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &PostService{store: store, profiles: profiles, cache: c, publisher: pub, opts: opts}
}

// List returns all posts, newest first.
func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	if posts, ok := s.cache.GetList(ctx); ok {
		return posts, nil
	}
	stamp, fill := s.cache.ListStamp(ctx)
	posts, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if fill {
		s.cache.SetList(ctx, posts, stamp)
	}
	return posts, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	if p, ok := s.cache.GetPost(ctx, id); ok {
		return p, nil
	}
	stamp, fill := s.cache.PostStamp(ctx, id)
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if fill {
		s.cache.SetPost(ctx, p, stamp)
	}
	return p, nil
}

func (s *PostService) Create(ctx context.Context, caller Caller, body dto.CreatePostReq) (*models.Post, error) {
	if errs, ok := validation.Validate(&body); !ok {
		return nil, &ValidationError{Fields: errs}
	}

	p := &models.Post{
		ID:     bson.NewObjectID(),
		UserID: caller.ID,
		Text:   body.Text,
		Name:   orDefault(body.Name, caller.Name),
		Avatar: orDefault(body.Avatar, caller.Avatar),
		Date:   s.now(),
	}
	if err := s.store.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.changed(ctx, events.PostCreated, p.ID.Hex(), caller, "")
	return p, nil
}

func (s *PostService) Delete(ctx context.Context, caller Caller, id string) error {
	if err := s.checkProfile(ctx, caller); err != nil {
		return err
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !p.OwnedBy(caller.ID.Hex()) {
		return ErrNotOwner
	}

	if err := s.store.DeleteOwned(ctx, p.ID, caller.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}

	s.changed(ctx, events.PostDeleted, p.ID.Hex(), caller, "")
	return nil
}

// Like prepends a like by caller. A post holds at most one like per user.
func (s *PostService) Like(ctx context.Context, caller Caller, id string) (*models.Post, error) {
	if err := s.checkProfile(ctx, caller); err != nil {
		return nil, err
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.HasLiked(caller.ID.Hex()) {
		return nil, ErrAlreadyLiked
	}

	updated, err := s.store.PushLike(ctx, p.ID, models.Like{ID: bson.NewObjectID(), UserID: caller.ID})
	if err != nil {
		return nil, s.resolveGuardMiss(ctx, err, p.ID, ErrAlreadyLiked, "like post")
	}

	s.changed(ctx, events.PostLiked, p.ID.Hex(), caller, "")
	return updated, nil
}

func (s *PostService) Unlike(ctx context.Context, caller Caller, id string) (*models.Post, error) {
	if err := s.checkProfile(ctx, caller); err != nil {
		return nil, err
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.HasLiked(caller.ID.Hex()) {
		return nil, ErrNotLiked
	}

	updated, err := s.store.PullLike(ctx, p.ID, caller.ID)
	if err != nil {
		return nil, s.resolveGuardMiss(ctx, err, p.ID, ErrNotLiked, "unlike post")
	}

	s.changed(ctx, events.PostUnliked, p.ID.Hex(), caller, "")
	return updated, nil
}

// AddComment validates body before looking the post up, then prepends the comment.
func (s *PostService) AddComment(ctx context.Context, caller Caller, id string, body dto.CreateCommentReq) (*models.Post, error) {
	if errs, ok := validation.Validate(&body); !ok {
		return nil, &ValidationError{Fields: errs}
	}
	postID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPostNotFound
	}

	c := models.Comment{
		ID:     bson.NewObjectID(),
		UserID: caller.ID,
		Text:   body.Text,
		Name:   orDefault(body.Name, caller.Name),
		Avatar: orDefault(body.Avatar, caller.Avatar),
		Date:   s.now(),
	}
	updated, err := s.store.PushComment(ctx, postID, c)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("add comment: %w", err)
	}

	s.changed(ctx, events.CommentAdded, id, caller, c.ID.Hex())
	return updated, nil
}

// RemoveComment deletes a comment. Only its author or the post owner may remove it.
func (s *PostService) RemoveComment(ctx context.Context, caller Caller, id, commentID string) (*models.Post, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	idx := p.CommentIndex(commentID)
	if idx < 0 {
		return nil, ErrCommentNotFound
	}
	c := p.Comments[idx]
	if c.UserID != caller.ID && p.UserID != caller.ID {
		return nil, ErrNotOwner
	}

	updated, err := s.store.PullComment(ctx, p.ID, c.ID)
	if err != nil {
		return nil, s.resolveGuardMiss(ctx, err, p.ID, ErrCommentNotFound, "remove comment")
	}

	s.changed(ctx, events.CommentRemoved, p.ID.Hex(), caller, commentID)
	return updated, nil
}

func (s *PostService) load(ctx context.Context, id string) (*models.Post, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPostNotFound
	}
	p, err := s.store.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("find post %s: %w", id, err)
	}
	return p, nil
}

// resolveGuardMiss explains why a guarded update matched nothing: the post is gone,
// or a concurrent request already changed the array.
func (s *PostService) resolveGuardMiss(ctx context.Context, err error, postID bson.ObjectID, conflict error, op string) error {
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, ferr := s.store.FindByID(ctx, postID); ferr != nil {
		if errors.Is(ferr, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("%s: %w", op, ferr)
	}
	return conflict
}

func (s *PostService) checkProfile(ctx context.Context, caller Caller) error {
	if !s.opts.RequireProfile || s.profiles == nil {
		return nil
	}
	ok, err := s.profiles.ExistsForUser(ctx, caller.ID)
	if err != nil {
		return fmt.Errorf("find profile: %w", err)
	}
	if !ok {
		return ErrNoProfile
	}
	return nil
}

func (s *PostService) changed(ctx context.Context, t events.Type, postID string, caller Caller, commentID string) {
	s.cache.Invalidate(ctx, postID)
	s.publisher.Publish(ctx, events.Event{
		Type:      t,
		PostID:    postID,
		UserID:    caller.ID.Hex(),
		CommentID: commentID,
		Timestamp: s.now(),
	})
	s.opts.Logger.Debug("post changed", "event", t, "post_id", postID, "user_id", caller.ID.Hex())
}

func (s *PostService) now() time.Time { return s.opts.Now().UTC() }

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
