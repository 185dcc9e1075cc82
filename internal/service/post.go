package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/BloggingApp/blog-gateway/internal/apiclient"
	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/repository/redisrepo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultPostTTL = 5 * time.Minute

type postService struct {
	logger  *zap.Logger
	clients *apiclient.Factory
	cache   redisrepo.Default
	postTTL time.Duration
	guard   *toggleGuard
}

func newPostService(logger *zap.Logger, clients *apiclient.Factory, cache redisrepo.Default, postTTL time.Duration, guard *toggleGuard) Post {
	if postTTL <= 0 {
		postTTL = defaultPostTTL
	}
	return &postService{
		logger:  logger,
		clients: clients,
		cache:   cache,
		postTTL: postTTL,
		guard:   guard,
	}
}

func (s *postService) FindAll(ctx context.Context, sess *model.Session, cookie string, query PostsQuery) (*model.Page[model.Post], error) {
	page, limit := pageAndLimit(query.Page, query.Limit)
	params := pageParams(page, limit)
	if query.AuthorID != "" {
		params.Set("authorId", query.AuthorID)
	}

	var result model.Page[model.Post]
	if err := s.clients.New(cookie, tokenOf(sess)).Get(ctx, "/posts", params, &result); err != nil {
		s.logger.Sugar().Errorf("failed to fetch posts(page %d, limit %d): %s", page, limit, err.Error())
		return nil, err
	}

	if result.Items == nil {
		result.Items = []model.Post{}
	}
	result.Meta.Normalize()

	return &result, nil
}

// FindByID caches posts by id alone, shared by every caller. model.Post must
// stay free of per-viewer fields (like isLiked) or they leak across users.
func (s *postService) FindByID(ctx context.Context, sess *model.Session, cookie string, id string) (*model.Post, error) {
	if blank(id) {
		return nil, newValidationError("id", "post id is required")
	}

	if s.cache != nil {
		cachedPost, err := redisrepo.Get[model.Post](s.cache, ctx, redisrepo.PostKey(id))
		if err == nil && cachedPost != nil {
			return cachedPost, nil
		}
		if err != nil && err != redis.Nil {
			s.logger.Sugar().Errorf("failed to get post(%s) from redis: %s", id, err.Error())
		}
	}

	var post model.Post
	if err := s.clients.New(cookie, tokenOf(sess)).Get(ctx, "/posts/"+url.PathEscape(id), nil, &post); err != nil {
		err = notFoundOr(err)
		if !errors.Is(err, ErrNotFound) {
			s.logger.Sugar().Errorf("failed to fetch post(%s): %s", id, err.Error())
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, redisrepo.PostKey(id), post, s.postTTL); err != nil {
			s.logger.Sugar().Errorf("failed to set post(%s) in redis: %s", id, err.Error())
		}
	}

	return &post, nil
}

func (s *postService) Create(ctx context.Context, sess *model.Session, input model.PostInput) (*model.Post, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	if blank(input.Title) {
		return nil, newValidationError("title", "title is required")
	}
	if blank(input.Content) {
		return nil, newValidationError("content", "content is required")
	}

	image, err := checkImage(input.Image)
	if err != nil {
		return nil, err
	}

	var created model.Post
	if err := s.clients.New("", sess.AccessToken).PostMultipart(ctx, "/posts", input.Fields(), image, &created); err != nil {
		s.logger.Sugar().Errorf("failed to create post for user(%s): %s", sess.UserID, err.Error())
		return nil, err
	}

	return &created, nil
}

func (s *postService) Update(ctx context.Context, sess *model.Session, id string, input model.PostInput) (*model.Post, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	if blank(id) {
		return nil, newValidationError("id", "post id is required")
	}
	fields := input.Fields()
	if len(fields) == 0 && input.Image == nil {
		return nil, newValidationError("post", "nothing to update")
	}

	image, err := checkImage(input.Image)
	if err != nil {
		return nil, err
	}

	var updated model.Post
	if err := s.clients.New("", sess.AccessToken).PatchMultipart(ctx, "/posts/"+url.PathEscape(id), fields, image, &updated); err != nil {
		s.logger.Sugar().Errorf("failed to update post(%s) for user(%s): %s", id, sess.UserID, err.Error())
		return nil, notFoundOr(err)
	}

	s.invalidate(ctx, id)

	return &updated, nil
}

func (s *postService) Like(ctx context.Context, sess *model.Session, id string) error {
	return s.setLike(ctx, sess, id, true)
}

func (s *postService) Unlike(ctx context.Context, sess *model.Session, id string) error {
	return s.setLike(ctx, sess, id, false)
}

func (s *postService) setLike(ctx context.Context, sess *model.Session, id string, like bool) error {
	if err := requireSession(sess); err != nil {
		return err
	}

	action := "unlike"
	if like {
		action = "like"
	}

	if err := s.clients.New("", sess.AccessToken).Post(ctx, "/posts/"+url.PathEscape(id)+"/"+action, nil, nil); err != nil {
		s.logger.Sugar().Errorf("failed to %s post(%s) for user(%s): %s", action, id, sess.UserID, err.Error())
		return notFoundOr(err)
	}

	s.invalidate(ctx, id)

	return nil
}

// IsLiked reports false when the backend check fails, so a broken check only
// hides the like state instead of failing the page.
func (s *postService) IsLiked(ctx context.Context, sess *model.Session, id string) (bool, error) {
	if err := requireSession(sess); err != nil {
		return false, err
	}

	liked, err := s.isLiked(ctx, sess, id)
	if err != nil {
		s.logger.Sugar().Errorf("failed to check like of post(%s) for user(%s): %s", id, sess.UserID, err.Error())
		return false, nil
	}

	return liked, nil
}

func (s *postService) isLiked(ctx context.Context, sess *model.Session, id string) (bool, error) {
	var result struct {
		IsLiked bool `json:"isLiked"`
	}
	if err := s.clients.New("", sess.AccessToken).Get(ctx, "/posts/"+url.PathEscape(id)+"/isLiked", nil, &result); err != nil {
		return false, err
	}
	return result.IsLiked, nil
}

// ToggleLike unlikes a liked post and likes any other. The read and the write
// are two backend calls; the toggle guard keeps one caller from interleaving
// two toggles of the same post.
func (s *postService) ToggleLike(ctx context.Context, sess *model.Session, id string) (bool, error) {
	if err := requireSession(sess); err != nil {
		return false, err
	}

	release, err := s.guard.acquire(ctx, s.logger, redisrepo.LikeToggleKey(sess.UserID, id))
	if err != nil {
		return false, err
	}
	defer release()

	liked, err := s.isLiked(ctx, sess, id)
	if err != nil {
		s.logger.Sugar().Errorf("failed to check like of post(%s) for user(%s): %s", id, sess.UserID, err.Error())
		return false, notFoundOr(err)
	}

	if err := s.setLike(ctx, sess, id, !liked); err != nil {
		return liked, err
	}

	return !liked, nil
}

func (s *postService) invalidate(ctx context.Context, id string) {
	invalidatePost(ctx, s.logger, s.cache, id)
}

func invalidatePost(ctx context.Context, logger *zap.Logger, cache redisrepo.Default, id string) {
	if cache == nil {
		return
	}
	if err := cache.Del(ctx, redisrepo.PostKey(id)).Err(); err != nil {
		logger.Sugar().Errorf("failed to delete post(%s) from redis: %s", id, err.Error())
	}
}

func checkImage(image *model.Upload) (*model.Upload, error) {
	if image == nil || image.Content == nil {
		return nil, nil
	}

	detected, err := apiclient.DetectMIME(*image)
	if err != nil {
		return nil, ErrInternal
	}
	if !strings.HasPrefix(detected.MIMEType, "image/") {
		return nil, newValidationError("image", ErrFileMustBeImage.Error())
	}

	return &detected, nil
}
