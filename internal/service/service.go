package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BloggingApp/blog-gateway/internal/apiclient"
	"github.com/BloggingApp/blog-gateway/internal/config"
	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/repository"
	"github.com/BloggingApp/blog-gateway/internal/repository/redisrepo"
	"github.com/BloggingApp/blog-gateway/internal/session"
	"go.uber.org/zap"
)

const (
	DEFAULT_LIMIT = 10
	MAX_LIMIT     = 50
)

func pageAndLimit(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DEFAULT_LIMIT
	}
	if limit > MAX_LIMIT {
		limit = MAX_LIMIT
	}
	return page, limit
}

type PostsQuery struct {
	Page     int
	Limit    int
	AuthorID string
}

type Post interface {
	FindAll(ctx context.Context, sess *model.Session, cookie string, query PostsQuery) (*model.Page[model.Post], error)
	FindByID(ctx context.Context, sess *model.Session, cookie string, id string) (*model.Post, error)
	Create(ctx context.Context, sess *model.Session, input model.PostInput) (*model.Post, error)
	Update(ctx context.Context, sess *model.Session, id string, input model.PostInput) (*model.Post, error)
	Like(ctx context.Context, sess *model.Session, id string) error
	Unlike(ctx context.Context, sess *model.Session, id string) error
	IsLiked(ctx context.Context, sess *model.Session, id string) (bool, error)
	ToggleLike(ctx context.Context, sess *model.Session, id string) (bool, error)
}

type Comment interface {
	Tree(ctx context.Context, sess *model.Session, postID string) ([]model.Comment, error)
	Create(ctx context.Context, sess *model.Session, postID string, content string, parentCommentID string) (*model.Comment, error)
}

type User interface {
	FindAll(ctx context.Context, sess *model.Session, cookie string, page int, limit int) (*model.Page[model.User], error)
	FindByID(ctx context.Context, sess *model.Session, cookie string, id string) (*model.User, error)
	SignUp(ctx context.Context, input model.UserInput, image *model.Upload) (*model.User, error)
	Update(ctx context.Context, sess *model.Session, id string, input model.UserInput) (*model.User, error)
	Follow(ctx context.Context, sess *model.Session, id string) error
	Unfollow(ctx context.Context, sess *model.Session, id string) error
	IsFollowing(ctx context.Context, sess *model.Session, id string) (bool, error)
	ToggleFollow(ctx context.Context, sess *model.Session, id string) (bool, error)
}

type Auth interface {
	Login(ctx context.Context, email string, password string) (string, *model.Session, error)
	GoogleLogin(ctx context.Context, googleAccessToken string) (string, *model.Session, error)
	Logout(ctx context.Context, sess *model.Session) error
}

type Suggestion interface {
	Suggest(ctx context.Context, sess *model.Session, prompt string) (string, error)
}

type Service struct {
	Post
	Comment
	User
	Auth
	Suggestion
}

type Deps struct {
	Repo      *repository.Repository
	Clients   *apiclient.Factory
	Gate      *session.Gate
	Completer Completer
	Config    *config.Config
}

func New(logger *zap.Logger, deps Deps) *Service {
	var cache redisrepo.Default
	if deps.Repo != nil && deps.Repo.Redis != nil {
		cache = deps.Repo.Redis.Default
	}

	var (
		postTTL   time.Duration
		toggleTTL time.Duration
		ai        config.AIConfig
	)
	if deps.Config != nil {
		postTTL = deps.Config.Redis.PostTTL
		toggleTTL = deps.Config.Redis.ToggleTTL
		ai = deps.Config.AI
	}

	guard := newToggleGuard(cache, toggleTTL)

	return &Service{
		Post:       newPostService(logger, deps.Clients, cache, postTTL, guard),
		Comment:    newCommentService(logger, deps.Clients, cache),
		User:       newUserService(logger, deps.Clients, guard),
		Auth:       newAuthService(logger, deps.Clients, deps.Gate),
		Suggestion: newSuggestionService(logger, deps.Completer, ai),
	}
}

func requireSession(sess *model.Session) error {
	if sess == nil || sess.AccessToken == "" {
		return ErrUnauthorized
	}
	return nil
}

func tokenOf(sess *model.Session) string {
	if sess == nil {
		return ""
	}
	return sess.AccessToken
}

func pageParams(page, limit int) url.Values {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	return params
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
