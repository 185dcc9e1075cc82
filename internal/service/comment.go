package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/BloggingApp/blog-gateway/internal/apiclient"
	"github.com/BloggingApp/blog-gateway/internal/commenttree"
	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/repository/redisrepo"
	"go.uber.org/zap"
)

type commentService struct {
	logger  *zap.Logger
	clients *apiclient.Factory
	cache   redisrepo.Default
}

func newCommentService(logger *zap.Logger, clients *apiclient.Factory, cache redisrepo.Default) Comment {
	return &commentService{
		logger:  logger,
		clients: clients,
		cache:   cache,
	}
}

func (s *commentService) Tree(ctx context.Context, sess *model.Session, postID string) ([]model.Comment, error) {
	if blank(postID) {
		return nil, newValidationError("postId", "post id is required")
	}

	params := url.Values{}
	params.Set("postId", postID)

	var flat []model.Comment
	if err := s.clients.New("", tokenOf(sess)).Get(ctx, "/comments", params, &flat); err != nil {
		s.logger.Sugar().Errorf("failed to fetch comments of post(%s): %s", postID, err.Error())
		return nil, notFoundOr(err)
	}

	return commenttree.Build(flat, s.logger), nil
}

type createCommentRequest struct {
	PostID          string  `json:"postId"`
	Details         string  `json:"details"`
	ParentCommentID *string `json:"parentCommentId,omitempty"`
}

// Create posts one comment, or a reply when parentCommentID is set. The caller
// re-fetches the tree or places the returned comment with commenttree.Insert.
func (s *commentService) Create(ctx context.Context, sess *model.Session, postID string, content string, parentCommentID string) (*model.Comment, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	if blank(postID) {
		return nil, newValidationError("postId", "post id is required")
	}
	if blank(content) {
		return nil, newValidationError("content", "content is required")
	}

	req := createCommentRequest{
		PostID:  postID,
		Details: content,
	}
	if parent := strings.TrimSpace(parentCommentID); parent != "" {
		req.ParentCommentID = &parent
	}

	var created model.Comment
	if err := s.clients.New("", sess.AccessToken).Post(ctx, "/comments", req, &created); err != nil {
		s.logger.Sugar().Errorf("failed to create comment on post(%s) for user(%s): %s", postID, sess.UserID, err.Error())
		return nil, notFoundOr(err)
	}

	invalidatePost(ctx, s.logger, s.cache, postID)

	return &created, nil
}
