package service

import (
	"context"
	"net/url"

	"github.com/BloggingApp/blog-gateway/internal/apiclient"
	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/repository/redisrepo"
	"go.uber.org/zap"
)

type userService struct {
	logger  *zap.Logger
	clients *apiclient.Factory
	guard   *toggleGuard
}

func newUserService(logger *zap.Logger, clients *apiclient.Factory, guard *toggleGuard) User {
	return &userService{
		logger:  logger,
		clients: clients,
		guard:   guard,
	}
}

func (s *userService) FindAll(ctx context.Context, sess *model.Session, cookie string, page int, limit int) (*model.Page[model.User], error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	page, limit = pageAndLimit(page, limit)

	var result model.Page[model.User]
	if err := s.clients.New(cookie, sess.AccessToken).Get(ctx, "/users", pageParams(page, limit), &result); err != nil {
		s.logger.Sugar().Errorf("failed to fetch users(page %d, limit %d): %s", page, limit, err.Error())
		return nil, err
	}

	if result.Items == nil {
		result.Items = []model.User{}
	}
	result.Meta.Normalize()

	return &result, nil
}

func (s *userService) FindByID(ctx context.Context, sess *model.Session, cookie string, id string) (*model.User, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	var user model.User
	if err := s.clients.New(cookie, sess.AccessToken).Get(ctx, "/users/"+url.PathEscape(id), nil, &user); err != nil {
		s.logger.Sugar().Errorf("failed to fetch user(%s): %s", id, err.Error())
		return nil, notFoundOr(err)
	}

	return &user, nil
}

func (s *userService) SignUp(ctx context.Context, input model.UserInput, image *model.Upload) (*model.User, error) {
	switch {
	case blank(input.FirstName):
		return nil, newValidationError("firstName", "first name is required")
	case blank(input.LastName):
		return nil, newValidationError("lastName", "last name is required")
	case blank(input.Email):
		return nil, newValidationError("email", "email is required")
	case blank(input.Password):
		return nil, newValidationError("password", "password is required")
	}

	image, err := checkImage(image)
	if err != nil {
		return nil, err
	}

	var created model.User
	if err := s.clients.New("", "").PostMultipart(ctx, "/users", input.Fields(), image, &created); err != nil {
		s.logger.Sugar().Errorf("failed to create user(%s): %s", input.Email, err.Error())
		return nil, err
	}

	return &created, nil
}

func (s *userService) Update(ctx context.Context, sess *model.Session, id string, input model.UserInput) (*model.User, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	if len(input.Fields()) == 0 {
		return nil, newValidationError("user", "nothing to update")
	}

	var updated model.User
	if err := s.clients.New("", sess.AccessToken).Patch(ctx, "/users/"+url.PathEscape(id), input, &updated); err != nil {
		s.logger.Sugar().Errorf("failed to update user(%s): %s", id, err.Error())
		return nil, notFoundOr(err)
	}

	return &updated, nil
}

func (s *userService) Follow(ctx context.Context, sess *model.Session, id string) error {
	return s.setFollow(ctx, sess, id, true)
}

func (s *userService) Unfollow(ctx context.Context, sess *model.Session, id string) error {
	return s.setFollow(ctx, sess, id, false)
}

func (s *userService) setFollow(ctx context.Context, sess *model.Session, id string, follow bool) error {
	if err := requireSession(sess); err != nil {
		return err
	}

	if id == sess.UserID {
		return newValidationError("id", "users cannot follow themselves")
	}

	action := "unfollow"
	if follow {
		action = "follow"
	}

	if err := s.clients.New("", sess.AccessToken).Post(ctx, "/users/"+url.PathEscape(id)+"/"+action, nil, nil); err != nil {
		s.logger.Sugar().Errorf("failed to %s user(%s) for user(%s): %s", action, id, sess.UserID, err.Error())
		return notFoundOr(err)
	}

	return nil
}

// IsFollowing reports false when the backend check fails.
func (s *userService) IsFollowing(ctx context.Context, sess *model.Session, id string) (bool, error) {
	if err := requireSession(sess); err != nil {
		return false, err
	}

	following, err := s.isFollowing(ctx, sess, id)
	if err != nil {
		s.logger.Sugar().Errorf("failed to check follow of user(%s) for user(%s): %s", id, sess.UserID, err.Error())
		return false, nil
	}

	return following, nil
}

func (s *userService) isFollowing(ctx context.Context, sess *model.Session, id string) (bool, error) {
	var result struct {
		IsFollowing bool `json:"isFollowing"`
	}
	if err := s.clients.New("", sess.AccessToken).Get(ctx, "/users/"+url.PathEscape(id)+"/isFollowing", nil, &result); err != nil {
		return false, err
	}
	return result.IsFollowing, nil
}

func (s *userService) ToggleFollow(ctx context.Context, sess *model.Session, id string) (bool, error) {
	if err := requireSession(sess); err != nil {
		return false, err
	}

	if id == sess.UserID {
		return false, newValidationError("id", "users cannot follow themselves")
	}

	release, err := s.guard.acquire(ctx, s.logger, redisrepo.FollowToggleKey(sess.UserID, id))
	if err != nil {
		return false, err
	}
	defer release()

	following, err := s.isFollowing(ctx, sess, id)
	if err != nil {
		s.logger.Sugar().Errorf("failed to check follow of user(%s) for user(%s): %s", id, sess.UserID, err.Error())
		return false, notFoundOr(err)
	}

	if err := s.setFollow(ctx, sess, id, !following); err != nil {
		return following, err
	}

	return !following, nil
}
